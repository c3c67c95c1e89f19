package models

import "time"

// Group is a read-only input to the due-scan: its member list decides
// who receives a challenge invite.
type Group struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Members   []string  `json:"members" db:"members"` // user IDs
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// GroupChallenge gates the challenge-invite rule: only challenges that
// start today and are active fan out to group members.
type GroupChallenge struct {
	ID        string    `json:"id" db:"id"`
	GroupID   string    `json:"group_id" db:"group_id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
