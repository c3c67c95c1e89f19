package models

import "time"

// Progress tracks a user's login streak.
// Mutated by login tracking; the due-scan only reads it.
type Progress struct {
	ID                   string    `json:"id" db:"id"`
	UserID               string    `json:"user_id" db:"user_id"`
	ConsecutiveLoginDays int       `json:"consecutive_login_days" db:"consecutive_login_days"`
	LastLoginDate        time.Time `json:"last_login_date" db:"last_login_date"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}
