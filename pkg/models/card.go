package models

import "time"

// Card tracks a user's progress with a specific vocabulary item using the SM-2 algorithm
type Card struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Word         string    `json:"word" db:"word"`
	Translation  string    `json:"translation" db:"translation"`
	Repetitions  int       `json:"repetitions" db:"repetitions"`     // Consecutive successful reviews since last reset
	Interval     int       `json:"interval" db:"interval"`           // Current interval in days
	EaseFactor   float64   `json:"ease_factor" db:"ease_factor"`     // SM-2 EF parameter, never below 1.3
	NextReview   time.Time `json:"next_review" db:"next_review"`     // Derived: last review time + interval days
	LastReview   time.Time `json:"last_review" db:"last_review"`
	LastQuality  int       `json:"last_quality" db:"last_quality"`   // 0-5 rating of last recall
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultEaseFactor is the starting EF for a card that has never been reviewed.
const DefaultEaseFactor = 2.5

// NewCard returns a card with scheduler defaults for a word the user has not reviewed yet.
func NewCard(userID, word, translation string) Card {
	return Card{
		UserID:      userID,
		Word:        word,
		Translation: translation,
		Repetitions: 0,
		Interval:    0,
		EaseFactor:  DefaultEaseFactor,
	}
}

// IsDue reports whether the card is due for review at the given time.
func (c Card) IsDue(now time.Time) bool {
	return !c.NextReview.After(now)
}
