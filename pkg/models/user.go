package models

import "time"

// User represents a learner profile.
type User struct {
	ID             string              `json:"id" db:"id"`
	Name           string              `json:"name" db:"name"`
	TelegramChatID int64               `json:"telegram_chat_id" db:"telegram_chat_id"` // 0 when the user has no linked chat
	Preferences    RawPreferences      `json:"preferences" db:"preferences"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}

// RawPreferences is the preference object as stored: every flag is
// optional and absence means "enabled". It is normalized exactly once,
// at snapshot load, never re-derived per rule.
type RawPreferences struct {
	DailyReviewEnabled    *bool `json:"daily_review_enabled,omitempty"`
	StreakWarningEnabled  *bool `json:"streak_warning_enabled,omitempty"`
	GroupChallengeEnabled *bool `json:"group_challenge_enabled,omitempty"`
}

// NotificationPreferences enumerates every recognized preference key
// with its resolved value.
type NotificationPreferences struct {
	DailyReview    bool
	StreakWarning  bool
	GroupChallenge bool
}

// DefaultPreferences returns the resolved preferences for a user with
// no preference object at all.
func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		DailyReview:    true,
		StreakWarning:  true,
		GroupChallenge: true,
	}
}

// Normalize resolves the raw preference object against the defaults.
func (p RawPreferences) Normalize() NotificationPreferences {
	prefs := DefaultPreferences()
	if p.DailyReviewEnabled != nil {
		prefs.DailyReview = *p.DailyReviewEnabled
	}
	if p.StreakWarningEnabled != nil {
		prefs.StreakWarning = *p.StreakWarningEnabled
	}
	if p.GroupChallengeEnabled != nil {
		prefs.GroupChallenge = *p.GroupChallengeEnabled
	}
	return prefs
}
