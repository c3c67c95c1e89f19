package models

import "time"

// NotificationType identifies which rule produced a notification.
type NotificationType string

const (
	NotificationReviewReminder    NotificationType = "review_reminder"
	NotificationStreakWarning     NotificationType = "streak_warning"
	NotificationChallengeInvite   NotificationType = "challenge_invite"
	NotificationAchievementEarned NotificationType = "achievement_earned"
)

// Notification is an append-only record produced by the due-scan.
// Marking it read belongs to the UI, not to this service.
type Notification struct {
	ID           string           `json:"id" db:"id"`
	UserID       string           `json:"user_id" db:"user_id"`
	Type         NotificationType `json:"notification_type" db:"notification_type"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	Icon         string           `json:"icon" db:"icon"`
	ActionTarget string           `json:"action_target" db:"action_target"`
	IsRead       bool             `json:"is_read" db:"is_read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
