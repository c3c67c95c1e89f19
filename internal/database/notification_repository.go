package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// NotificationRepository handles record-store operations for notifications
type NotificationRepository struct {
	store store.Store
}

// NewNotificationRepository creates a new repository instance
func NewNotificationRepository(s store.Store) *NotificationRepository {
	return &NotificationRepository{store: s}
}

// Create inserts a notification record. Identity, creation timestamp and
// the unread flag are assigned at the store.
func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) (*models.Notification, error) {
	rec := store.Record{
		"user_id":           n.UserID,
		"notification_type": string(n.Type),
		"title":             n.Title,
		"message":           n.Message,
		"icon":              n.Icon,
		"action_target":     n.ActionTarget,
		"is_read":           false,
	}
	stored, err := r.store.Create(ctx, TableNotifications, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	var out models.Notification
	if err := store.Decode(stored, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCreatedSince returns all notifications created at or after the
// given time, used by the per-day idempotency guard.
func (r *NotificationRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Notification, error) {
	recs, err := r.store.List(ctx, TableNotifications, store.ListOptions{OrderBy: "created_at", Descending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	all, err := store.DecodeAll[models.Notification](recs)
	if err != nil {
		return nil, err
	}
	var out []models.Notification
	for _, n := range all {
		if !n.CreatedAt.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

// ListForUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	conds := []store.Condition{store.Eq("user_id", userID)}
	opts := store.ListOptions{OrderBy: "created_at", Descending: true, Limit: limit}
	recs, err := r.store.Filter(ctx, TableNotifications, conds, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user: %w", err)
	}
	return store.DecodeAll[models.Notification](recs)
}
