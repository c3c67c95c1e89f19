package database

import (
	"context"
	"fmt"

	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// ProgressRepository handles record-store operations for login streaks.
// The due-scan only reads this collection; login tracking owns the writes.
type ProgressRepository struct {
	store store.Store
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(s store.Store) *ProgressRepository {
	return &ProgressRepository{store: s}
}

// ListAll returns every progress record.
func (r *ProgressRepository) ListAll(ctx context.Context) ([]models.Progress, error) {
	recs, err := listAll(ctx, r.store, TableProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return store.DecodeAll[models.Progress](recs)
}

// GetByUser returns the progress record for a user, or nil when the
// user has never logged a session.
func (r *ProgressRepository) GetByUser(ctx context.Context, userID string) (*models.Progress, error) {
	conds := []store.Condition{store.Eq("user_id", userID)}
	recs, err := r.store.Filter(ctx, TableProgress, conds, store.ListOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	var progress models.Progress
	if err := store.Decode(recs[0], &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}
