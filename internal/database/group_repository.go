package database

import (
	"context"
	"fmt"

	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// GroupRepository handles record-store operations for groups and their
// challenges, both read-only inputs to the due-scan.
type GroupRepository struct {
	store store.Store
}

// NewGroupRepository creates a new repository instance
func NewGroupRepository(s store.Store) *GroupRepository {
	return &GroupRepository{store: s}
}

// ListGroups returns every group.
func (r *GroupRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	recs, err := listAll(ctx, r.store, TableGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return store.DecodeAll[models.Group](recs)
}

// ListChallenges returns every group challenge.
func (r *GroupRepository) ListChallenges(ctx context.Context) ([]models.GroupChallenge, error) {
	recs, err := listAll(ctx, r.store, TableGroupChallenges)
	if err != nil {
		return nil, fmt.Errorf("failed to list group challenges: %w", err)
	}
	return store.DecodeAll[models.GroupChallenge](recs)
}
