package database

import (
	"context"
	"fmt"

	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// pageSize bounds a single paginated read against the record store.
const pageSize = 500

// listAll drains a collection with one paginated read sequence, keeping
// remote round-trips at O(collections) rather than O(records).
func listAll(ctx context.Context, s store.Store, table string) ([]store.Record, error) {
	var out []store.Record
	for offset := 0; ; offset += pageSize {
		page, err := s.List(ctx, table, store.ListOptions{OrderBy: "id", Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < pageSize {
			return out, nil
		}
	}
}

// UserRepository handles record-store operations for user profiles
type UserRepository struct {
	store store.Store
}

// NewUserRepository creates a new repository instance
func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

// GetByID returns a single user profile.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	recs, err := r.store.Filter(ctx, TableUsers, []store.Condition{store.Eq("id", id)}, store.ListOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	var user models.User
	if err := store.Decode(recs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAll returns every user profile.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	recs, err := listAll(ctx, r.store, TableUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return store.DecodeAll[models.User](recs)
}
