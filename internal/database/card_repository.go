package database

import (
	"context"
	"fmt"

	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// CardRepository handles record-store operations for flashcards
type CardRepository struct {
	store store.Store
}

// NewCardRepository creates a new repository instance
func NewCardRepository(s store.Store) *CardRepository {
	return &CardRepository{store: s}
}

// GetByID returns a single card by its id.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	recs, err := r.store.Filter(ctx, TableFlashcards, []store.Condition{store.Eq("id", id)}, store.ListOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	var card models.Card
	if err := store.Decode(recs[0], &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByUserAndWord returns the card a user holds for a specific word,
// or nil when the user has never reviewed it.
func (r *CardRepository) GetByUserAndWord(ctx context.Context, userID, word string) (*models.Card, error) {
	conds := []store.Condition{store.Eq("user_id", userID), store.Eq("word", word)}
	recs, err := r.store.Filter(ctx, TableFlashcards, conds, store.ListOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to get card by word: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	var card models.Card
	if err := store.Decode(recs[0], &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// ListAll returns every card in the store, for the batch due-scan.
func (r *CardRepository) ListAll(ctx context.Context) ([]models.Card, error) {
	recs, err := listAll(ctx, r.store, TableFlashcards)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return store.DecodeAll[models.Card](recs)
}

// ListByUser returns all cards owned by a user, soonest review first.
func (r *CardRepository) ListByUser(ctx context.Context, userID string) ([]models.Card, error) {
	conds := []store.Condition{store.Eq("user_id", userID)}
	recs, err := r.store.Filter(ctx, TableFlashcards, conds, store.ListOptions{OrderBy: "next_review"})
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return store.DecodeAll[models.Card](recs)
}

// Create inserts a new card record and returns the stored card.
func (r *CardRepository) Create(ctx context.Context, card models.Card) (*models.Card, error) {
	rec, err := store.Encode(card)
	if err != nil {
		return nil, err
	}
	// Identity and creation timestamp are server-assigned.
	delete(rec, "id")
	delete(rec, "created_at")
	delete(rec, "updated_at")

	stored, err := r.store.Create(ctx, TableFlashcards, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	var out models.Card
	if err := store.Decode(stored, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchedule persists the scheduler-owned fields of a reviewed card.
func (r *CardRepository) UpdateSchedule(ctx context.Context, card models.Card) (*models.Card, error) {
	partial := store.Record{
		"repetitions":  card.Repetitions,
		"interval":     card.Interval,
		"ease_factor":  card.EaseFactor,
		"next_review":  card.NextReview,
		"last_review":  card.LastReview,
		"last_quality": card.LastQuality,
	}
	stored, err := r.store.Update(ctx, TableFlashcards, card.ID, partial)
	if err != nil {
		return nil, fmt.Errorf("failed to update card schedule: %w", err)
	}
	var out models.Card
	if err := store.Decode(stored, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
