package spaced_repetition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/example/lexibot/pkg/models"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReview_InvalidQuality(t *testing.T) {
	sm := NewSM2()
	card := models.NewCard("u1", "cat", "кошка")

	for _, quality := range []int{-1, 6, 42} {
		_, err := sm.Review(card, quality, testNow)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("quality %d: expected ErrInvalidQuality, got %v", quality, err)
		}
	}
}

func TestReview_FailureResetsProgress(t *testing.T) {
	sm := NewSM2()

	for _, quality := range []int{0, 1, 2} {
		card := models.Card{Repetitions: 4, Interval: 30, EaseFactor: 2.1}
		updated, err := sm.Review(card, quality, testNow)
		if err != nil {
			t.Fatalf("quality %d: unexpected error: %v", quality, err)
		}
		if updated.Repetitions != 0 {
			t.Errorf("quality %d: expected repetitions reset to 0, got %d", quality, updated.Repetitions)
		}
		if updated.Interval != 1 {
			t.Errorf("quality %d: expected interval 1, got %d", quality, updated.Interval)
		}
		if !almostEqual(updated.EaseFactor, 2.1) {
			t.Errorf("quality %d: ease factor should not move on failure, got %v", quality, updated.EaseFactor)
		}
		if !updated.NextReview.Equal(testNow.AddDate(0, 0, 1)) {
			t.Errorf("quality %d: expected review tomorrow, got %v", quality, updated.NextReview)
		}
		if updated.LastQuality != quality {
			t.Errorf("quality %d: last quality not recorded, got %d", quality, updated.LastQuality)
		}
	}
}

func TestReview_FirstSuccess(t *testing.T) {
	sm := NewSM2()

	for _, quality := range []int{3, 4, 5} {
		card := models.NewCard("u1", "dog", "собака")
		updated, err := sm.Review(card, quality, testNow)
		if err != nil {
			t.Fatalf("quality %d: unexpected error: %v", quality, err)
		}
		if updated.Repetitions != 1 {
			t.Errorf("quality %d: expected repetitions 1, got %d", quality, updated.Repetitions)
		}
		if updated.Interval != 1 {
			t.Errorf("quality %d: expected interval 1, got %d", quality, updated.Interval)
		}
	}
}

func TestReview_PerfectSequence(t *testing.T) {
	sm := NewSM2()
	card := models.NewCard("u1", "house", "дом")
	now := testNow

	// Three consecutive quality=5 reviews from a fresh card: intervals
	// 1, 6, then round(6 * updated EF). EF climbs 2.5 -> 2.6 -> 2.7 -> 2.8.
	wantIntervals := []int{1, 6, 17}
	wantEase := []float64{2.6, 2.7, 2.8}

	for i := range wantIntervals {
		prevEase := card.EaseFactor
		var err error
		card, err = sm.Review(card, 5, now)
		if err != nil {
			t.Fatalf("review %d: unexpected error: %v", i+1, err)
		}
		if card.Interval != wantIntervals[i] {
			t.Errorf("review %d: expected interval %d, got %d", i+1, wantIntervals[i], card.Interval)
		}
		if !almostEqual(card.EaseFactor, wantEase[i]) {
			t.Errorf("review %d: expected ease %v, got %v", i+1, wantEase[i], card.EaseFactor)
		}
		if card.EaseFactor <= prevEase {
			t.Errorf("review %d: ease factor should strictly increase on quality 5", i+1)
		}
		if !card.NextReview.Equal(now.AddDate(0, 0, card.Interval)) {
			t.Errorf("review %d: next review not interval days ahead", i+1)
		}
		now = card.NextReview
	}
}

func TestReview_EaseFactorClosedForm(t *testing.T) {
	sm := NewSM2()

	tests := []struct {
		quality  int
		wantEase float64
	}{
		{3, 2.36}, // 2.5 + (0.1 - 2*(0.08 + 2*0.02))
		{4, 2.5},  // 2.5 + (0.1 - 1*(0.08 + 1*0.02))
		{5, 2.6},  // 2.5 + 0.1
	}
	for _, tt := range tests {
		card := models.Card{EaseFactor: 2.5}
		updated, err := sm.Review(card, tt.quality, testNow)
		if err != nil {
			t.Fatalf("quality %d: unexpected error: %v", tt.quality, err)
		}
		if !almostEqual(updated.EaseFactor, tt.wantEase) {
			t.Errorf("quality %d: expected ease %v, got %v", tt.quality, tt.wantEase, updated.EaseFactor)
		}
	}
}

func TestReview_EaseFactorFloor(t *testing.T) {
	sm := NewSM2()
	card := models.Card{EaseFactor: 1.3}

	// Repeated weak-but-passing grades keep pushing toward the floor.
	for i := 0; i < 5; i++ {
		var err error
		card, err = sm.Review(card, 3, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if card.EaseFactor < MinEaseFactor {
			t.Fatalf("ease factor dropped below floor: %v", card.EaseFactor)
		}
		if !almostEqual(card.EaseFactor, MinEaseFactor) {
			t.Fatalf("expected ease pinned at %v, got %v", MinEaseFactor, card.EaseFactor)
		}
	}
}

func TestReview_MaxIntervalCap(t *testing.T) {
	sm := NewSM2()
	card := models.Card{Repetitions: 10, Interval: 300, EaseFactor: 2.5}

	updated, err := sm.Review(card, 5, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Interval != sm.MaxInterval {
		t.Errorf("expected interval capped at %d, got %d", sm.MaxInterval, updated.Interval)
	}
}

func TestCardStatus_Boundaries(t *testing.T) {
	tests := []struct {
		interval int
		want     Status
	}{
		{0, StatusLearning},
		{1, StatusLearning},
		{2, StatusReview},
		{20, StatusReview},
		{21, StatusMastered},
		{100, StatusMastered},
	}
	for _, tt := range tests {
		if got := CardStatus(tt.interval); got != tt.want {
			t.Errorf("interval %d: expected %q, got %q", tt.interval, tt.want, got)
		}
	}
}

func TestNextDue_OrderAndLimit(t *testing.T) {
	sm := NewSM2()
	cards := []models.Card{
		{ID: "future", NextReview: testNow.AddDate(0, 0, 7), Repetitions: 3, EaseFactor: 2.5},
		{ID: "hard", NextReview: testNow.AddDate(0, 0, -1), Repetitions: 2, EaseFactor: 1.5},
		{ID: "easy", NextReview: testNow.AddDate(0, 0, -3), Repetitions: 5, EaseFactor: 2.8},
		{ID: "fresh", NextReview: testNow.AddDate(0, 0, -1), Repetitions: 0, EaseFactor: 2.5},
	}

	due := sm.NextDue(cards, testNow, 0)
	if len(due) != 3 {
		t.Fatalf("expected 3 due cards, got %d", len(due))
	}
	wantOrder := []string{"fresh", "hard", "easy"}
	for i, id := range wantOrder {
		if due[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, due[i].ID)
		}
	}

	if limited := sm.NextDue(cards, testNow, 2); len(limited) != 2 {
		t.Errorf("expected limit of 2 applied, got %d cards", len(limited))
	}
}
