// Package spaced_repetition implements the SM-2 review scheduling
// algorithm: given a card's state and a 0-5 recall quality it computes
// the next review interval and ease factor. Review is a pure function of
// (state, quality, now); persistence belongs to the caller.
package spaced_repetition

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// ErrInvalidQuality is returned when a recall quality is outside [0,5].
// Out-of-range input is a contract violation, never silently clamped.
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// MinEaseFactor is the floor below which the ease factor never drops.
const MinEaseFactor = 1.3

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Пороговое значение "хорошего ответа"
	PassThreshold int
	// Максимальный интервал повторения в днях
	MaxInterval int
}

// NewSM2 создает новый экземпляр SM2 с настройками по умолчанию
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: 3,   // Ответы 3 и выше считаются успешными
		MaxInterval:   365, // Максимальный интервал - 1 год
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Review computes the next state of a card after a graded recall.
// The input card is not mutated; the returned card carries the updated
// repetitions, interval, ease factor and review timestamps.
func (sm *SM2) Review(card models.Card, quality int, now time.Time) (models.Card, error) {
	if quality < int(QualityBlackout) || quality > int(QualityPerfect) {
		return card, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	if quality >= sm.PassThreshold {
		// Correct response: ease factor moves first, on success only
		ef := card.EaseFactor + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
		if ef < MinEaseFactor {
			ef = MinEaseFactor // Не опускаем ниже 1.3
		}
		card.EaseFactor = ef
		card.Repetitions++

		switch card.Repetitions {
		case 1:
			card.Interval = 1
		case 2:
			card.Interval = 6
		default:
			card.Interval = int(math.Round(float64(card.Interval) * card.EaseFactor))
		}
		if sm.MaxInterval > 0 && card.Interval > sm.MaxInterval {
			card.Interval = sm.MaxInterval
		}
	} else {
		// Incorrect response - reset progress, review again tomorrow
		card.Repetitions = 0
		card.Interval = 1
	}

	// Calendar-day arithmetic: due "tomorrow" means the same wall-clock
	// time next day
	card.NextReview = now.AddDate(0, 0, card.Interval)
	card.LastReview = now
	card.LastQuality = quality
	return card, nil
}

// Status is the display classification of a card's interval.
type Status string

const (
	// StatusLearning covers new cards and cards reviewed daily.
	StatusLearning Status = "learning"
	// StatusReview covers cards with an interval under three weeks.
	StatusReview Status = "review"
	// StatusMastered covers cards with an interval of three weeks or more.
	StatusMastered Status = "mastered"
)

// MasteredInterval is the interval, in days, at which a card counts as mastered.
const MasteredInterval = 21

// CardStatus classifies a card's interval for display. The boundaries
// at 1 and 21 days are contract.
func CardStatus(interval int) Status {
	switch {
	case interval <= 1:
		return StatusLearning
	case interval < MasteredInterval:
		return StatusReview
	default:
		return StatusMastered
	}
}

// NextDue returns up to limit cards due at the given time, hardest first:
// never-reviewed cards, then lowest ease factor, then most overdue.
func (sm *SM2) NextDue(cards []models.Card, now time.Time, limit int) []models.Card {
	var due []models.Card
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if (due[i].Repetitions == 0) != (due[j].Repetitions == 0) {
			return due[i].Repetitions == 0
		}
		if due[i].EaseFactor != due[j].EaseFactor {
			return due[i].EaseFactor < due[j].EaseFactor
		}
		return due[i].NextReview.Before(due[j].NextReview)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}
