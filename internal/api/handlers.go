// Package api exposes the HTTP surface: the externally-triggered daily
// scan plus the graded-review and due-card endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/notifier"
	"github.com/example/lexibot/internal/spaced_repetition"
	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// Handler holds the dependencies of all HTTP endpoints.
type Handler struct {
	cards   *database.CardRepository
	sm2     *spaced_repetition.SM2
	scanner *notifier.Scanner
	log     *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(s store.Store, scanner *notifier.Scanner, log *zap.Logger) *Handler {
	return &Handler{
		cards:   database.NewCardRepository(s),
		sm2:     spaced_repetition.NewSM2(),
		scanner: scanner,
		log:     log,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunScan triggers one due-scan run. It requires no request body and is
// meant to be called by an external scheduler.
// POST /api/internal/scan
func (h *Handler) RunScan(w http.ResponseWriter, r *http.Request) {
	result, err := h.scanner.RunDailyScan(r.Context(), time.Now())
	if err != nil {
		h.log.Error("scan request failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"notificationsSent": result.NotificationsCreated,
		"message":           "daily scan completed",
	})
}

type reviewRequest struct {
	UserID      string `json:"user_id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Quality     *int   `json:"quality"`
}

type cardResponse struct {
	models.Card
	Status spaced_repetition.Status `json:"status"`
}

// SubmitReview grades a recall for a (user, word) pair, creating the
// card with scheduler defaults on first review.
// POST /api/reviews
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Word == "" {
		writeJSONError(w, http.StatusBadRequest, "user_id and word are required")
		return
	}
	if req.Quality == nil {
		writeJSONError(w, http.StatusBadRequest, "quality is required")
		return
	}

	card, err := h.cards.GetByUserAndWord(r.Context(), req.UserID, req.Word)
	if err != nil {
		h.log.Error("failed to load card", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to load card")
		return
	}

	created := false
	if card == nil {
		// First review: the interaction handler creates the card
		fresh := models.NewCard(req.UserID, req.Word, req.Translation)
		card, err = h.cards.Create(r.Context(), fresh)
		if err != nil {
			h.log.Error("failed to create card", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "failed to create card")
			return
		}
		created = true
	}

	updated, err := h.sm2.Review(*card, *req.Quality, time.Now())
	if err != nil {
		if errors.Is(err, spaced_repetition.ErrInvalidQuality) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("review failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "review failed")
		return
	}

	stored, err := h.cards.UpdateSchedule(r.Context(), updated)
	if err != nil {
		h.log.Error("failed to persist review", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to persist review")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, cardResponse{Card: *stored, Status: spaced_repetition.CardStatus(stored.Interval)})
}

// ReviewCard grades a recall for a card addressed by id.
// POST /api/cards/{id}/review
func (h *Handler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	cardID := mux.Vars(r)["id"]

	var req struct {
		Quality *int `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quality == nil {
		writeJSONError(w, http.StatusBadRequest, "quality is required")
		return
	}

	card, err := h.cards.GetByID(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "card not found")
			return
		}
		h.log.Error("failed to load card", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to load card")
		return
	}

	updated, err := h.sm2.Review(*card, *req.Quality, time.Now())
	if err != nil {
		if errors.Is(err, spaced_repetition.ErrInvalidQuality) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("review failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "review failed")
		return
	}

	stored, err := h.cards.UpdateSchedule(r.Context(), updated)
	if err != nil {
		h.log.Error("failed to persist review", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to persist review")
		return
	}
	writeJSON(w, http.StatusOK, cardResponse{Card: *stored, Status: spaced_repetition.CardStatus(stored.Interval)})
}

// DueCards lists a user's cards due at request time, hardest first.
// GET /api/users/{id}/due?limit=20
func (h *Handler) DueCards(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	cards, err := h.cards.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list cards", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}

	due := h.sm2.NextDue(cards, time.Now(), limit)
	out := make([]cardResponse, 0, len(due))
	for _, c := range due {
		out = append(out, cardResponse{Card: c, Status: spaced_repetition.CardStatus(c.Interval)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"cards":   out,
	})
}
