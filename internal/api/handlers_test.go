package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/notifier"
	"github.com/example/lexibot/internal/store"
)

func newTestServer(mem *store.Memory) http.Handler {
	scanner := notifier.New(mem, nil, zap.NewNop(), notifier.Config{})
	handler := NewHandler(mem, scanner, zap.NewNop())
	return NewRouter(handler, AuthConfig{Bypass: true}, nil)
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitReview_CreatesCardOnFirstReview(t *testing.T) {
	mem := store.NewMemory()
	router := newTestServer(mem)

	w := postJSON(t, router, "/api/reviews", map[string]any{
		"user_id": "u1", "word": "cat", "translation": "кошка", "quality": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Repetitions int     `json:"repetitions"`
		Interval    int     `json:"interval"`
		EaseFactor  float64 `json:"ease_factor"`
		Status      string  `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Repetitions != 1 || resp.Interval != 1 {
		t.Errorf("expected first-review state reps=1 interval=1, got %+v", resp)
	}
	if resp.Status != "learning" {
		t.Errorf("expected status learning, got %q", resp.Status)
	}
	if mem.Len(database.TableFlashcards) != 1 {
		t.Errorf("expected card persisted, table has %d", mem.Len(database.TableFlashcards))
	}

	// Second grading of the same word reuses the card.
	w = postJSON(t, router, "/api/reviews", map[string]any{
		"user_id": "u1", "word": "cat", "quality": 5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat review, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Repetitions != 2 || resp.Interval != 6 {
		t.Errorf("expected second-review state reps=2 interval=6, got %+v", resp)
	}
	if mem.Len(database.TableFlashcards) != 1 {
		t.Errorf("repeat review must not create a second card, table has %d", mem.Len(database.TableFlashcards))
	}
}

func TestSubmitReview_InvalidQuality(t *testing.T) {
	mem := store.NewMemory()
	router := newTestServer(mem)

	w := postJSON(t, router, "/api/reviews", map[string]any{
		"user_id": "u1", "word": "cat", "quality": 9,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range quality, got %d", w.Code)
	}

	w = postJSON(t, router, "/api/reviews", map[string]any{
		"user_id": "u1", "word": "cat",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quality, got %d", w.Code)
	}
}

func TestRunScan_ReportsCount(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(database.TableUsers, store.Record{"id": "u1"})
	mem.Seed(database.TableFlashcards,
		store.Record{"id": "c1", "user_id": "u1", "word": "cat",
			"next_review": time.Now().AddDate(0, 0, -1).Format(time.RFC3339)},
	)
	router := newTestServer(mem)

	w := postJSON(t, router, "/api/internal/scan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success           bool   `json:"success"`
		NotificationsSent int    `json:"notificationsSent"`
		Message           string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.NotificationsSent != 1 {
		t.Errorf("expected success with 1 notification, got %+v", resp)
	}
}

func TestDueCards_ListsDueOnly(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(database.TableFlashcards,
		store.Record{"id": "c1", "user_id": "u1", "word": "cat",
			"next_review": time.Now().AddDate(0, 0, -1).Format(time.RFC3339), "interval": 1},
		store.Record{"id": "c2", "user_id": "u1", "word": "dog",
			"next_review": time.Now().AddDate(0, 0, 30).Format(time.RFC3339), "interval": 30},
	)
	router := newTestServer(mem)

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/due", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Cards   []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Cards) != 1 || resp.Cards[0].ID != "c1" {
		t.Fatalf("expected only the due card, got %+v", resp.Cards)
	}
	if resp.Cards[0].Status != "learning" {
		t.Errorf("expected status learning, got %q", resp.Cards[0].Status)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	mem := store.NewMemory()
	scanner := notifier.New(mem, nil, zap.NewNop(), notifier.Config{})
	handler := NewHandler(mem, scanner, zap.NewNop())
	router := NewRouter(handler, AuthConfig{JWTSecret: "secret"}, nil)

	w := postJSON(t, router, "/api/internal/scan", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", w.Code)
	}

	// Health stays open.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	hw := httptest.NewRecorder()
	router.ServeHTTP(hw, req)
	if hw.Code != http.StatusOK {
		t.Errorf("expected open health endpoint, got %d", hw.Code)
	}
}
