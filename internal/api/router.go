package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all endpoints. The scan trigger and the review
// endpoints sit behind bearer auth; health does not.
func NewRouter(h *Handler, auth AuthConfig, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(AuthMiddleware(auth))
	protected.HandleFunc("/internal/scan", h.RunScan).Methods(http.MethodPost)
	protected.HandleFunc("/reviews", h.SubmitReview).Methods(http.MethodPost)
	protected.HandleFunc("/cards/{id}/review", h.ReviewCard).Methods(http.MethodPost)
	protected.HandleFunc("/users/{id}/due", h.DueCards).Methods(http.MethodGet)

	return CORSHandler(allowedOrigins)(r)
}
