package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jusunglee/mta-traintimes/internal/models"
	"github.com/jusunglee/mta-traintimes/pkg/mta"
)

// Handler handles HTTP requests
type Handler struct {
	client mta.Client
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(client mta.Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, logger: logger}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/times/{uptown}/{downtown}", h.handleTimes).Methods("GET")
	r.HandleFunc("/feeds", h.handleFeeds).Methods("GET")
}

// TimesResponse is returned by /times
type TimesResponse struct {
	Data    models.ScanResult `json:"data"`
	Updated string            `json:"updated"`
}

// FeedsResponse is returned by /feeds
type FeedsResponse struct {
	Data []models.FeedScore `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"title": "mta-traintimes",
		"usage": "GET /times/{uptown}/{downtown}, e.g. /times/Q03N/Q03S",
	}
	h.writeJSON(w, response)
}

func (h *Handler) handleTimes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.client.GetTrainTimes(r.Context(), vars["uptown"], vars["downtown"])
	if err != nil {
		// Only happens when the request was cancelled
		h.logger.Warn("Train times query aborted", "uptown", vars["uptown"], "downtown", vars["downtown"], "error", err)
		h.writeError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, TimesResponse{
		Data:    result,
		Updated: time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleFeeds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, FeedsResponse{Data: h.client.GetFeedScores()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
