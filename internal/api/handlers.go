package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
	"github.com/maltedev/kosmetik-price-monitor/internal/orchestrator"
)

type Handlers struct {
	service *orchestrator.Service
	logger  *slog.Logger
}

func NewHandlers(service *orchestrator.Service, logger *slog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// ScrapeResponse represents the result of a triggered sweep
type ScrapeResponse struct {
	Status        string `json:"status"`
	LastUpdated   string `json:"last_updated"`
	TotalListings int    `json:"total_listings"`
}

// TriggerScrape handles manual sweep requests
func (h *Handlers) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.TriggerScrape(r.Context())
	if errors.Is(err, orchestrator.ErrSweepInProgress) {
		h.respondError(w, http.StatusConflict, "a sweep is already in progress")
		return
	}
	if err != nil {
		h.logger.Error("sweep failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{
		Status:        "completed",
		LastUpdated:   snapshot.TakenAt.UTC().Format(models.TimestampLayout),
		TotalListings: snapshot.TotalListings(),
	})
}

// GetSnapshot returns the full persisted price document
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.GetSnapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to load snapshot", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	h.respondJSON(w, http.StatusOK, snapshot.ToDocument())
}

// GetBrandView returns the plain-text per-competitor breakdown for a brand
func (h *Handlers) GetBrandView(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	if brand == "" {
		h.respondError(w, http.StatusBadRequest, "brand is required")
		return
	}

	view, err := h.service.GetBrandView(r.Context(), brand)
	if err != nil {
		h.logger.Error("failed to render brand view", "error", err, "brand", brand)
		h.respondError(w, http.StatusInternalServerError, "failed to render brand view")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(view)); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// GetStatus returns listing counts and per-competitor health
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetStatus(r.Context())
	if err != nil {
		h.logger.Error("failed to build status", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to build status")
		return
	}

	h.respondJSON(w, http.StatusOK, status)
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
