package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/roadgrid/cvstore/internal/usecase"
)

// StatusHandler serves the read-side aggregate endpoints.
type StatusHandler struct {
	status *usecase.StatusService
	logger *slog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(status *usecase.StatusService, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{status: status, logger: logger}
}

// TotalsByCategory handles GET /status/categories.
func (h *StatusHandler) TotalsByCategory(w http.ResponseWriter, r *http.Request) {
	totals, err := h.status.TotalsByCategory(r.Context())
	if err != nil {
		h.fail(w, "failed to read category totals", err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// TotalsByTier handles GET /status/tiers.
func (h *StatusHandler) TotalsByTier(w http.ResponseWriter, r *http.Request) {
	totals, err := h.status.TotalsByTier(r.Context())
	if err != nil {
		h.fail(w, "failed to read tier totals", err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// LastHourTotals handles GET /status/lasthour.
func (h *StatusHandler) LastHourTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.status.LastHourTotals(r.Context())
	if err != nil {
		h.fail(w, "failed to read last hour totals", err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// IntersectionTotals handles GET /status/intersections.
func (h *StatusHandler) IntersectionTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.status.IntersectionTotals(r.Context())
	if err != nil {
		h.fail(w, "failed to read intersection totals", err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// TotalMessageCount handles GET /status/count.
func (h *StatusHandler) TotalMessageCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.status.TotalMessageCount(r.Context())
	if err != nil {
		h.fail(w, "failed to read total message count", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"totalMessageCount": count})
}

// Messages handles GET /messages?start=RFC3339[&end=RFC3339]. start is
// required; end defaults to open.
func (h *StatusHandler) Messages(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start")
	if startParam == "" {
		http.Error(w, "start is required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, startParam)
	if err != nil {
		http.Error(w, "start must be RFC3339", http.StatusBadRequest)
		return
	}

	var end *time.Time
	if endParam := r.URL.Query().Get("end"); endParam != "" {
		parsed, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			http.Error(w, "end must be RFC3339", http.StatusBadRequest)
			return
		}
		end = &parsed
	}

	records, err := h.status.Find(r.Context(), start, end)
	if err != nil {
		h.fail(w, "failed to query messages", err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *StatusHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
