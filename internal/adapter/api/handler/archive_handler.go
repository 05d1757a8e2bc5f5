package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

// ArchiveHandler serves archive object search over the key-embedded
// timestamps.
type ArchiveHandler struct {
	objects domain.ObjectStore
	logger  *slog.Logger
}

// NewArchiveHandler creates a new ArchiveHandler.
func NewArchiveHandler(objects domain.ObjectStore, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{objects: objects, logger: logger}
}

// Objects handles GET /archive/objects?start=RFC3339[&end=RFC3339]. start
// is required; end defaults to now.
func (h *ArchiveHandler) Objects(w http.ResponseWriter, r *http.Request) {
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

	end := time.Now().UTC()
	if endParam := r.URL.Query().Get("end"); endParam != "" {
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			http.Error(w, "end must be RFC3339", http.StatusBadRequest)
			return
		}
	}

	keys, err := h.objects.SearchRange(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to search archive objects", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, keys)
}
