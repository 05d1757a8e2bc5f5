package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/roadgrid/cvstore/internal/domain"
	"github.com/roadgrid/cvstore/internal/usecase"
)

// ConfigHandler serves the retention configuration endpoints.
type ConfigHandler struct {
	configs *usecase.ConfigService
	logger  *slog.Logger
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(configs *usecase.ConfigService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, logger: logger}
}

// Get handles GET /config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Get(r.Context())
	if err != nil {
		h.fail(w, "failed to load retention config", err)
		return
	}
	if cfg == nil {
		http.Error(w, "no retention configuration", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// Add handles POST /config.
func (h *ConfigHandler) Add(w http.ResponseWriter, r *http.Request) {
	var cfg domain.RetentionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	added, err := h.configs.Add(r.Context(), cfg)
	if errors.Is(err, domain.ErrConfigExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, added)
}

// Update handles PUT /config.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var cfg domain.RetentionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.configs.Update(r.Context(), cfg)
	if errors.Is(err, domain.ErrConfigNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// Delete handles DELETE /config/{id}.
func (h *ConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid config id", http.StatusBadRequest)
		return
	}
	if err := h.configs.Delete(r.Context(), id); err != nil {
		h.fail(w, "failed to delete retention config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConfigHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
