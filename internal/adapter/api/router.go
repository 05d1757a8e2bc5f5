package api

import (
	"log/slog"
	"net/http"

	"github.com/roadgrid/cvstore/internal/adapter/api/handler"
	"github.com/roadgrid/cvstore/internal/usecase"
)

// NewRouter wires the status and retention-config endpoints onto a mux.
// The mux is mounted on the logger worker's admin server next to /metrics
// and /healthz.
func NewRouter(status *usecase.StatusService, configs *usecase.ConfigService, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	statusHandler := handler.NewStatusHandler(status, logger)
	mux.HandleFunc("GET /status/categories", statusHandler.TotalsByCategory)
	mux.HandleFunc("GET /status/tiers", statusHandler.TotalsByTier)
	mux.HandleFunc("GET /status/lasthour", statusHandler.LastHourTotals)
	mux.HandleFunc("GET /status/intersections", statusHandler.IntersectionTotals)
	mux.HandleFunc("GET /status/count", statusHandler.TotalMessageCount)
	mux.HandleFunc("GET /messages", statusHandler.Messages)

	configHandler := handler.NewConfigHandler(configs, logger)
	mux.HandleFunc("GET /config", configHandler.Get)
	mux.HandleFunc("POST /config", configHandler.Add)
	mux.HandleFunc("PUT /config", configHandler.Update)
	mux.HandleFunc("DELETE /config/{id}", configHandler.Delete)

	return mux
}
