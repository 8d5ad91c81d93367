package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/storage"
)

// GameCounter reports how many games are held in memory.
type GameCounter interface {
	Len() int
}

type StorageHealth struct {
	Backend   string `json:"backend"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Service   string        `json:"service"`
	Storage   StorageHealth `json:"storage"`
	LiveGames int           `json:"live_games"`
}

// HealthHandler pings the game store and reports the engine's load.
type HealthHandler struct {
	storage storage.Storage
	backend string
	games   GameCounter
	logger  *slog.Logger
}

func NewHealthHandler(store storage.Storage, backend string, games GameCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: store,
		backend: backend,
		games:   games,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.storage.Ping(ctx)
	sh := StorageHealth{
		Backend:   h.backend,
		Status:    "healthy",
		LatencyMS: time.Since(start).Milliseconds(),
	}
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "adventure-engine",
	}
	if err != nil {
		h.logger.Warn("Storage health check failed", "backend", h.backend, "error", err)
		sh.Status = "unhealthy"
		sh.Error = err.Error()
		response.Status = "degraded"
	}
	response.Storage = sh
	if h.games != nil {
		response.LiveGames = h.games.Len()
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}
