package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Games is the session surface the games handler needs.
type Games interface {
	Create(ctx context.Context) (uuid.UUID, engine.Result, error)
	Execute(ctx context.Context, id uuid.UUID, input string) (engine.Result, error)
	State(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

var _ Games = (*session.Manager)(nil)

// CreateGameResponse is returned by POST /v1/games.
type CreateGameResponse struct {
	ID     uuid.UUID     `json:"id"`
	Result engine.Result `json:"result"`
}

// ListGamesResponse is returned by GET /v1/games.
type ListGamesResponse struct {
	Games []uuid.UUID `json:"games"`
}

// CommandRequest is the body of POST /v1/games/{id}/command.
type CommandRequest struct {
	Command string `json:"command"`
}

type GamesHandler struct {
	games  Games
	logger *slog.Logger
}

func NewGamesHandler(games Games, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		games:  games,
		logger: logger,
	}
}

// ServeHTTP routes game requests.
// Routes:
// GET /v1/games                  - List saved games
// POST /v1/games                 - Start a new game
// GET /v1/games/{id}             - Current game state
// DELETE /v1/games/{id}          - End a game
// POST /v1/games/{id}/command    - Run one command
func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
		}
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 || (len(parts) == 2 && parts[1] != "command") {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCommand(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, res, err := h.games.Create(r.Context())
	if err != nil {
		h.logger.Error("Failed to create game", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.encode(w, CreateGameResponse{ID: id, Result: res})
}

func (h *GamesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.games.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list games", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list games")
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	h.encode(w, ListGamesResponse{Games: ids})
}

func (h *GamesHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.games.State(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		logger.WithError(logger.WithGameID(h.logger, id), err).Error("Failed to read game")
		h.writeError(w, http.StatusInternalServerError, "Failed to read game")
		return
	}
	h.encode(w, gs)
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	exists, err := h.games.Exists(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to look up game", "game_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if !exists {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	if err := h.games.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete game", "game_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GamesHandler) handleCommand(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		h.writeError(w, http.StatusBadRequest, "command is required")
		return
	}
	h.run(w, r, id, req.Command)
}

// run executes input and writes the Result. Failed commands are still 200.
func (h *GamesHandler) run(w http.ResponseWriter, r *http.Request, id uuid.UUID, input string) {
	log := logger.WithGameID(h.logger, id)
	res, err := h.games.Execute(r.Context(), id, input)
	if errors.Is(err, session.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		logger.WithError(log, err).Error("Failed to execute command")
		h.writeError(w, http.StatusInternalServerError, "Failed to execute command")
		return
	}

	log.Debug("Command executed", "input", input, "success", res.Success)
	h.encode(w, res)
}

func (h *GamesHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.encode(w, ErrorResponse{Error: msg})
}

func (h *GamesHandler) encode(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
