package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/command"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// ErrNotFound is returned when no game exists for an id.
var ErrNotFound = errors.New("game not found")

// Relay forwards a game's engine events somewhere outside the process.
type Relay interface {
	Attach(gameID uuid.UUID, bus *events.Bus) []events.Subscription
}

type game struct {
	mu      sync.Mutex
	engine  *engine.Engine
	deleted bool
}

// Manager owns one engine per game. Commands for the same game are
// serialized; different games run in parallel. Every successful command is
// followed by a save of the engine snapshot under the game id.
type Manager struct {
	mu     sync.RWMutex
	games  map[uuid.UUID]*game
	store  storage.Storage
	def    *world.Definition
	relay  Relay
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRelay attaches relay to every engine the manager creates or loads.
func WithRelay(relay Relay) Option {
	return func(m *Manager) {
		m.relay = relay
	}
}

// WithWorld sets the world definition for new games.
func WithWorld(def *world.Definition) Option {
	return func(m *Manager) {
		m.def = def
	}
}

// NewManager creates a session manager backed by store.
func NewManager(store storage.Storage, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		games:  make(map[uuid.UUID]*game),
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.def == nil {
		m.def = world.Default()
	}
	return m
}

func (m *Manager) newEngine() *engine.Engine {
	return engine.New(engine.WithWorld(m.def), engine.WithLogger(m.logger))
}

func (m *Manager) attach(id uuid.UUID, e *engine.Engine) {
	if m.relay != nil {
		m.relay.Attach(id, e.Bus())
	}
}

// Create starts a new game and returns its id with the opening look.
func (m *Manager) Create(ctx context.Context) (uuid.UUID, engine.Result, error) {
	e := m.newEngine()
	if err := e.InitializeWorld(); err != nil {
		return uuid.Nil, engine.Result{}, err
	}
	snap, err := e.Snapshot()
	if err != nil {
		return uuid.Nil, engine.Result{}, err
	}
	id := snap.ID
	m.attach(id, e)

	res, err := e.Execute(command.Look)
	if err != nil {
		return uuid.Nil, engine.Result{}, err
	}
	if err := m.save(ctx, id, e); err != nil {
		return uuid.Nil, engine.Result{}, err
	}

	m.mu.Lock()
	m.games[id] = &game{engine: e}
	m.mu.Unlock()

	m.logger.Info("Game created", "game_id", id)
	return id, res, nil
}

// Execute runs one line of player input against a game.
func (m *Manager) Execute(ctx context.Context, id uuid.UUID, input string) (engine.Result, error) {
	g, err := m.get(ctx, id)
	if err != nil {
		return engine.Result{}, err
	}
	return m.execute(ctx, id, g, input)
}

// execute runs input under the game lock. When the save fails the engine is
// restored to its state before the command.
func (m *Manager) execute(ctx context.Context, id uuid.UUID, g *game, input string) (engine.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleted {
		return engine.Result{}, ErrNotFound
	}

	before, err := g.engine.Snapshot()
	if err != nil {
		return engine.Result{}, fmt.Errorf("failed to process command: %w", err)
	}
	res, err := g.engine.Execute(input)
	if err != nil {
		return engine.Result{}, fmt.Errorf("failed to process command: %w", err)
	}
	if res.Success {
		if err := m.save(ctx, id, g.engine); err != nil {
			if rerr := g.engine.Restore(before); rerr != nil {
				m.logger.Error("Failed to roll back game", "game_id", id, "error", rerr)
			}
			return engine.Result{}, err
		}
	}
	return res, nil
}

// State returns a copy of a game's current state without running a command.
func (m *Manager) State(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	g, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleted {
		return nil, ErrNotFound
	}
	return g.engine.Snapshot()
}

// Delete removes a game from memory and storage. A command already holding
// the game finishes first and cannot save it back afterwards.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	g, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()

	if ok {
		g.mu.Lock()
		g.deleted = true
		defer g.mu.Unlock()
	}

	if err := m.store.DeleteGameState(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	m.logger.Info("Game deleted", "game_id", id)
	return nil
}

// Exists reports whether a game is live or saved.
func (m *Manager) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := m.get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns the ids of saved games.
func (m *Manager) List(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := m.store.ListGameStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return ids, nil
}

// Len returns the number of games held in memory.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// get returns the live game for id, loading it from storage on a miss.
func (m *Manager) get(ctx context.Context, id uuid.UUID) (*game, error) {
	m.mu.RLock()
	g, ok := m.games[id]
	m.mu.RUnlock()
	if ok {
		return g, nil
	}

	gs, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if gs == nil {
		return nil, ErrNotFound
	}

	e := m.newEngine()
	if err := e.Restore(gs); err != nil {
		return nil, fmt.Errorf("saved game %s is invalid: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.games[id]; ok {
		return existing, nil
	}
	m.attach(id, e)
	g = &game{engine: e}
	m.games[id] = g
	m.logger.Debug("Game loaded from storage", "game_id", id)
	return g, nil
}

func (m *Manager) save(ctx context.Context, id uuid.UUID, e *engine.Engine) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	if err := m.store.SaveGameState(ctx, id, snap); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}
