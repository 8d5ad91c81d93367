package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/command"
	"github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// ErrNotInitialized is returned by Process when InitializeWorld has not been
// called. It is a programming error, distinct from a failed Result.
var ErrNotInitialized = errors.New("engine: world not initialized")

// Messages returned in failed Results.
const (
	MsgUnknownCommand = "unknown command"
	MsgNoExit         = "you cannot go that way"
	MsgInCombat       = "you cannot leave during combat"
	MsgItemNotHere    = "item not found here"
	MsgNotCarrying    = "you are not carrying that"
	MsgNotPortable    = "you cannot take that"
	MsgNoEnemy        = "no such enemy here"
	MsgGameOver       = "the game is over; type reset to play again"
	MsgEmptyInventory = "you are carrying nothing."
)

// Result is the outcome of one command.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func ok(msg string, data map[string]any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{Success: true, Message: msg, Data: data}
}

func fail(msg string) Result {
	return Result{Success: false, Message: msg, Data: map[string]any{}}
}

type handlerFunc func(cmd command.ParsedCommand) Result

type pendingEvent struct {
	typ  events.EventType
	data map[string]any
}

// Engine owns one game's state and event bus. It is not safe for concurrent
// use; callers serialize access per game.
type Engine struct {
	def      *world.Definition
	gs       *state.GameState
	bus      *events.Bus
	logger   *slog.Logger
	handlers map[string]handlerFunc
	pending  []pendingEvent
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorld sets the world definition used by InitializeWorld.
func WithWorld(def *world.Definition) Option {
	return func(e *Engine) {
		e.def = def
	}
}

// WithBus replaces the engine's event bus.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an uninitialized engine. Call InitializeWorld before Process.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.def == nil {
		e.def = world.Default()
	}
	if e.bus == nil {
		e.bus = events.NewBus(events.WithLogger(e.logger))
	}

	e.handlers = map[string]handlerFunc{
		command.Move:      e.handleMove,
		command.Look:      e.handleLook,
		command.Take:      e.handleTake,
		command.Drop:      e.handleDrop,
		command.Use:       e.handleUse,
		command.Inventory: e.handleInventory,
		command.Stats:     e.handleStats,
		command.Attack:    e.handleAttack,
		command.Help:      e.handleHelp,
		command.Reset:     e.handleReset,
	}
	return e
}

// Bus returns the engine's event bus for subscribing.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Initialized reports whether a world has been built.
func (e *Engine) Initialized() bool {
	return e.gs != nil
}

// InitializeWorld discards any existing game and builds a fresh one from the
// engine's world definition. A world that fails validation is a fatal error
// and leaves the previous state in place.
func (e *Engine) InitializeWorld() error {
	gs, err := state.NewGameState(e.def)
	if err != nil {
		return fmt.Errorf("failed to initialize world: %w", err)
	}
	e.gs = gs
	e.logger.Debug("World initialized", "game_id", gs.ID, "start", gs.Player.Location)

	e.bus.Publish(events.GameStarted, map[string]any{
		"game_id":  gs.ID.String(),
		"location": gs.Player.Location,
	})
	return nil
}

// Reset is InitializeWorld under the name the reset command uses.
func (e *Engine) Reset() error {
	return e.InitializeWorld()
}

// Process runs one parsed command to completion. Semantic failures come back
// as a Result with Success false; the error is reserved for programming
// errors such as an uninitialized engine.
func (e *Engine) Process(cmd command.ParsedCommand) (Result, error) {
	if e.gs == nil {
		return Result{}, ErrNotInitialized
	}

	handler, found := e.handlers[cmd.Command]
	if !found {
		return fail(MsgUnknownCommand), nil
	}
	if e.gs.Status == state.StatusGameOver && cmd.Command != command.Reset {
		return fail(MsgGameOver), nil
	}
	if err := command.Validate(cmd); err != nil {
		spec, _ := command.Lookup(cmd.Command)
		return fail("usage: " + spec.Usage), nil
	}

	e.pending = e.pending[:0]
	res := handler(cmd)
	if res.Success && cmd.Command != command.Reset {
		e.gs.Turn++
		e.gs.UpdatedAt = time.Now()
	}

	// Handlers only queue events; they are delivered once the mutation is done.
	queued := e.pending
	e.pending = nil
	for _, p := range queued {
		e.bus.Publish(p.typ, p.data)
	}

	e.logger.Debug("Command processed",
		"game_id", e.gs.ID,
		"command", cmd.Command,
		"success", res.Success,
		"status", e.gs.Status)
	return res, nil
}

// Execute parses raw text and processes it.
func (e *Engine) Execute(input string) (Result, error) {
	return e.Process(command.Parse(input))
}

func (e *Engine) emit(t events.EventType, data map[string]any) {
	e.pending = append(e.pending, pendingEvent{typ: t, data: data})
}

// Snapshot returns a deep copy of the game state for persistence.
func (e *Engine) Snapshot() (*state.GameState, error) {
	if e.gs == nil {
		return nil, ErrNotInitialized
	}
	return e.gs.Clone(), nil
}

// Restore replaces the game state with a validated copy of gs.
func (e *Engine) Restore(gs *state.GameState) error {
	if gs == nil {
		return errors.New("game state cannot be nil")
	}
	c := gs.Clone()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("failed to restore game state: %w", err)
	}
	e.gs = c
	return nil
}
