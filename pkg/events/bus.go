package events

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// EventType identifies a kind of completed state change.
type EventType string

const (
	PlayerMoved   EventType = "player_moved"
	ItemPickedUp  EventType = "item_picked_up"
	ItemDropped   EventType = "item_dropped"
	ItemUsed      EventType = "item_used"
	PlayerHealed  EventType = "player_healed"
	CombatStarted EventType = "combat_started"
	EnemyDamaged  EventType = "enemy_damaged"
	PlayerDamaged EventType = "player_damaged"
	EnemyDefeated EventType = "enemy_defeated"
	CombatEnded   EventType = "combat_ended"
	GameStarted   EventType = "game_started"
	GameOver      EventType = "game_over"
)

// AllTypes lists every event type in a stable order.
var AllTypes = []EventType{
	GameStarted,
	PlayerMoved,
	ItemPickedUp,
	ItemDropped,
	ItemUsed,
	PlayerHealed,
	CombatStarted,
	EnemyDamaged,
	PlayerDamaged,
	EnemyDefeated,
	CombatEnded,
	GameOver,
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// Event is a notification of a state change that has already been applied.
type Event struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Handler receives published events. A returned error is reported but does
// not stop delivery to other handlers.
type Handler func(Event) error

// ErrorReporter is called once per failed handler invocation.
type ErrorReporter func(Event, error)

// Subscription identifies one registered handler.
type Subscription struct {
	Type EventType
	id   uint64
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous, in-process publish/subscribe dispatcher.
// Handlers for a type run in the order they subscribed.
type Bus struct {
	mu          sync.Mutex
	subscribers map[EventType][]subscriber
	nextID      uint64
	now         func() time.Time
	report      ErrorReporter
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		b.now = now
	}
}

// WithErrorReporter sets where handler failures are sent.
func WithErrorReporter(r ErrorReporter) Option {
	return func(b *Bus) {
		b.report = r
	}
}

// WithLogger reports handler failures to logger at error level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.report = logReporter(logger)
	}
}

// NewBus creates an event bus. Handler failures are logged with the default
// slog logger unless an ErrorReporter is configured.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[EventType][]subscriber),
		now:         time.Now,
		report:      logReporter(slog.Default()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func logReporter(logger *slog.Logger) ErrorReporter {
	return func(e Event, err error) {
		logger.Error("Event handler failed", "event_type", e.Type, "error", err)
	}
}

// Subscribe registers h for every future Publish of t.
func (b *Bus) Subscribe(t EventType, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[t] = append(b.subscribers[t], subscriber{id: b.nextID, handler: h})
	return Subscription{Type: t, id: b.nextID}
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) []Subscription {
	subs := make([]Subscription, 0, len(AllTypes))
	for _, t := range AllTypes {
		subs = append(subs, b.Subscribe(t, h))
	}
	return subs
}

// Unsubscribe removes a handler. It returns false, and does nothing, when the
// subscription was never registered or is already gone.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.Type]
	i := slices.IndexFunc(subs, func(s subscriber) bool { return s.id == sub.id })
	if i < 0 {
		return false
	}
	// Build a new slice so snapshots held by an in-flight Publish stay intact.
	b.subscribers[sub.Type] = append(append([]subscriber(nil), subs[:i]...), subs[i+1:]...)
	return true
}

// Publish delivers a new event to the current subscribers of t and returns it.
// The subscriber list is captured before delivery starts.
func (b *Bus) Publish(t EventType, data map[string]any) Event {
	b.mu.Lock()
	snapshot := b.subscribers[t]
	now := b.now
	b.mu.Unlock()

	e := Event{
		Type:      t,
		Data:      maps.Clone(data),
		Timestamp: now(),
	}
	for _, s := range snapshot {
		b.deliver(s.handler, e)
	}
	return e
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.report(e, fmt.Errorf("handler panic: %v", r))
		}
	}()
	// Each handler gets its own copy of the payload.
	if err := h(Event{Type: e.Type, Data: maps.Clone(e.Data), Timestamp: e.Timestamp}); err != nil {
		b.report(e, err)
	}
}

// SubscriberCount returns the number of handlers registered for t.
func (b *Bus) SubscriberCount(t EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[t])
}

// Clear removes every handler for t.
func (b *Bus) Clear(t EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, t)
}

// ClearAll removes every handler.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[EventType][]subscriber)
}
