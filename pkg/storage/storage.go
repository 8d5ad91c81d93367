package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// Storage persists game states between requests. Implementations store the
// state as JSON and treat it as opaque.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations. LoadGameState returns nil, nil when the id is unknown.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
	ListGameStates(ctx context.Context) ([]uuid.UUID, error)
}
