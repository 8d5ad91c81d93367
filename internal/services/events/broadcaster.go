package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gameevents "github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/redis/go-redis/v9"
)

// Event is the envelope written to a game's Redis channel.
type Event struct {
	Type      gameevents.EventType `json:"type"`
	GameID    string               `json:"game_id"`
	Data      map[string]any       `json:"data,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Channel returns the pub/sub channel for a game.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Broadcaster publishes engine events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
	timeout     time.Duration
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
		timeout:     2 * time.Second,
	}
}

// Attach subscribes the broadcaster to every event type on bus and relays
// each event to the game's channel. The returned subscriptions detach it.
func (b *Broadcaster) Attach(gameID uuid.UUID, bus *gameevents.Bus) []gameevents.Subscription {
	return bus.SubscribeAll(func(e gameevents.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		return b.Publish(ctx, gameID, e)
	})
}

// Detach removes subscriptions made by Attach.
func (b *Broadcaster) Detach(bus *gameevents.Bus, subs []gameevents.Subscription) {
	for _, s := range subs {
		bus.Unsubscribe(s)
	}
}

// Publish writes one engine event to the game-specific channel.
func (b *Broadcaster) Publish(ctx context.Context, gameID uuid.UUID, e gameevents.Event) error {
	channel := Channel(gameID)
	event := Event{
		Type:      e.Type,
		GameID:    gameID.String(),
		Data:      e.Data,
		Timestamp: e.Timestamp,
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", e.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", e.Type,
	)
	return nil
}
