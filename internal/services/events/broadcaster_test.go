package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	gameevents "github.com/jwebster45206/adventure-engine/pkg/events"
	"github.com/redis/go-redis/v9"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(client, logger), client
}

func TestBroadcaster_RelaysBusEvents(t *testing.T) {
	b, client := setupBroadcaster(t)
	gameID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubsub := client.Subscribe(ctx, Channel(gameID))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	bus := gameevents.NewBus()
	subs := b.Attach(gameID, bus)
	if len(subs) != len(gameevents.AllTypes) {
		t.Fatalf("expected %d subscriptions, got %d", len(gameevents.AllTypes), len(subs))
	}

	bus.Publish(gameevents.PlayerMoved, map[string]any{"from": "start", "to": "forest"})

	msg, err := pubsub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("Failed to receive message: %v", err)
	}
	if msg.Channel != "game-events:"+gameID.String() {
		t.Errorf("unexpected channel %s", msg.Channel)
	}

	var got Event
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if got.Type != gameevents.PlayerMoved {
		t.Errorf("expected type %s, got %s", gameevents.PlayerMoved, got.Type)
	}
	if got.GameID != gameID.String() {
		t.Errorf("expected game id %s, got %s", gameID, got.GameID)
	}
	if got.Data["to"] != "forest" {
		t.Errorf("expected to=forest, got %v", got.Data["to"])
	}

	b.Detach(bus, subs)
	for _, typ := range gameevents.AllTypes {
		if n := bus.SubscriberCount(typ); n != 0 {
			t.Errorf("expected no subscribers for %s after detach, got %d", typ, n)
		}
	}
}

func TestBroadcaster_PublishError(t *testing.T) {
	b, client := setupBroadcaster(t)
	_ = client.Close()

	err := b.Publish(context.Background(), uuid.New(), gameevents.Event{Type: gameevents.GameOver})
	if err == nil {
		t.Error("expected error publishing on a closed client")
	}
}
