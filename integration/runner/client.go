package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

type createGameResponse struct {
	ID     uuid.UUID     `json:"id"`
	Result engine.Result `json:"result"`
}

// CreateGame starts a game and returns its id with the opening result.
func CreateGame(ctx context.Context, client *http.Client, baseURL string) (uuid.UUID, engine.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/games", nil)
	if err != nil {
		return uuid.Nil, engine.Result{}, fmt.Errorf("failed to create game request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return uuid.Nil, engine.Result{}, fmt.Errorf("failed to create game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return uuid.Nil, engine.Result{}, fmt.Errorf("create game returned %d: %s", resp.StatusCode, string(body))
	}

	var created createGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return uuid.Nil, engine.Result{}, fmt.Errorf("failed to decode created game: %w", err)
	}
	return created.ID, created.Result, nil
}

// SendCommand runs one command against a game.
func SendCommand(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID, input string) (engine.Result, error) {
	body, err := json.Marshal(map[string]string{"command": input})
	if err != nil {
		return engine.Result{}, fmt.Errorf("failed to marshal command: %w", err)
	}

	url := fmt.Sprintf("%s/v1/games/%s/command", baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return engine.Result{}, fmt.Errorf("failed to create command request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return engine.Result{}, fmt.Errorf("failed to send command: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return engine.Result{}, fmt.Errorf("command endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var res engine.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return engine.Result{}, fmt.Errorf("failed to decode result: %w", err)
	}
	return res, nil
}

// GetGameState retrieves the current game state
func GetGameState(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) (*state.GameState, error) {
	url := fmt.Sprintf("%s/v1/games/%s", baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create game state request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("game state endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var gs state.GameState
	if err := json.NewDecoder(resp.Body).Decode(&gs); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	return &gs, nil
}

// DeleteGame ends a game. A missing game is not an error.
func DeleteGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) error {
	url := fmt.Sprintf("%s/v1/games/%s", baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
