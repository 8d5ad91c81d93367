package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
)

func newGamesHandler(t *testing.T) (*GamesHandler, *storage.MockStorage) {
	t.Helper()
	store := storage.NewMockStorage()
	manager := session.NewManager(store, testLogger())
	return NewGamesHandler(manager, testLogger()), store
}

func createGame(t *testing.T, handler http.Handler) uuid.UUID {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/games", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	var response CreateGameResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.ID == uuid.Nil {
		t.Fatal("Expected non-nil game ID")
	}
	if !response.Result.Success {
		t.Errorf("Expected opening look to succeed, got %q", response.Result.Message)
	}
	if response.Result.Data["location"] != "start" {
		t.Errorf("Expected opening location start, got %v", response.Result.Data["location"])
	}
	return response.ID
}

func sendCommand(t *testing.T, handler http.Handler, id uuid.UUID, body string) (*httptest.ResponseRecorder, engine.Result) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/games/"+id.String()+"/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var res engine.Result
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
			t.Fatalf("Failed to decode result: %v", err)
		}
	}
	return rr, res
}

func TestGamesHandler_CreateAndCommand(t *testing.T) {
	handler, store := newGamesHandler(t)
	id := createGame(t, handler)

	rr, res := sendCommand(t, handler, id, `{"command":"move north"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !res.Success {
		t.Errorf("Expected success, got %q", res.Message)
	}

	saved, err := store.LoadGameState(context.Background(), id)
	if err != nil || saved == nil {
		t.Fatalf("Expected saved game, got %v, %v", saved, err)
	}
	if saved.Player.Location != "forest" {
		t.Errorf("Expected saved location forest, got %s", saved.Player.Location)
	}
}

func TestGamesHandler_FailedCommandIsOK(t *testing.T) {
	handler, _ := newGamesHandler(t)
	id := createGame(t, handler)

	rr, res := sendCommand(t, handler, id, `{"command":"bogus"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if res.Success {
		t.Error("Expected failure result")
	}
	if res.Message != "unknown command" {
		t.Errorf("Expected message 'unknown command', got %q", res.Message)
	}
}

func TestGamesHandler_Read(t *testing.T) {
	handler, _ := newGamesHandler(t)
	id := createGame(t, handler)

	read := func() state.GameState {
		req := httptest.NewRequest(http.MethodGet, "/v1/games/"+id.String(), nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		var gs state.GameState
		if err := json.NewDecoder(rr.Body).Decode(&gs); err != nil {
			t.Fatalf("Failed to decode game state: %v", err)
		}
		return gs
	}

	gs := read()
	if gs.ID != id {
		t.Errorf("Expected game ID %s, got %s", id, gs.ID)
	}
	if gs.Player.Health != 100 {
		t.Errorf("Expected health 100, got %d", gs.Player.Health)
	}
	if gs.Status != state.StatusPlaying {
		t.Errorf("Expected status playing, got %s", gs.Status)
	}
	if gs.Turn != 1 {
		t.Errorf("Expected turn 1 after the opening look, got %d", gs.Turn)
	}

	// Reading is not a turn.
	if again := read(); again.Turn != gs.Turn {
		t.Errorf("Expected turn to stay %d, got %d", gs.Turn, again.Turn)
	}
}

func TestGamesHandler_List(t *testing.T) {
	handler, _ := newGamesHandler(t)

	list := func() []uuid.UUID {
		req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		var response ListGamesResponse
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Games == nil {
			t.Fatal("Expected an empty list, got null")
		}
		return response.Games
	}

	if got := list(); len(got) != 0 {
		t.Errorf("Expected no games, got %v", got)
	}

	id := createGame(t, handler)
	got := list()
	if len(got) != 1 || got[0] != id {
		t.Errorf("Expected [%s], got %v", id, got)
	}
}

func TestGamesHandler_Delete(t *testing.T) {
	handler, _ := newGamesHandler(t)
	id := createGame(t, handler)

	req := httptest.NewRequest(http.MethodDelete, "/v1/games/"+id.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/games/"+id.String(), nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", rr.Code)
	}

	rr, _ = sendCommand(t, handler, id, `{"command":"look"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", rr.Code)
	}
}

func TestGamesHandler_Errors(t *testing.T) {
	handler, _ := newGamesHandler(t)
	id := createGame(t, handler)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"put not allowed", http.MethodPut, "/v1/games", "", http.StatusMethodNotAllowed},
		{"invalid id", http.MethodGet, "/v1/games/not-a-uuid", "", http.StatusBadRequest},
		{"unknown game", http.MethodGet, "/v1/games/" + uuid.NewString(), "", http.StatusNotFound},
		{"unknown subresource", http.MethodGet, "/v1/games/" + id.String() + "/other", "", http.StatusNotFound},
		{"patch not allowed", http.MethodPatch, "/v1/games/" + id.String(), "", http.StatusMethodNotAllowed},
		{"command needs post", http.MethodGet, "/v1/games/" + id.String() + "/command", "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "/v1/games/" + id.String() + "/command", "{", http.StatusBadRequest},
		{"blank command", http.MethodPost, "/v1/games/" + id.String() + "/command", `{"command":"  "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Response body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			var response ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if response.Error == "" {
				t.Error("Expected error message")
			}
		})
	}
}
