package state

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// Status is the phase of the game.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusCombat   Status = "combat"
	StatusGameOver Status = "game_over"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaying, StatusCombat, StatusGameOver:
		return true
	}
	return false
}

var (
	ErrContainment     = errors.New("item containment violated")
	ErrInvalidLocation = errors.New("player location is not in the world")
	ErrInvalidPlayer   = errors.New("invalid player attributes")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidCombat   = errors.New("combat target does not match status")
)

// GameState is the aggregate root of one game session.
type GameState struct {
	ID           uuid.UUID    `json:"id"`                      // Unique ID per session
	Player       Player       `json:"player"`                  // The single player
	World        *world.World `json:"world"`                   // Locations, items and enemies
	Status       Status       `json:"status"`                  // playing, combat or game_over
	CombatTarget string       `json:"combat_target,omitempty"` // Enemy key while in combat
	Turn         int          `json:"turn"`                    // Successful commands so far
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewGameState builds the world from def and places the player at its start.
func NewGameState(def *world.Definition) (*GameState, error) {
	if def == nil {
		return nil, errors.New("world definition cannot be nil")
	}
	w, err := def.Build()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	gs := &GameState{
		ID:        uuid.New(),
		World:     w,
		Status:    StatusPlaying,
		CreatedAt: now,
		UpdatedAt: now,
		Player: Player{
			Health:    def.Player.Health,
			MaxHealth: def.Player.MaxHealth,
			Attack:    def.Player.Attack,
			Location:  w.Start,
			Inventory: []string{},
			Visited:   []string{w.Start},
		},
	}
	if gs.Player.MaxHealth == 0 {
		gs.Player.MaxHealth = gs.Player.Health
	}
	if err := gs.Validate(); err != nil {
		return nil, err
	}
	return gs, nil
}

// CurrentLocation returns the location the player is standing in.
func (gs *GameState) CurrentLocation() *world.Location {
	return gs.World.Locations[gs.Player.Location]
}

// MovePlayer sets the player's location and records the visit.
func (gs *GameState) MovePlayer(to string) {
	gs.Player.Location = to
	if !slices.Contains(gs.Player.Visited, to) {
		gs.Player.Visited = append(gs.Player.Visited, to)
	}
}

// PickUp moves an item from the current location into the inventory.
// Both containers change together or not at all.
func (gs *GameState) PickUp(itemKey string) bool {
	loc := gs.CurrentLocation()
	if loc == nil || !loc.HasItem(itemKey) || gs.Player.Carries(itemKey) {
		return false
	}
	loc.RemoveItem(itemKey)
	gs.Player.Inventory = append(gs.Player.Inventory, itemKey)
	return true
}

// PutDown moves an item from the inventory into the current location.
func (gs *GameState) PutDown(itemKey string) bool {
	loc := gs.CurrentLocation()
	if loc == nil || !gs.Player.Carries(itemKey) || loc.HasItem(itemKey) {
		return false
	}
	gs.Player.removeItem(itemKey)
	loc.AddItem(itemKey)
	return true
}

// Consume removes an item from the inventory and from the world entirely.
func (gs *GameState) Consume(itemKey string) bool {
	if !gs.Player.removeItem(itemKey) {
		return false
	}
	delete(gs.World.Items, itemKey)
	return true
}

// DefeatEnemy marks an enemy defeated and removes it from its location.
func (gs *GameState) DefeatEnemy(e *world.Enemy) {
	e.Health = 0
	e.Defeated = true
	if loc, ok := gs.World.Locations[e.Location]; ok {
		loc.RemoveEnemy(e.Key)
	}
}

// Validate checks every invariant of the aggregate: the world graph, the
// player's location and stats, the status, and that every item is held by
// exactly one container.
func (gs *GameState) Validate() error {
	if gs.World == nil {
		return errors.New("game state has no world")
	}
	var problems []error
	if err := gs.World.Validate(); err != nil {
		problems = append(problems, err)
	}
	if _, ok := gs.World.Locations[gs.Player.Location]; !ok {
		problems = append(problems, fmt.Errorf("%q: %w", gs.Player.Location, ErrInvalidLocation))
	}
	if !gs.Status.Valid() {
		problems = append(problems, fmt.Errorf("%q: %w", gs.Status, ErrInvalidStatus))
	}
	if err := gs.validateCombat(); err != nil {
		problems = append(problems, err)
	}
	p := gs.Player
	if p.MaxHealth <= 0 || p.Health < 0 || p.Health > p.MaxHealth || p.Attack < 0 {
		problems = append(problems, fmt.Errorf("health %d/%d attack %d: %w", p.Health, p.MaxHealth, p.Attack, ErrInvalidPlayer))
	}

	holders := make(map[string][]string)
	for lk, loc := range gs.World.Locations {
		for _, ik := range loc.Items {
			holders[ik] = append(holders[ik], "location "+lk)
		}
	}
	for _, ik := range p.Inventory {
		holders[ik] = append(holders[ik], "inventory")
	}
	for ik := range gs.World.Items {
		if n := len(holders[ik]); n != 1 {
			problems = append(problems, fmt.Errorf("item %q held by %d containers %v: %w", ik, n, holders[ik], ErrContainment))
		}
	}
	for ik := range holders {
		if _, ok := gs.World.Items[ik]; !ok {
			problems = append(problems, fmt.Errorf("unknown item %q held by %v: %w", ik, holders[ik], ErrContainment))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Join(problems...)
}

// validateCombat requires a live target in the player's location during
// combat and no target otherwise.
func (gs *GameState) validateCombat() error {
	if gs.Status != StatusCombat {
		if gs.CombatTarget != "" {
			return fmt.Errorf("status %s with target %q: %w", gs.Status, gs.CombatTarget, ErrInvalidCombat)
		}
		return nil
	}
	e, ok := gs.World.Enemies[gs.CombatTarget]
	switch {
	case !ok:
		return fmt.Errorf("unknown target %q: %w", gs.CombatTarget, ErrInvalidCombat)
	case e.IsDefeated():
		return fmt.Errorf("target %q is already defeated: %w", e.Key, ErrInvalidCombat)
	case e.Location != gs.Player.Location:
		return fmt.Errorf("target %q is in %q, player is in %q: %w", e.Key, e.Location, gs.Player.Location, ErrInvalidCombat)
	}
	return nil
}

// Clone returns a deep copy of the game state.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.World = gs.World.Clone()
	c.Player.Inventory = slices.Clone(gs.Player.Inventory)
	c.Player.Visited = slices.Clone(gs.Player.Visited)
	return &c
}
