package state

import "slices"

// Player is the single player character of a session.
type Player struct {
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	Attack    int      `json:"attack"`
	Location  string   `json:"location"`
	Inventory []string `json:"inventory"` // Item keys, in pickup order
	Visited   []string `json:"visited"`   // Location keys, in first-visit order
}

// TakeDamage reduces health by n, not below 0, and returns the damage taken.
func (p *Player) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	if n > p.Health {
		n = p.Health
	}
	p.Health -= n
	return n
}

// Heal increases health by n, not above MaxHealth, and returns the amount
// actually restored.
func (p *Player) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	if p.Health+n > p.MaxHealth {
		n = p.MaxHealth - p.Health
	}
	p.Health += n
	return n
}

// IsDead returns true when health has reached 0.
func (p *Player) IsDead() bool {
	return p.Health <= 0
}

// Carries reports whether the item key is in the inventory.
func (p *Player) Carries(itemKey string) bool {
	return slices.Contains(p.Inventory, itemKey)
}

// HasVisited reports whether the player has been to a location.
func (p *Player) HasVisited(locationKey string) bool {
	return slices.Contains(p.Visited, locationKey)
}

func (p *Player) removeItem(itemKey string) bool {
	i := slices.Index(p.Inventory, itemKey)
	if i < 0 {
		return false
	}
	p.Inventory = slices.Delete(p.Inventory, i, i+1)
	return true
}
