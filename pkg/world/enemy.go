package world

// Enemy is a hostile creature placed in one location.
type Enemy struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Location    string `json:"location" yaml:"location"`

	Health    int `json:"health" yaml:"health"`
	MaxHealth int `json:"max_health" yaml:"max_health"`
	Attack    int `json:"attack" yaml:"attack"`

	Defeated bool `json:"defeated,omitempty" yaml:"-"`
}

// TakeDamage reduces the enemy's health by n and returns the damage actually
// dealt. Health cannot go below 0.
func (e *Enemy) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	if n > e.Health {
		n = e.Health
	}
	e.Health -= n
	return n
}

// IsDefeated returns true once the enemy is marked defeated or out of health.
func (e *Enemy) IsDefeated() bool {
	return e.Defeated || e.Health <= 0
}
