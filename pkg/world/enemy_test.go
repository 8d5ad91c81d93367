package world

import "testing"

func TestEnemy_TakeDamage(t *testing.T) {
	t.Run("reduces health by damage amount", func(t *testing.T) {
		e := &Enemy{Health: 20, MaxHealth: 20}
		dealt := e.TakeDamage(5)

		if e.Health != 15 {
			t.Errorf("expected health 15, got %d", e.Health)
		}
		if dealt != 5 {
			t.Errorf("expected 5 damage dealt, got %d", dealt)
		}
	})

	t.Run("clamps health at 0", func(t *testing.T) {
		e := &Enemy{Health: 5, MaxHealth: 20}
		dealt := e.TakeDamage(10)

		if e.Health != 0 {
			t.Errorf("expected health to be clamped at 0, got %d", e.Health)
		}
		if dealt != 5 {
			t.Errorf("expected 5 damage dealt, got %d", dealt)
		}
		if !e.IsDefeated() {
			t.Error("expected enemy to be defeated at 0 health")
		}
	})

	t.Run("ignores non-positive damage", func(t *testing.T) {
		e := &Enemy{Health: 20, MaxHealth: 20}
		e.TakeDamage(0)
		e.TakeDamage(-3)

		if e.Health != 20 {
			t.Errorf("expected health to remain 20, got %d", e.Health)
		}
	})
}

func TestEnemy_IsDefeated(t *testing.T) {
	if (&Enemy{Health: 1}).IsDefeated() {
		t.Error("enemy with health should not be defeated")
	}
	if !(&Enemy{Health: 3, Defeated: true}).IsDefeated() {
		t.Error("flagged enemy should be defeated")
	}
}
