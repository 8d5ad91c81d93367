package world

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallDefinition() *Definition {
	return &Definition{
		Name:   "test",
		Start:  "start",
		Player: PlayerSpec{Health: 20, MaxHealth: 20, Attack: 5},
		Locations: []LocationSpec{
			{Key: "start", Name: "Start", Exits: map[string]string{"north": "forest"}},
			{Key: "forest", Name: "Forest", Exits: map[string]string{"south": "start"}, Items: []string{"potion"}, Enemies: []string{"goblin"}},
		},
		Items: []Item{
			{Key: "potion", Name: "potion", Kind: Consumable, Effect: Effect{Heal: 10}, Portable: true},
		},
		Enemies: []Enemy{
			{Key: "goblin", Name: "goblin", Health: 5, Attack: 2},
		},
	}
}

func TestDefault_BuildsValidWorld(t *testing.T) {
	def := Default()
	w, err := def.Build()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(w.Locations), 4, "default world needs at least four locations")
	assert.Equal(t, "start", w.Start)

	for key, loc := range w.Locations {
		for dir, target := range loc.Exits {
			_, ok := w.Locations[target]
			assert.True(t, ok, "%s exit %s leads to unknown %q", key, dir, target)
		}
	}

	reachable := w.Reachable(w.Start)
	assert.Len(t, reachable, len(w.Locations), "every location should be reachable from start")

	start := w.Locations[w.Start]
	assert.Empty(t, start.Items, "start location should not hold items")
	assert.Empty(t, start.Enemies, "start location should not hold enemies")

	var items, enemies int
	for key, loc := range w.Locations {
		if key == w.Start {
			continue
		}
		items += len(loc.Items)
		enemies += len(loc.Enemies)
	}
	assert.Positive(t, items)
	assert.Positive(t, enemies)
}

func TestDefault_ReturnsFreshWorlds(t *testing.T) {
	def := Default()
	a, err := def.Build()
	require.NoError(t, err)
	b, err := def.Build()
	require.NoError(t, err)

	a.Locations["forest"].RemoveItem("potion")
	a.Enemies["goblin"].TakeDamage(100)

	assert.True(t, b.Locations["forest"].HasItem("potion"))
	assert.False(t, b.Enemies["goblin"].IsDefeated())
}

func TestBuild_EnemyDefaults(t *testing.T) {
	w, err := smallDefinition().Build()
	require.NoError(t, err)

	goblin := w.Enemies["goblin"]
	assert.Equal(t, "forest", goblin.Location)
	assert.Equal(t, 5, goblin.MaxHealth)
	assert.Equal(t, 5, goblin.Health)
}

func TestBuild_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Definition)
		want   error
	}{
		{
			name: "dangling exit",
			mutate: func(d *Definition) {
				d.Locations[0].Exits["east"] = "nowhere"
			},
			want: ErrDanglingExit,
		},
		{
			name: "unreachable location",
			mutate: func(d *Definition) {
				d.Locations = append(d.Locations, LocationSpec{Key: "island", Name: "Island"})
			},
			want: ErrUnreachable,
		},
		{
			name: "unknown start",
			mutate: func(d *Definition) {
				d.Start = "missing"
			},
			want: ErrUnknownStart,
		},
		{
			name: "duplicate location",
			mutate: func(d *Definition) {
				d.Locations = append(d.Locations, LocationSpec{Key: "start", Name: "Again"})
			},
			want: ErrDuplicateKey,
		},
		{
			name: "unknown item reference",
			mutate: func(d *Definition) {
				d.Locations[1].Items = append(d.Locations[1].Items, "ghost")
			},
			want: ErrUnknownReference,
		},
		{
			name: "enemy never placed",
			mutate: func(d *Definition) {
				d.Enemies = append(d.Enemies, Enemy{Key: "rat", Name: "rat", Health: 1})
			},
			want: ErrUnknownReference,
		},
		{
			name: "bad item kind",
			mutate: func(d *Definition) {
				d.Items[0].Kind = "weapon"
			},
			want: ErrInvalidAttributes,
		},
		{
			name: "negative enemy attack",
			mutate: func(d *Definition) {
				d.Enemies[0].Attack = -1
			},
			want: ErrInvalidAttributes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := smallDefinition()
			tt.mutate(def)
			_, err := def.Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nstart: a\nbogus: true\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.yaml")
	content := `name: tiny
start: a
player: {health: 10, max_health: 10, attack: 1}
locations:
  - key: a
    name: A
    exits: {east: b}
  - key: b
    name: B
    exits: {west: a}
    items: [coin]
items:
  - key: coin
    name: gold coin
    kind: quest
    portable: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	def, err := Load(path)
	require.NoError(t, err)
	w, err := def.Build()
	require.NoError(t, err)

	assert.Equal(t, "b", w.ItemContainer("coin"))
	it, ok := w.FindItem(w.Locations["b"].Items, "gold coin")
	require.True(t, ok)
	assert.Equal(t, "coin", it.Key)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLocation_ItemSet(t *testing.T) {
	loc := &Location{Key: "x"}
	loc.AddItem("a")
	loc.AddItem("b")
	loc.AddItem("a")
	assert.Equal(t, []string{"a", "b"}, loc.Items)

	assert.True(t, loc.RemoveItem("a"))
	assert.False(t, loc.RemoveItem("a"))
	assert.Equal(t, []string{"b"}, loc.Items)
}

func TestWorld_FindEnemy(t *testing.T) {
	w, err := smallDefinition().Build()
	require.NoError(t, err)

	e, ok := w.FindEnemy("forest", "GOBLIN")
	require.True(t, ok)
	assert.Equal(t, "goblin", e.Key)

	_, ok = w.FindEnemy("start", "goblin")
	assert.False(t, ok)

	e.Defeated = true
	_, ok = w.FindEnemy("forest", "goblin")
	assert.False(t, ok, "defeated enemies are not found")
	assert.Empty(t, w.LiveEnemyNames("forest"))
}

func TestWorld_Clone(t *testing.T) {
	w, err := smallDefinition().Build()
	require.NoError(t, err)

	c := w.Clone()
	c.Locations["start"].Exits["north"] = "changed"
	c.Locations["forest"].RemoveItem("potion")
	c.Enemies["goblin"].Health = 1

	assert.Equal(t, "forest", w.Locations["start"].Exits["north"])
	assert.True(t, w.Locations["forest"].HasItem("potion"))
	assert.Equal(t, 5, w.Enemies["goblin"].Health)
}
