package world

import (
	"slices"
	"sort"
	"strings"
)

// ItemKind tags what an item does when used.
type ItemKind string

const (
	Consumable ItemKind = "consumable"
	Equipment  ItemKind = "equipment"
	Quest      ItemKind = "quest"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	switch k {
	case Consumable, Equipment, Quest:
		return true
	}
	return false
}

// Effect describes what using an item does.
type Effect struct {
	Heal int `json:"heal,omitempty" yaml:"heal,omitempty"`
}

// Item is something the player can carry.
type Item struct {
	Key         string   `json:"key" yaml:"key"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        ItemKind `json:"kind" yaml:"kind"`
	Effect      Effect   `json:"effect,omitempty" yaml:"effect,omitempty"`
	Portable    bool     `json:"portable" yaml:"portable"`
}

// Location is a node in the world graph.
type Location struct {
	Key         string            `json:"key" yaml:"key"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Exits       map[string]string `json:"exits,omitempty" yaml:"exits,omitempty"`     // Direction → Location key
	Items       []string          `json:"items,omitempty" yaml:"items,omitempty"`     // Item keys present
	Enemies     []string          `json:"enemies,omitempty" yaml:"enemies,omitempty"` // Live enemy keys present
}

// ExitDirections returns the exit names in sorted order.
func (l *Location) ExitDirections() []string {
	dirs := make([]string, 0, len(l.Exits))
	for d := range l.Exits {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// HasItem reports whether key is in the location's item set.
func (l *Location) HasItem(key string) bool {
	return slices.Contains(l.Items, key)
}

// AddItem puts key in the item set if it is not already there.
func (l *Location) AddItem(key string) {
	if !l.HasItem(key) {
		l.Items = append(l.Items, key)
	}
}

// RemoveItem takes key out of the item set. It reports whether key was present.
func (l *Location) RemoveItem(key string) bool {
	i := slices.Index(l.Items, key)
	if i < 0 {
		return false
	}
	l.Items = slices.Delete(l.Items, i, i+1)
	return true
}

// RemoveEnemy takes key out of the enemy set.
func (l *Location) RemoveEnemy(key string) bool {
	i := slices.Index(l.Enemies, key)
	if i < 0 {
		return false
	}
	l.Enemies = slices.Delete(l.Enemies, i, i+1)
	return true
}

// World is the graph of locations plus every item and enemy in it.
type World struct {
	Start     string               `json:"start"`
	Locations map[string]*Location `json:"locations"`
	Items     map[string]*Item     `json:"items"`
	Enemies   map[string]*Enemy    `json:"enemies"`
}

// Location returns the location for key.
func (w *World) Location(key string) (*Location, bool) {
	loc, ok := w.Locations[key]
	return loc, ok
}

// Item returns the item for key.
func (w *World) Item(key string) (*Item, bool) {
	it, ok := w.Items[key]
	return it, ok
}

// Enemy returns the enemy for key.
func (w *World) Enemy(key string) (*Enemy, bool) {
	e, ok := w.Enemies[key]
	return e, ok
}

// matches compares a player-typed target against a display name or key.
// Targets arrive lower-cased from the parser.
func matches(target, name, key string) bool {
	target = strings.TrimSpace(target)
	return strings.EqualFold(target, name) || strings.EqualFold(target, key)
}

// FindItem looks for an item with the given display name (or key) among keys.
func (w *World) FindItem(keys []string, target string) (*Item, bool) {
	for _, k := range keys {
		it, ok := w.Items[k]
		if ok && matches(target, it.Name, it.Key) {
			return it, true
		}
	}
	return nil, false
}

// FindEnemy looks for a live enemy with the given name (or key) in a location.
func (w *World) FindEnemy(locationKey, target string) (*Enemy, bool) {
	loc, ok := w.Locations[locationKey]
	if !ok {
		return nil, false
	}
	for _, k := range loc.Enemies {
		e, ok := w.Enemies[k]
		if ok && !e.IsDefeated() && matches(target, e.Name, e.Key) {
			return e, true
		}
	}
	return nil, false
}

// ItemNames maps item keys to display names, skipping unknown keys.
func (w *World) ItemNames(keys []string) []string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if it, ok := w.Items[k]; ok {
			names = append(names, it.Name)
		}
	}
	return names
}

// LiveEnemyNames returns the names of undefeated enemies at a location.
func (w *World) LiveEnemyNames(locationKey string) []string {
	loc, ok := w.Locations[locationKey]
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(loc.Enemies))
	for _, k := range loc.Enemies {
		if e, ok := w.Enemies[k]; ok && !e.IsDefeated() {
			names = append(names, e.Name)
		}
	}
	return names
}

// ItemContainer returns the key of the location holding item key, or "" when
// no location holds it.
func (w *World) ItemContainer(key string) string {
	for lk, loc := range w.Locations {
		if loc.HasItem(key) {
			return lk
		}
	}
	return ""
}

// Reachable returns the set of location keys reachable from start by
// following exits.
func (w *World) Reachable(start string) map[string]bool {
	seen := make(map[string]bool)
	if _, ok := w.Locations[start]; !ok {
		return seen
	}
	queue := []string{start}
	seen[start] = true
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		loc := w.Locations[key]
		for _, dir := range loc.ExitDirections() {
			next := loc.Exits[dir]
			if _, ok := w.Locations[next]; ok && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// Clone returns a deep copy of the world.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}
	c := &World{
		Start:     w.Start,
		Locations: make(map[string]*Location, len(w.Locations)),
		Items:     make(map[string]*Item, len(w.Items)),
		Enemies:   make(map[string]*Enemy, len(w.Enemies)),
	}
	for k, loc := range w.Locations {
		cp := *loc
		cp.Exits = make(map[string]string, len(loc.Exits))
		for d, t := range loc.Exits {
			cp.Exits[d] = t
		}
		cp.Items = slices.Clone(loc.Items)
		cp.Enemies = slices.Clone(loc.Enemies)
		c.Locations[k] = &cp
	}
	for k, it := range w.Items {
		cp := *it
		c.Items[k] = &cp
	}
	for k, e := range w.Enemies {
		cp := *e
		c.Enemies[k] = &cp
	}
	return c
}
