package world

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed worlds/default.yaml
var defaultWorldYAML []byte

// PlayerSpec holds the player's starting stats.
type PlayerSpec struct {
	Health    int `yaml:"health"`
	MaxHealth int `yaml:"max_health"`
	Attack    int `yaml:"attack"`
}

// LocationSpec is a location as written in a world file. Items and enemies
// are listed by key.
type LocationSpec struct {
	Key         string            `yaml:"key"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Exits       map[string]string `yaml:"exits"`
	Items       []string          `yaml:"items"`
	Enemies     []string          `yaml:"enemies"`
}

// Definition is the static description of a world, loaded from YAML.
// It is never mutated; Build produces a fresh World every time.
type Definition struct {
	Name      string         `yaml:"name"`
	Start     string         `yaml:"start"`
	Player    PlayerSpec     `yaml:"player"`
	Locations []LocationSpec `yaml:"locations"`
	Items     []Item         `yaml:"items"`
	Enemies   []Enemy        `yaml:"enemies"`
}

// Default returns the built-in world definition.
func Default() *Definition {
	def, err := Parse(defaultWorldYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded world is invalid: %v", err))
	}
	return def
}

// Parse decodes a YAML world definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse world definition: %w", err)
	}
	return &def, nil
}

// Load reads and parses a YAML world definition from disk.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Build creates a new World from the definition and validates it. Enemies are
// placed in the locations that list them; enemy health starts at max health
// when unset.
func (d *Definition) Build() (*World, error) {
	w := &World{
		Start:     d.Start,
		Locations: make(map[string]*Location, len(d.Locations)),
		Items:     make(map[string]*Item, len(d.Items)),
		Enemies:   make(map[string]*Enemy, len(d.Enemies)),
	}

	var problems []error
	for _, it := range d.Items {
		if _, dup := w.Items[it.Key]; dup {
			problems = append(problems, fmt.Errorf("item %q: %w", it.Key, ErrDuplicateKey))
			continue
		}
		item := it
		w.Items[it.Key] = &item
	}
	for _, e := range d.Enemies {
		if _, dup := w.Enemies[e.Key]; dup {
			problems = append(problems, fmt.Errorf("enemy %q: %w", e.Key, ErrDuplicateKey))
			continue
		}
		enemy := e
		if enemy.MaxHealth == 0 {
			enemy.MaxHealth = enemy.Health
		}
		if enemy.Health == 0 {
			enemy.Health = enemy.MaxHealth
		}
		enemy.Location = ""
		w.Enemies[e.Key] = &enemy
	}
	for _, ls := range d.Locations {
		if _, dup := w.Locations[ls.Key]; dup {
			problems = append(problems, fmt.Errorf("location %q: %w", ls.Key, ErrDuplicateKey))
			continue
		}
		loc := &Location{
			Key:         ls.Key,
			Name:        ls.Name,
			Description: ls.Description,
			Exits:       make(map[string]string, len(ls.Exits)),
			Items:       append([]string(nil), ls.Items...),
			Enemies:     append([]string(nil), ls.Enemies...),
		}
		for dir, target := range ls.Exits {
			loc.Exits[dir] = target
		}
		w.Locations[ls.Key] = loc

		for _, ek := range ls.Enemies {
			if e, ok := w.Enemies[ek]; ok {
				if e.Location != "" {
					problems = append(problems, fmt.Errorf("enemy %q placed in %q and %q: %w", ek, e.Location, ls.Key, ErrDuplicateKey))
					continue
				}
				e.Location = ls.Key
			}
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid world %q: %w", d.Name, joinErrors(problems))
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world %q: %w", d.Name, err)
	}
	return w, nil
}
