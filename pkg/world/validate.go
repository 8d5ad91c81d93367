package world

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownStart      = errors.New("start location does not exist")
	ErrDanglingExit      = errors.New("exit leads to unknown location")
	ErrUnreachable       = errors.New("location unreachable from start")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknownReference  = errors.New("unknown reference")
	ErrInvalidAttributes = errors.New("invalid attributes")
)

// Validate checks the structural invariants of the world graph: the start
// location exists, every exit resolves, every location is reachable from
// start, and every item and enemy reference resolves. All problems found are
// returned together.
func (w *World) Validate() error {
	var problems []error

	if _, ok := w.Locations[w.Start]; !ok {
		problems = append(problems, fmt.Errorf("%q: %w", w.Start, ErrUnknownStart))
	}

	for _, key := range sortedKeys(w.Locations) {
		loc := w.Locations[key]
		if loc.Key != key {
			problems = append(problems, fmt.Errorf("location %q has key %q: %w", key, loc.Key, ErrUnknownReference))
		}
		for _, dir := range loc.ExitDirections() {
			if _, ok := w.Locations[loc.Exits[dir]]; !ok {
				problems = append(problems, fmt.Errorf("%s exit %q -> %q: %w", key, dir, loc.Exits[dir], ErrDanglingExit))
			}
		}
		for _, ik := range loc.Items {
			if _, ok := w.Items[ik]; !ok {
				problems = append(problems, fmt.Errorf("%s item %q: %w", key, ik, ErrUnknownReference))
			}
		}
		for _, ek := range loc.Enemies {
			e, ok := w.Enemies[ek]
			if !ok {
				problems = append(problems, fmt.Errorf("%s enemy %q: %w", key, ek, ErrUnknownReference))
				continue
			}
			if e.Location != key {
				problems = append(problems, fmt.Errorf("enemy %q listed in %s but located in %q: %w", ek, key, e.Location, ErrUnknownReference))
			}
		}
	}

	if _, ok := w.Locations[w.Start]; ok {
		reachable := w.Reachable(w.Start)
		for _, key := range sortedKeys(w.Locations) {
			if !reachable[key] {
				problems = append(problems, fmt.Errorf("%q: %w", key, ErrUnreachable))
			}
		}
	}

	for _, key := range sortedKeys(w.Items) {
		it := w.Items[key]
		if it.Name == "" || !it.Kind.Valid() || it.Effect.Heal < 0 {
			problems = append(problems, fmt.Errorf("item %q: %w", key, ErrInvalidAttributes))
		}
	}
	for _, key := range sortedKeys(w.Enemies) {
		e := w.Enemies[key]
		if e.Name == "" || e.Health < 0 || e.Attack < 0 || e.MaxHealth < e.Health {
			problems = append(problems, fmt.Errorf("enemy %q: %w", key, ErrInvalidAttributes))
		}
		if e.IsDefeated() {
			continue
		}
		if _, ok := w.Locations[e.Location]; !ok {
			problems = append(problems, fmt.Errorf("enemy %q in %q: %w", key, e.Location, ErrUnknownReference))
		}
	}

	return joinErrors(problems)
}

func joinErrors(problems []error) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.Join(problems...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
