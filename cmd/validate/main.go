package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/command"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.yaml> [more.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &WorldValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type WorldValidator struct {
	errors   []string
	warnings []string
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("world file must have .yaml extension: %s", baseName)
	}
	if !isValidID(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("world filename '%s' must be lowercase snake_case (e.g., dark_forest.yaml)", baseName)
	}

	def, err := world.Load(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.warnings = nil
	v.validateDefinition(def)

	if _, err := def.Build(); err != nil {
		v.addJoined(err)
	}

	for _, w := range v.warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateDefinition checks naming conventions that Build does not enforce.
func (v *WorldValidator) validateDefinition(def *world.Definition) {
	if def.Name == "" {
		v.addError("world has no name")
	}
	v.validateIDFormat("start", def.Start)

	for _, loc := range def.Locations {
		v.validateIDFormat("location key", loc.Key)
		if loc.Name == "" {
			v.addError(fmt.Sprintf("location '%s' has no name", loc.Key))
		}
		for dir := range loc.Exits {
			v.validateIDFormat(fmt.Sprintf("exit in location %s", loc.Key), dir)
			if !slices.Contains(command.Directions, dir) {
				v.warnings = append(v.warnings, fmt.Sprintf("exit '%s' in location %s is not one of %s",
					dir, loc.Key, strings.Join(command.Directions, ", ")))
			}
		}
	}
	for _, it := range def.Items {
		v.validateIDFormat("item key", it.Key)
	}
	for _, e := range def.Enemies {
		v.validateIDFormat("enemy key", e.Key)
	}
}

func (v *WorldValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		v.addError(fmt.Sprintf("%s is empty", fieldName))
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

// addJoined flattens an errors.Join result into one line per problem.
func (v *WorldValidator) addJoined(err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			v.addJoined(e)
		}
		return
	}
	v.addError(err.Error())
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
