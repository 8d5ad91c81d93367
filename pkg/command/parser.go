package command

import (
	"errors"
	"fmt"
	"strings"
)

// Known command names.
const (
	Move      = "move"
	Look      = "look"
	Take      = "take"
	Drop      = "drop"
	Use       = "use"
	Inventory = "inventory"
	Stats     = "stats"
	Attack    = "attack"
	Help      = "help"
	Reset     = "reset"
)

// HistoryLimit bounds the number of raw inputs a Parser remembers.
const HistoryLimit = 50

// ErrArity is returned by Validate when a known command has the wrong number
// of arguments.
var ErrArity = errors.New("wrong number of arguments")

// Arity describes how many argument tokens a command accepts.
type Arity int

const (
	NoArgs Arity = iota
	ExactlyOne
	OneOrMore
)

// Spec is one entry in the command table.
type Spec struct {
	Name  string `json:"name"`
	Usage string `json:"usage"`
	Arity Arity  `json:"-"`
}

// table is ordered as it should appear in help output.
var table = []Spec{
	{Name: Move, Usage: "move <direction> - go to an adjacent location", Arity: ExactlyOne},
	{Name: Look, Usage: "look - describe where you are", Arity: NoArgs},
	{Name: Take, Usage: "take <item> - pick up an item here", Arity: OneOrMore},
	{Name: Drop, Usage: "drop <item> - put down an item you carry", Arity: OneOrMore},
	{Name: Use, Usage: "use <item> - use an item you carry", Arity: OneOrMore},
	{Name: Inventory, Usage: "inventory (i) - list what you carry", Arity: NoArgs},
	{Name: Stats, Usage: "stats (s) - show your health and attack", Arity: NoArgs},
	{Name: Attack, Usage: "attack <enemy> - fight an enemy here", Arity: OneOrMore},
	{Name: Help, Usage: "help - list commands", Arity: NoArgs},
	{Name: Reset, Usage: "reset - start a new game", Arity: NoArgs},
}

var aliases = map[string]string{
	"i":  Inventory,
	"s":  Stats,
	"l":  Look,
	"go": Move,
}

// Directions lists the exit names worlds are expected to use.
var Directions = []string{"north", "south", "east", "west", "up", "down"}

// ParsedCommand is the structured form of one line of player input.
type ParsedCommand struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Raw     string   `json:"raw"`
}

// Target joins the arguments with single spaces, for multi-word item and
// enemy names.
func (c ParsedCommand) Target() string {
	return strings.Join(c.Args, " ")
}

// Parser turns raw player text into ParsedCommands.
type Parser struct {
	history []string
}

// NewParser creates a parser with an empty history.
func NewParser() *Parser {
	return &Parser{}
}

// Parse trims, lower-cases and splits input. The first token is the command,
// the rest are arguments. Unknown commands are passed through unchanged.
func (p *Parser) Parse(input string) ParsedCommand {
	p.remember(input)
	return Parse(input)
}

// Parse is the stateless form of Parser.Parse.
func Parse(input string) ParsedCommand {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return ParsedCommand{Command: "", Args: []string{}, Raw: input}
	}

	cmd := fields[0]
	if alias, ok := aliases[cmd]; ok {
		cmd = alias
	}
	return ParsedCommand{
		Command: cmd,
		Args:    fields[1:],
		Raw:     input,
	}
}

func (p *Parser) remember(input string) {
	p.history = append(p.history, input)
	if len(p.history) > HistoryLimit {
		p.history = p.history[len(p.history)-HistoryLimit:]
	}
}

// History returns the most recent raw inputs, oldest first.
func (p *Parser) History() []string {
	out := make([]string, len(p.history))
	copy(out, p.history)
	return out
}

// Lookup returns the table entry for name.
func Lookup(name string) (Spec, bool) {
	for _, s := range table {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Commands returns the command table in help order.
func Commands() []Spec {
	out := make([]Spec, len(table))
	copy(out, table)
	return out
}

// Validate checks argument arity for known commands. Unknown and empty
// commands are not syntax errors and return nil.
func Validate(c ParsedCommand) error {
	spec, ok := Lookup(c.Command)
	if !ok {
		return nil
	}

	n := len(c.Args)
	switch spec.Arity {
	case NoArgs:
		if n != 0 {
			return fmt.Errorf("%s takes no arguments: %w", spec.Name, ErrArity)
		}
	case ExactlyOne:
		if n != 1 {
			return fmt.Errorf("%s takes exactly one argument: %w", spec.Name, ErrArity)
		}
	case OneOrMore:
		if n == 0 {
			return fmt.Errorf("%s needs a target: %w", spec.Name, ErrArity)
		}
	}
	return nil
}
