package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite defines a complete playthrough.
// Can either be a regular playthrough with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `yaml:"name"`
	Steps []TestStep `yaml:"steps,omitempty"` // Used for regular playthroughs
	Cases []string   `yaml:"cases,omitempty"` // Used for suite files (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one command and what should hold after it runs.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Command      string       `yaml:"command"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a step executes. Nil fields are
// not checked.
type Expectations struct {
	// Result
	Success *bool `yaml:"success,omitempty"`

	// GameState properties
	Location  *string  `yaml:"location,omitempty"`
	Inventory []string `yaml:"inventory,omitempty"` // Item keys, order independent
	Health    *int     `yaml:"health,omitempty"`
	Status    *string  `yaml:"status,omitempty"`
	Turn      *int     `yaml:"turn,omitempty"`
	Defeated  []string `yaml:"defeated,omitempty"` // Enemy keys

	// Response analysis
	ResponseContains    []string `yaml:"response_contains,omitempty"`
	ResponseNotContains []string `yaml:"response_not_contains,omitempty"`
	ResponseRegex       string   `yaml:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	GameID   uuid.UUID // Game created for this run
}
