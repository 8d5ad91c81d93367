package runner

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"gopkg.in/yaml.v3"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted games against a running adventure-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file. Unknown fields are
// rejected so typos in expectations do not pass silently.
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var suite TestSuite
	if err := dec.Decode(&suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays a suite in a fresh game, then deletes the game.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	gameID, _, err := CreateGame(ctx, r.Client, r.BaseURL)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameID = gameID
	defer func() {
		if err := DeleteGame(context.WithoutCancel(ctx), r.Client, r.BaseURL, gameID); err != nil {
			r.Logger("    Warning: failed to delete game %s: %v", gameID, err)
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.label())
		stepResult := r.executeStep(ctx, gameID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.label(), stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.label(), stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.label(), stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (s TestStep) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Command
}

// executeStep sends the step's command and checks its expectations
func (r *Runner) executeStep(ctx context.Context, gameID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.label(),
	}

	res, err := SendCommand(ctx, r.Client, r.BaseURL, gameID, step.Command)
	if err != nil {
		result.Error = fmt.Errorf("failed to send command: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = res.Message

	gs, err := GetGameState(ctx, r.Client, r.BaseURL, gameID)
	if err != nil {
		result.Error = fmt.Errorf("failed to get game state: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := checkExpectations(step.Expectations, res.Success, gs, res.Message); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the command result
// and the state that followed it
func checkExpectations(exp Expectations, success bool, gs *state.GameState, responseText string) error {
	if exp.Success != nil && success != *exp.Success {
		return fmt.Errorf("expected success %t, got %t (%q)", *exp.Success, success, responseText)
	}

	if exp.Location != nil && gs.Player.Location != *exp.Location {
		return fmt.Errorf("expected location %s, got %s", *exp.Location, gs.Player.Location)
	}

	// Full inventory check (order independent)
	if exp.Inventory != nil {
		expected := make(map[string]bool)
		for _, item := range exp.Inventory {
			expected[item] = true
		}
		actual := make(map[string]bool)
		for _, item := range gs.Player.Inventory {
			actual[item] = true
		}

		for item := range expected {
			if !actual[item] {
				return fmt.Errorf("expected inventory to contain '%s', but it's missing. Actual inventory: %v", item, gs.Player.Inventory)
			}
		}
		for item := range actual {
			if !expected[item] {
				return fmt.Errorf("inventory contains unexpected item '%s'. Expected inventory: %v, Actual: %v", item, exp.Inventory, gs.Player.Inventory)
			}
		}
	}

	if exp.Health != nil && gs.Player.Health != *exp.Health {
		return fmt.Errorf("expected health %d, got %d", *exp.Health, gs.Player.Health)
	}

	if exp.Status != nil && string(gs.Status) != *exp.Status {
		return fmt.Errorf("expected status %s, got %s", *exp.Status, gs.Status)
	}

	if exp.Turn != nil && gs.Turn != *exp.Turn {
		return fmt.Errorf("expected turn %d, got %d", *exp.Turn, gs.Turn)
	}

	for _, key := range exp.Defeated {
		enemy, ok := gs.World.Enemies[key]
		if !ok {
			return fmt.Errorf("expected enemy %s to exist, but it doesn't", key)
		}
		if !enemy.IsDefeated() {
			return fmt.Errorf("expected enemy %s to be defeated", key)
		}
	}

	lowerResponse := strings.ToLower(responseText)
	for _, text := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(text)) {
			return fmt.Errorf("expected response to contain '%s', got %q", text, responseText)
		}
	}
	for _, text := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(text)) {
			return fmt.Errorf("expected response to NOT contain '%s', got %q", text, responseText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}
