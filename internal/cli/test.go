package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/objtok/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios through the engine.

Each scenario's expect clause and assertions are checked. When
<scenarios-dir>/golden/<name>.golden exists, the canonical snapshot of
the run (output, trace, passes) must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios, etc.)

Examples:
  objtok test ./scenarios
  objtok test ./scenarios --filter "cascade*"
  objtok test ./scenarios --update
  objtok test ./scenarios --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, scenariosDir string) error {
	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarios, err := harness.LoadScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if len(scenarios) == 0 {
		if f.IsJSON() {
			return f.Success(TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}
	goldenDir := filepath.Join(scenariosDir, "golden")
	for _, scenario := range scenarios {
		res := runScenario(scenario, goldenDir, opts)
		opts.Logger.Debug("scenario finished", "name", res.Name, "pass", res.Pass)
		result.Scenarios = append(result.Scenarios, res)
		if res.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if f.IsJSON() {
		if result.Failed > 0 {
			if err := f.Failure(result, "E_TEST_FAILED", msg); err != nil {
				return err
			}
			return reported(NewExitError(ExitFailure, msg))
		}
		return f.Success(result)
	}

	outputTestText(cmd.OutOrStdout(), result)
	if result.Failed > 0 {
		// Test failures = exit code 1
		return reported(NewExitError(ExitFailure, msg))
	}
	return nil
}

// runScenario executes a single scenario and checks it against its golden
// file, if any.
func runScenario(scenario *harness.Scenario, goldenDir string, opts *TestOptions) ScenarioResult {
	res := ScenarioResult{Name: scenario.Name}

	result, err := harness.Run(scenario)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return res
	}

	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to marshal snapshot: %v", err)}
		return res
	}

	goldenPath := filepath.Join(goldenDir, scenario.Name+".golden")
	if opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			res.Errors = []string{fmt.Sprintf("failed to update golden file: %v", err)}
			return res
		}
	} else {
		golden, err := os.ReadFile(goldenPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// No golden file - use assertion-based validation only
		case err != nil:
			res.Errors = []string{fmt.Sprintf("golden comparison failed: %v", err)}
			return res
		case !bytes.Equal(golden, snapshot):
			result.AddError("snapshot does not match golden file (run with --update to regenerate)")
		}
	}

	res.Pass = result.Pass
	res.Errors = result.Errors
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res
}

// writeGolden writes the snapshot as the golden file.
func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestText outputs the test result as human-readable text.
func outputTestText(w io.Writer, result TestResult) {
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Passed: %d/%d\n", result.Passed, result.Total)
	if result.Failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n", result.Failed)
	}
}
