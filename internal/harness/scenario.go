package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/objtok/internal/document"
	"github.com/roach88/objtok/internal/engine"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the object graph to tokenize.
	Document map[string]any `yaml:"document"`

	// Lookup is an optional separate lookup root. When nil the document
	// is its own lookup root.
	Lookup map[string]any `yaml:"lookup,omitempty"`

	// Strict fails the run on unresolved tokens.
	Strict bool `yaml:"strict,omitempty"`

	// MaxPasses overrides the engine pass budget when positive.
	MaxPasses int `yaml:"max_passes,omitempty"`

	// Expect validates the outcome of the run.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the tokenized document and the trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected outcome.
type ExpectClause struct {
	// Document contains expected field values.
	// This is a subset match - only specified fields are validated.
	Document map[string]any `yaml:"document,omitempty"`

	// Error is the expected error code. Empty means the run must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the tokenized document or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "field_equals": value at Path equals Value
	// - "trace_contains": Token appears in the trace (with Outcome, if set)
	// - "trace_count": exactly Count events (with Outcome/Token, if set)
	// - "passes": the run took exactly Count passes
	Type string `yaml:"type"`

	// Path is a dotted field path (used by field_equals).
	Path string `yaml:"path,omitempty"`

	// Value is the expected value (used by field_equals).
	Value any `yaml:"value,omitempty"`

	// Token is the raw token text, delimiters included.
	Token string `yaml:"token,omitempty"`

	// Outcome filters trace events (substituted, blanked, unresolved).
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number (used by trace_count and passes).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFieldEquals   = "field_equals"
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertPasses        = "passes"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by name.
// When filter is non-empty only scenarios whose name matches the glob
// pattern are returned.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	var scenarios []*Scenario
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if !document.Match(filter, s.Name) {
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Document == nil {
		return fmt.Errorf("document is required")
	}

	if s.MaxPasses < 0 {
		return fmt.Errorf("max_passes must be non-negative")
	}

	if s.Expect != nil && s.Expect.Error != "" {
		switch engine.TokenErrorCode(s.Expect.Error) {
		case engine.ErrCodeUnresolved, engine.ErrCodeSelfReference, engine.ErrCodePassLimit:
		default:
			return fmt.Errorf("expect.error: unknown error code %q", s.Expect.Error)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFieldEquals:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for field_equals", index)
		}
	case AssertTraceContains:
		if a.Token == "" {
			return fmt.Errorf("assertions[%d]: token is required for trace_contains", index)
		}
	case AssertTraceCount, AssertPasses:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
