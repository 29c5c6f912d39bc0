package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/objtok/internal/ir"
)

// Snapshot captures the observable outcome of a scenario execution.
type Snapshot struct {
	ScenarioName string
	ErrorCode    string
	Passes       int
	Output       map[string]any
	Trace        []ir.Resolution
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		eventMap := map[string]any{
			"seq":     ev.Seq,
			"pass":    ev.Pass,
			"token":   ev.Token,
			"path":    ev.Path,
			"outcome": string(ev.Outcome),
		}
		if ev.Value != "" {
			eventMap["value"] = ev.Value
		}
		traceList[i] = eventMap
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"passes":        s.Passes,
		"output":        s.Output,
		"trace":         traceList,
	}
	if s.ErrorCode != "" {
		result["error_code"] = s.ErrorCode
	}
	return result
}

// MarshalSnapshot renders the snapshot of a result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: name,
		ErrorCode:    result.ErrorCode,
		Passes:       result.Passes,
		Output:       result.Output,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
