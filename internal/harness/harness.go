package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"

	"github.com/roach88/objtok/internal/engine"
	"github.com/roach88/objtok/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// The scenario document is copied first, so a scenario can be run any
// number of times. Token errors are part of the result; the returned error
// is reserved for failures outside the engine.
func Run(scenario *Scenario) (*Result, error) {
	doc, ok := copyValue(scenario.Document).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("scenario %s: document is not a mapping", scenario.Name)
	}
	var lookup any
	if scenario.Lookup != nil {
		lookup = copyValue(scenario.Lookup)
	}

	rec := testutil.NewRecorder()
	opts := []engine.Option{
		engine.WithThrowOnUnresolved(scenario.Strict),
		engine.WithTracer(rec),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if scenario.MaxPasses > 0 {
		opts = append(opts, engine.WithMaxPasses(scenario.MaxPasses))
	}

	result := NewResult()
	report, err := engine.New(opts...).Tokenize(doc, lookup)
	var te *engine.TokenError
	switch {
	case err == nil:
	case errors.As(err, &te):
		result.ErrorCode = string(te.Code)
	default:
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result.Output = doc
	result.Passes = report.Passes
	result.Trace = rec.Events()

	checkExpect(result, scenario.Expect, err)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func checkExpect(result *Result, expect *ExpectClause, runErr error) {
	wantCode := ""
	if expect != nil {
		wantCode = expect.Error
	}
	if result.ErrorCode != wantCode {
		switch {
		case wantCode == "":
			result.AddError(fmt.Sprintf("unexpected error: %v", runErr))
		case result.ErrorCode == "":
			result.AddError(fmt.Sprintf("expected error %s, run succeeded", wantCode))
		default:
			result.AddError(fmt.Sprintf("expected error %s, got %v", wantCode, runErr))
		}
	}

	if expect == nil {
		return
	}
	for _, msg := range matchSubset("", expect.Document, result.Output) {
		result.AddError(msg)
	}
}

// matchSubset compares only the keys present in expected.
func matchSubset(prefix string, expected, actual map[string]any) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []string
	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		got, ok := actual[k]
		if !ok {
			errs = append(errs, fmt.Sprintf("expect.document.%s: field missing", path))
			continue
		}
		want := expected[k]
		wantMap, wantIsMap := want.(map[string]any)
		gotMap, gotIsMap := got.(map[string]any)
		if wantIsMap && gotIsMap {
			errs = append(errs, matchSubset(path, wantMap, gotMap)...)
			continue
		}
		if !valuesEqual(want, got) {
			errs = append(errs, fmt.Sprintf("expect.document.%s: expected %v, got %v", path, want, got))
		}
	}
	return errs
}

// valuesEqual compares decoded values, treating numbers of different Go
// types as equal when they print the same.
func valuesEqual(want, got any) bool {
	if reflect.DeepEqual(want, got) {
		return true
	}
	return fmt.Sprint(want) == fmt.Sprint(got)
}

// copyValue deep-copies a decoded document value.
func copyValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
