package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/objtok/internal/ir"
	"github.com/roach88/objtok/internal/resolve"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Trace    []ir.Resolution // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] pass=%d %s %s", ev.Seq, ev.Pass, ev.Token, ev.Outcome)
			if ev.Value != "" {
				fmt.Fprintf(&buf, " %q", ev.Value)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFieldEquals:
			err = assertFieldEquals(result, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertPasses:
			err = assertPasses(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertFieldEquals resolves a dotted path in the tokenized document.
// String lists compare in their rendered ", " form.
func assertFieldEquals(result *Result, a Assertion) error {
	got, ok := resolve.Resolve(result.Output, a.Path)
	if !ok {
		return &AssertionError{
			Type:     AssertFieldEquals,
			Expected: fmt.Sprintf("%s = %v", a.Path, a.Value),
			Actual:   "path not found",
		}
	}
	if !valuesEqual(a.Value, got) {
		return &AssertionError{
			Type:     AssertFieldEquals,
			Expected: fmt.Sprintf("%s = %v", a.Path, a.Value),
			Actual:   fmt.Sprintf("%s = %v", a.Path, got),
		}
	}
	return nil
}

// assertTraceContains checks if the trace holds an event for the token,
// with the given outcome when one is specified.
func assertTraceContains(trace []ir.Resolution, a Assertion) error {
	for _, ev := range trace {
		if matchEvent(ev, a) {
			return nil
		}
	}

	expected := a.Token
	if a.Outcome != "" {
		expected += " " + a.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceCount checks the number of events matching the token and
// outcome filters. Empty filters match everything.
func assertTraceCount(trace []ir.Resolution, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if matchEvent(ev, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d events (token=%q outcome=%q)", a.Count, a.Token, a.Outcome),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertPasses(result *Result, a Assertion) error {
	if result.Passes != a.Count {
		return &AssertionError{
			Type:     AssertPasses,
			Expected: fmt.Sprintf("%d passes", a.Count),
			Actual:   fmt.Sprintf("%d passes", result.Passes),
			Trace:    result.Trace,
		}
	}
	return nil
}

func matchEvent(ev ir.Resolution, a Assertion) bool {
	if a.Token != "" && !strings.EqualFold(ev.Token, a.Token) {
		return false
	}
	return a.Outcome == "" || string(ev.Outcome) == a.Outcome
}
