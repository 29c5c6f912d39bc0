package engine

import "slices"

// StallDetector decides when the fixpoint loop can no longer make progress.
//
// After every pass the engine reports the residual tokens left in the graph
// and the number of fields that changed. Three situations end the loop:
//
//   - Stall: residual tokens remain but no field changed. The walk is
//     deterministic, so every further pass would be identical. The first
//     residual token is reported as self referencing.
//   - Cycle: the paths of the residual tokens lead to a cycle in the
//     lookup root. Text along a cycle always resolves to text that still
//     holds a token of the cycle, so the run can never converge, whether
//     the text stays the same or grows on every pass.
//   - Exhaustion: the pass budget is spent while residual tokens remain,
//     e.g. a reference chain longer than the budget.
//
// Example stall:
//
//	Prop2 = "@prop2@"
//	pass 1: @prop2@ resolves to "@prop2@" → text unchanged, residual [@prop2@]
//	→ SELF_REFERENCING_TOKEN @prop2@
//
// Example cycle:
//
//	Prop2 = "@prop2@ @prop2@"
//	pass 1: text doubles, residual [@prop2@ ×4], prop2 → prop2
//	→ SELF_REFERENCING_TOKEN @prop2@
//
// A detector belongs to exactly one run.
type StallDetector struct {
	maxPasses int
	lookup    any
	previous  []string
	repeats   int
}

// NewStallDetector creates a detector allowing at most maxPasses passes.
// Residual token paths are followed through lookup to find cycles; a nil
// lookup disables cycle detection.
func NewStallDetector(maxPasses int, lookup any) *StallDetector {
	return &StallDetector{maxPasses: maxPasses, lookup: lookup}
}

// Check evaluates the outcome of a completed pass.
// Returns nil when another pass should run or the run is done.
func (d *StallDetector) Check(pass int, residual []string, changed int) *TokenError {
	if len(residual) == 0 {
		return nil
	}

	if slices.Equal(residual, d.previous) {
		d.repeats++
	} else {
		d.repeats = 0
	}
	d.previous = slices.Clone(residual)

	if changed == 0 {
		return NewSelfReferenceError(residual[0], pass)
	}
	if raw, ok := cyclicToken(residual, d.lookup); ok {
		return NewSelfReferenceError(raw, pass)
	}
	if pass >= d.maxPasses {
		return NewPassLimitError(residual[0], pass)
	}
	return nil
}

// Repeats returns how many consecutive passes ended with identical residual
// tokens. Identical residuals with changes in between are legitimate (a
// cascade still propagating elsewhere in the graph).
func (d *StallDetector) Repeats() int {
	return d.repeats
}
