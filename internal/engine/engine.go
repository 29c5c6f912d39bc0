package engine

import (
	"log/slog"
	"strings"

	"github.com/roach88/objtok/internal/ir"
	"github.com/roach88/objtok/internal/resolve"
	"github.com/roach88/objtok/internal/token"
	"github.com/roach88/objtok/internal/walk"
)

// DefaultMaxPasses is the default maximum number of fixpoint passes per run.
// Cascades converge in at most one pass per dependency level, so this only
// matters for tokens that never converge.
const DefaultMaxPasses = 64

// Tracer receives a Resolution for every token the engine handles.
// Implementations must not mutate the graph being tokenized.
type Tracer interface {
	Record(res ir.Resolution)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ir.Resolution)

// Record implements Tracer.
func (f TracerFunc) Record(res ir.Resolution) { f(res) }

// Engine resolves tokens in object graphs. An Engine is not safe for
// concurrent use.
type Engine struct {
	throwOnUnresolved bool
	maxPasses         int
	logger            *slog.Logger
	tracer            Tracer

	// seq is the last sequence number handed to a traced event. It keeps
	// counting across runs of the same engine.
	seq int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithThrowOnUnresolved makes unresolved token paths fail the run instead
// of being replaced with the empty string.
func WithThrowOnUnresolved(throw bool) Option {
	return func(e *Engine) {
		e.throwOnUnresolved = throw
	}
}

// WithMaxPasses sets the maximum number of fixpoint passes per run.
//
// Default: 64 passes (DefaultMaxPasses). Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer registers a Tracer for resolution events.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithSeqOffset numbers traced events after offset instead of after 0.
// Used to continue a journal that already holds events.
func WithSeqOffset(offset int64) Option {
	return func(e *Engine) {
		e.seq = offset
	}
}

// New creates an Engine. Without options unresolved tokens are blanked and
// runs are limited to DefaultMaxPasses passes.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxPasses: DefaultMaxPasses,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ThrowOnUnresolved reports the unresolved-token policy of the engine.
func (e *Engine) ThrowOnUnresolved() bool {
	return e.throwOnUnresolved
}

// MaxPasses reports the pass budget of the engine.
func (e *Engine) MaxPasses() int {
	return e.maxPasses
}

// Report summarizes a completed run.
type Report struct {
	// Passes is the number of passes started, including one aborted by an error.
	Passes int

	// Substitutions counts tokens replaced with a resolved value.
	Substitutions int

	// Blanked lists tokens replaced with "" because their path did not resolve.
	Blanked []string

	// Writes counts string values that changed.
	Writes int
}

// Tokenize resolves every token in input against lookup, mutating input in
// place. A nil lookup means input is its own lookup root.
//
// The returned Report is non-nil even on failure and describes the work
// done up to the error.
func (e *Engine) Tokenize(input, lookup any) (*Report, error) {
	if lookup == nil {
		lookup = input
	}
	r := &run{engine: e, lookup: lookup, report: &Report{}}
	if input == nil {
		return r.report, nil
	}

	detector := NewStallDetector(e.maxPasses, lookup)
	for pass := 1; ; pass++ {
		r.beginPass(pass)
		r.report.Passes = pass
		if err := walk.New(r.substitute).Walk(input); err != nil {
			e.logger.Debug("run aborted", "pass", pass, "error", err)
			return r.report, err
		}
		r.report.Writes += r.changed

		e.logger.Debug("pass complete",
			"pass", pass,
			"changed", r.changed,
			"residual", len(r.residual),
		)

		if len(r.residual) == 0 {
			break
		}
		if err := detector.Check(pass, r.residual, r.changed); err != nil {
			e.logger.Debug("run did not converge",
				"pass", pass,
				"token", err.Token,
				"code", err.Code,
				"repeats", detector.Repeats(),
			)
			return r.report, err
		}
	}

	e.logger.Debug("run complete",
		"passes", r.report.Passes,
		"substitutions", r.report.Substitutions,
		"blanked", len(r.report.Blanked),
	)
	return r.report, nil
}

// Substitute resolves the tokens of a single string against lookup.
// No fixpoint is attempted: tokens produced by the replacement are left in
// the result.
func (e *Engine) Substitute(text string, lookup any) (string, error) {
	r := &run{engine: e, lookup: lookup, report: &Report{}}
	r.beginPass(1)
	return r.substitute(text)
}

// run is the per-call state of a tokenization.
type run struct {
	engine *Engine
	lookup any
	report *Report

	pass     int
	changed  int
	residual []string
}

func (r *run) beginPass(pass int) {
	r.pass = pass
	r.changed = 0
	r.residual = r.residual[:0]
}

// substitute replaces every token of text in order of appearance. Repeats
// of the same token text are replaced together, and each distinct token is
// resolved once per call even when its value contains the token again.
func (r *run) substitute(text string) (string, error) {
	matches := token.Find(text)
	if len(matches) == 0 {
		return text, nil
	}

	out := text
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, done := seen[m.Raw]; done {
			continue
		}
		seen[m.Raw] = struct{}{}
		if !strings.Contains(out, m.Raw) {
			continue
		}

		value, ok := resolve.Resolve(r.lookup, m.Path)
		if !ok {
			if r.engine.throwOnUnresolved {
				r.trace(m, ir.OutcomeUnresolved, "")
				return text, NewUnresolvedError(m.Raw, r.pass)
			}
			out = strings.ReplaceAll(out, m.Raw, "")
			r.report.Blanked = append(r.report.Blanked, m.Raw)
			r.trace(m, ir.OutcomeBlanked, "")
			continue
		}

		s := resolve.Stringify(value)
		out = strings.ReplaceAll(out, m.Raw, s)
		r.report.Substitutions++
		r.trace(m, ir.OutcomeSubstituted, s)
	}

	if out != text {
		r.changed++
	}
	r.residual = append(r.residual, token.Raws(token.Find(out))...)
	return out, nil
}

func (r *run) trace(m token.Match, outcome ir.Outcome, value string) {
	if r.engine.tracer == nil {
		return
	}
	r.engine.seq++
	r.engine.tracer.Record(ir.Resolution{
		Seq:     r.engine.seq,
		Pass:    r.pass,
		Token:   m.Raw,
		Path:    m.Path,
		Outcome: outcome,
		Value:   value,
	})
}
