// Package objtok resolves @path@ tokens embedded in the string fields of an
// object graph.
//
// A token names a dotted field path that is looked up case-insensitively in
// a lookup root, which is the object itself unless another one is given:
//
//	cfg := &Config{Host: "api.example.com", URL: "https://@host@/v1"}
//	objtok.Tokenize(cfg)
//	// cfg.URL == "https://api.example.com/v1"
//
// Tokens whose replacement is another token are resolved on later passes
// until nothing changes. Paths that resolve to nothing are replaced with ""
// unless WithThrowOnUnresolved is set. Tokens that never settle fail with a
// self-reference error.
//
// Ownership: Tokenize mutates obj in place for the duration of the call.
// Callers must not tokenize graphs that share mutable sub-objects from
// several goroutines at once. On error, writes already applied are kept.
package objtok

import (
	"log/slog"

	"github.com/roach88/objtok/internal/engine"
)

// KeyValue is an association-list element. A []KeyValue field keeps its
// order and duplicate keys; only values are substituted.
type KeyValue struct {
	Key   string
	Value string
}

// Tracer receives a record of every token handled during a run.
type Tracer = engine.Tracer

// Option configures a tokenization call.
type Option = engine.Option

// WithThrowOnUnresolved makes a token whose path does not resolve fail the
// call instead of being replaced with "". Default false.
func WithThrowOnUnresolved(throw bool) Option {
	return engine.WithThrowOnUnresolved(throw)
}

// WithMaxPasses bounds the number of full passes over the graph.
func WithMaxPasses(n int) Option {
	return engine.WithMaxPasses(n)
}

// WithLogger sets the logger for pass diagnostics (Debug level).
func WithLogger(l *slog.Logger) Option {
	return engine.WithLogger(l)
}

// WithTracer registers a Tracer.
func WithTracer(t Tracer) Option {
	return engine.WithTracer(t)
}

// Tokenize resolves the tokens of obj against obj itself and returns obj.
func Tokenize(obj any, opts ...Option) (any, error) {
	return TokenizeFrom(obj, obj, opts...)
}

// TokenizeFrom resolves the tokens of obj against lookup and returns obj.
// lookup is only read. A nil lookup is the same as calling Tokenize.
func TokenizeFrom(obj, lookup any, opts ...Option) (any, error) {
	if _, err := engine.New(opts...).Tokenize(obj, lookup); err != nil {
		return obj, err
	}
	return obj, nil
}

// IsUnresolvedError reports whether err is an unresolved-token failure.
func IsUnresolvedError(err error) bool {
	return engine.IsUnresolvedError(err)
}

// IsSelfReferenceError reports whether err is a token that never settled,
// either a detected self reference or an exhausted pass budget.
func IsSelfReferenceError(err error) bool {
	return engine.IsSelfReferenceError(err)
}
