package testutil

import (
	"sync"

	"github.com/roach88/objtok/internal/ir"
)

// Recorder collects resolution events in the order they are recorded.
//
// Satisfies engine.Tracer. Thread-safety: all methods are safe for
// concurrent use via internal mutex.
type Recorder struct {
	mu     sync.Mutex
	events []ir.Resolution
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an event.
func (r *Recorder) Record(res ir.Resolution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, res)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []ir.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.Resolution, len(r.events))
	copy(out, r.events)
	return out
}

// Outcomes returns the outcome of every recorded event, in order.
func (r *Recorder) Outcomes() []ir.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.Outcome, len(r.events))
	for i, e := range r.events {
		out[i] = e.Outcome
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
