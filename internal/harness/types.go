package harness

import "github.com/roach88/objtok/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause and all assertions match.
	Pass bool `json:"pass"`

	// Output is the tokenized document.
	Output map[string]any `json:"output"`

	// Trace contains every resolution event in seq order.
	Trace []ir.Resolution `json:"trace"`

	// Passes is the number of engine passes.
	Passes int `json:"passes"`

	// ErrorCode is the code of the engine error, if the run failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.Resolution{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
