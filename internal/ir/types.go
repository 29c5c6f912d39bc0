package ir

// Outcome describes what happened to one token occurrence.
type Outcome string

const (
	// OutcomeSubstituted means the token path resolved and the token was replaced.
	OutcomeSubstituted Outcome = "substituted"

	// OutcomeBlanked means the path did not resolve and the token was replaced with "".
	OutcomeBlanked Outcome = "blanked"

	// OutcomeUnresolved means the path did not resolve and the run was aborted.
	OutcomeUnresolved Outcome = "unresolved"
)

// Resolution records the handling of one token during a tokenization run.
type Resolution struct {
	// Seq orders events within a run. Assigned from a logical clock.
	Seq int64 `json:"seq"`

	// Pass is the 1-based fixpoint pass the token was seen in.
	Pass int `json:"pass"`

	// Token is the raw token text, delimiters included.
	Token string `json:"token"`

	// Path is the dotted path the token referred to.
	Path string `json:"path"`

	// Outcome is what the engine did with the token.
	Outcome Outcome `json:"outcome"`

	// Value is the replacement text. Empty for blanked and unresolved tokens.
	Value string `json:"value,omitempty"`
}

// RunStatus is the terminal state of a tokenization run.
type RunStatus string

const (
	RunStatusDone   RunStatus = "done"
	RunStatusFailed RunStatus = "failed"
)

// Run summarizes one tokenization of one document.
type Run struct {
	ID            string    `json:"id"`
	Input         string    `json:"input"`
	Lookup        string    `json:"lookup,omitempty"`
	Status        RunStatus `json:"status"`
	Passes        int       `json:"passes"`
	Substitutions int       `json:"substitutions"`
	Blanked       int       `json:"blanked"`
	ErrorCode     string    `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	InputDigest   string    `json:"input_digest"`
	OutputDigest  string    `json:"output_digest,omitempty"`
	CreatedAt     string    `json:"created_at,omitempty"`
}
