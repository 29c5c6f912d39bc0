package engine

import (
	"github.com/roach88/objtok/internal/resolve"
	"github.com/roach88/objtok/internal/token"
	"github.com/roach88/objtok/internal/walk"
)

// Finding describes one token occurrence found by Inspect.
type Finding struct {
	Token    string `json:"token"`
	Path     string `json:"path"`
	Resolved bool   `json:"resolved"`
	Value    string `json:"value,omitempty"`
}

// Inspect reports every token in the writable strings of input and whether
// its path resolves against lookup, without substituting anything. A nil
// lookup means input is its own lookup root.
//
// Resolved values are reported as found; a value that is itself a token
// would be resolved further by Tokenize.
func (e *Engine) Inspect(input, lookup any) ([]Finding, error) {
	if lookup == nil {
		lookup = input
	}
	var findings []Finding
	scan := func(text string) (string, error) {
		for _, m := range token.Find(text) {
			f := Finding{Token: m.Raw, Path: m.Path}
			if v, ok := resolve.Resolve(lookup, m.Path); ok {
				f.Resolved = true
				f.Value = resolve.Stringify(v)
			}
			findings = append(findings, f)
		}
		return text, nil
	}
	if err := walk.New(scan).Walk(input); err != nil {
		return nil, err
	}
	return findings, nil
}

// Unresolved filters findings down to the tokens whose path did not resolve.
func Unresolved(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if !f.Resolved {
			out = append(out, f)
		}
	}
	return out
}
