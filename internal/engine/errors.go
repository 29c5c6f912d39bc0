package engine

import (
	"errors"
	"fmt"
)

// TokenError represents a token that could not be resolved.
//
// Token errors include:
//   - Unresolved: the token path does not exist in the lookup root
//   - Self reference: the token resolves back to text containing itself
//   - Pass limit: resolution did not converge within the pass budget
type TokenError struct {
	// Code identifies the error category.
	Code TokenErrorCode

	// Token is the raw token text, delimiters included.
	Token string

	// Message is a human-readable description naming the token.
	Message string

	// Pass is the fixpoint pass in which the error was raised.
	Pass int
}

// TokenErrorCode categorizes token errors.
type TokenErrorCode string

const (
	// ErrCodeUnresolved indicates a token path that resolves to nothing.
	ErrCodeUnresolved TokenErrorCode = "UNRESOLVED_TOKEN"

	// ErrCodeSelfReference indicates a token whose resolution never converges.
	ErrCodeSelfReference TokenErrorCode = "SELF_REFERENCING_TOKEN"

	// ErrCodePassLimit indicates the run exceeded its maximum number of passes.
	ErrCodePassLimit TokenErrorCode = "PASS_LIMIT_EXCEEDED"
)

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.Pass > 0 {
		return fmt.Sprintf("%s: %s (pass=%d)", e.Code, e.Message, e.Pass)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnresolvedError returns true if the error is an unresolved token error.
// Uses errors.As to handle wrapped errors.
func IsUnresolvedError(err error) bool {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Code == ErrCodeUnresolved
	}
	return false
}

// IsSelfReferenceError returns true if the error is a self reference or a
// pass limit error. Both mean the cascade could not reach a fixpoint.
// Uses errors.As to handle wrapped errors.
func IsSelfReferenceError(err error) bool {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Code == ErrCodeSelfReference || te.Code == ErrCodePassLimit
	}
	return false
}

// NewUnresolvedError creates a TokenError for a token path that does not resolve.
func NewUnresolvedError(token string, pass int) *TokenError {
	return &TokenError{
		Code:    ErrCodeUnresolved,
		Token:   token,
		Message: fmt.Sprintf("%s token path not found in the object, check the token", token),
		Pass:    pass,
	}
}

// NewSelfReferenceError creates a TokenError for a token that resolves to itself.
func NewSelfReferenceError(token string, pass int) *TokenError {
	return &TokenError{
		Code:    ErrCodeSelfReference,
		Token:   token,
		Message: fmt.Sprintf("%s token is self referencing, check the token", token),
		Pass:    pass,
	}
}

// NewPassLimitError creates a TokenError for a run that did not converge.
func NewPassLimitError(token string, passes int) *TokenError {
	return &TokenError{
		Code:    ErrCodePassLimit,
		Token:   token,
		Message: fmt.Sprintf("%s token did not resolve within %d passes, check for self referencing tokens", token, passes),
		Pass:    passes,
	}
}
