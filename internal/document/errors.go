package document

import "fmt"

// Error codes for document loading.
const (
	ErrCodeFormat  = "E201" // Unsupported file extension
	ErrCodeRead    = "E202" // File could not be read
	ErrCodeDecode  = "E203" // Content could not be decoded
	ErrCodeNoMatch = "E204" // Pattern matched no files
)

// LoadError describes a document that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
