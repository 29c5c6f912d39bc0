package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/objtok/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a completed run with minimal required fields.
func createTestRun(id, createdAt string) ir.Run {
	return ir.Run{
		ID:            id,
		Input:         "svc.yaml",
		Status:        ir.RunStatusDone,
		Passes:        2,
		Substitutions: 3,
		InputDigest:   "in-" + id,
		OutputDigest:  "out-" + id,
		CreatedAt:     createdAt,
	}
}
