package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/objtok/internal/ir"
	"github.com/roach88/objtok/internal/store"
)

// seedJournal writes runs straight into a new database and returns its path.
func seedJournal(t *testing.T, runs ...ir.Run) string {
	t.Helper()

	db := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	for _, run := range runs {
		require.NoError(t, st.WriteRun(context.Background(), run))
	}
	return db
}

func testRun(id, created string) ir.Run {
	return ir.Run{
		ID:            id,
		Input:         id + ".yaml",
		Status:        ir.RunStatusDone,
		Passes:        1,
		Substitutions: 2,
		InputDigest:   "in-" + id,
		OutputDigest:  "out-" + id,
		CreatedAt:     created,
	}
}

func TestHistory_Table(t *testing.T) {
	db := seedJournal(t,
		testRun("run-1", "2024-01-01T00:00:00Z"),
		testRun("run-2", "2024-01-02T00:00:00Z"),
	)

	stdout, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run-1.yaml")
	assert.Contains(t, stdout, "(2 runs)")
	assert.Less(t, strings.Index(stdout, "run-2"), strings.Index(stdout, "run-1"), "newest first")
}

func TestHistory_Limit(t *testing.T) {
	db := seedJournal(t,
		testRun("run-1", "2024-01-01T00:00:00Z"),
		testRun("run-2", "2024-01-02T00:00:00Z"),
	)

	stdout, _, err := execute(t, "history", "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "run-2")
	assert.NotContains(t, stdout, "run-1")
	assert.Contains(t, stdout, "(1 runs)")
}

func TestHistory_Empty(t *testing.T) {
	db := seedJournal(t)

	stdout, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded.")
}

func TestHistory_MissingDatabase(t *testing.T) {
	_, _, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database given")
}

func TestHistory_DatabaseFromConfig(t *testing.T) {
	db := seedJournal(t, testRun("run-1", "2024-01-01T00:00:00Z"))
	cfg := writeFile(t, t.TempDir(), "objtok.yaml", "database: "+db+"\n")

	stdout, _, err := execute(t, "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run-1")
}
