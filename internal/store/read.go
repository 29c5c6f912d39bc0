package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/objtok/internal/ir"
)

const runColumns = `id, input, lookup, status, passes, substitutions, blanked,
	error_code, error_message, input_digest, output_digest, created_at`

// ReadRun returns a run by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return ir.Run{}, err
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit below 1 returns
// every run.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]ir.Run, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY created_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadResolutions returns the trace of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run has no trace.
func (s *Store) ReadResolutions(ctx context.Context, runID string) ([]ir.Resolution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, pass, token, path, outcome, value
		FROM resolutions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	events := []ir.Resolution{}
	for rows.Next() {
		var ev ir.Resolution
		var outcome string
		if err := rows.Scan(&ev.Seq, &ev.Pass, &ev.Token, &ev.Path, &outcome, &ev.Value); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		ev.Outcome = ir.Outcome(outcome)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return events, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (ir.Run, error) {
	var run ir.Run
	var status string
	err := sc.Scan(
		&run.ID,
		&run.Input,
		&run.Lookup,
		&status,
		&run.Passes,
		&run.Substitutions,
		&run.Blanked,
		&run.ErrorCode,
		&run.ErrorMessage,
		&run.InputDigest,
		&run.OutputDigest,
		&run.CreatedAt,
	)
	if err != nil {
		return ir.Run{}, err
	}
	run.Status = ir.RunStatus(status)
	return run, nil
}
