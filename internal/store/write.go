package store

import (
	"context"
	"fmt"

	"github.com/roach88/objtok/internal/ir"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, input, lookup, status, passes, substitutions, blanked,
		 error_code, error_message, input_digest, output_digest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Input,
		run.Lookup,
		string(run.Status),
		run.Passes,
		run.Substitutions,
		run.Blanked,
		run.ErrorCode,
		run.ErrorMessage,
		run.InputDigest,
		run.OutputDigest,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteResolutions appends the trace of a run in one transaction.
// The run must already exist (foreign key constraint).
func (s *Store) WriteResolutions(ctx context.Context, runID string, events []ir.Resolution) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write resolutions: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resolutions (run_id, seq, pass, token, path, outcome, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write resolutions: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			runID, ev.Seq, ev.Pass, ev.Token, ev.Path, string(ev.Outcome), ev.Value,
		); err != nil {
			return fmt.Errorf("write resolution seq=%d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write resolutions: %w", err)
	}
	return nil
}
