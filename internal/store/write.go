package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/ybf/internal/ir"
)

// ErrRunExists is returned when a record with the same ID is already stored.
var ErrRunExists = errors.New("run already recorded")

// WriteRun appends a run record and returns the seq assigned to it.
//
// The seq is one past the current maximum and is allocated in the same
// transaction as the insert. rec.Seq is ignored on input.
func (s *Store) WriteRun(ctx context.Context, rec ir.RunRecord) (int64, error) {
	transcriptJSON, err := marshalTranscript(rec.Transcript)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, program_hash, source, input, max_steps, halt_reason, error_code, steps,
		 transcript, transcript_hash, engine_version, language_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		seq,
		rec.ProgramHash,
		rec.Source,
		rec.Input,
		rec.MaxSteps,
		string(rec.HaltReason),
		rec.ErrorCode,
		rec.Steps,
		transcriptJSON,
		rec.TranscriptHash,
		rec.EngineVersion,
		rec.LanguageVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write run: rows affected: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("write run %s: %w", rec.ID, ErrRunExists)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}
