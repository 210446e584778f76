package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/ybf/internal/ir"
)

const runColumns = `id, seq, program_hash, source, input, max_steps, halt_reason, error_code, steps,
		transcript, transcript_hash, engine_version, language_version`

// ReadRun retrieves a single run by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]ir.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return collectRuns(rows)
}

// RunsForProgram returns every run of the given program hash in seq order.
func (s *Store) RunsForProgram(ctx context.Context, programHash string) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE program_hash = ?
		ORDER BY seq ASC
	`, programHash)
	if err != nil {
		return nil, fmt.Errorf("runs for program: %w", err)
	}
	return collectRuns(rows)
}

// LastSeq returns the highest seq in the store, or 0 when empty.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// HaltCounts returns the number of recorded runs per halt reason. Reasons
// with no runs are absent.
func (s *Store) HaltCounts(ctx context.Context) (map[ir.HaltReason]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT halt_reason, COUNT(*)
		FROM runs
		GROUP BY halt_reason
	`)
	if err != nil {
		return nil, fmt.Errorf("halt counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.HaltReason]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("scan halt count: %w", err)
		}
		counts[ir.HaltReason(reason)] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ir.RunRecord, error) {
	var (
		rec        ir.RunRecord
		reason     string
		transcript string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&rec.ProgramHash,
		&rec.Source,
		&rec.Input,
		&rec.MaxSteps,
		&reason,
		&rec.ErrorCode,
		&rec.Steps,
		&transcript,
		&rec.TranscriptHash,
		&rec.EngineVersion,
		&rec.LanguageVersion,
	)
	if err != nil {
		return ir.RunRecord{}, err
	}

	rec.HaltReason = ir.HaltReason(reason)
	rec.Transcript, err = unmarshalTranscript(transcript)
	if err != nil {
		return ir.RunRecord{}, err
	}
	return rec, nil
}

func collectRuns(rows *sql.Rows) ([]ir.RunRecord, error) {
	defer rows.Close()

	var runs []ir.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
