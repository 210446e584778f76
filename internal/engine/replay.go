package engine

// # Replay
//
// A recorded run is replayable because a run is a pure function of three
// things: the source, the input the program actually consumed, and the step
// limit. The CLI records the consumed input (tape.Recorder), never the whole
// input stream, so the stored input is exactly what replay must feed back.
//
// Replay re-executes the stored program on a StringInput built from the
// stored input and compares:
//
//   - ProgramHash(source, input) against the stored program hash. A mismatch
//     means the stored row was edited after recording.
//   - The halt reason.
//   - TranscriptHash of the fresh transcript against the stored one.
//
// A run replays when all three agree. Engine versions are reported but never
// compared: a newer engine that still reproduces the transcript is fine.

import (
	"context"
	"fmt"

	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/tape"
)

// ReplayReport compares a recorded run with a fresh execution of it.
type ReplayReport struct {
	RunID           string        `json:"run_id"`
	RecordedHalt    ir.HaltReason `json:"recorded_halt"`
	ReplayedHalt    ir.HaltReason `json:"replayed_halt"`
	RecordedHash    string        `json:"recorded_transcript_hash"`
	ReplayedHash    string        `json:"replayed_transcript_hash"`
	ProgramIntact   bool          `json:"program_intact"`
	Deterministic   bool          `json:"deterministic"`
	RecordedVersion string        `json:"recorded_engine_version"`
	ReplayedVersion string        `json:"replayed_engine_version"`

	// Transcript is the replayed transcript.
	Transcript *ir.Transcript `json:"-"`
}

// Replay re-executes rec with its recorded step limit and input and reports
// whether the result matches what was recorded. An error is returned only
// for host failures; a mismatch is reported through Deterministic.
func Replay(ctx context.Context, rec ir.RunRecord) (*ReplayReport, error) {
	programHash, err := ir.ProgramHash(rec.Source, rec.Input)
	if err != nil {
		return nil, fmt.Errorf("hash program: %w", err)
	}

	tr := ir.NewTranscript()
	res, err := New(WithMaxSteps(rec.MaxSteps)).RunSource(ctx, rec.Source, tape.NewStringInput(rec.Input), tr)
	if err != nil {
		return nil, err
	}

	replayedHash, err := ir.TranscriptHash(tr)
	if err != nil {
		return nil, fmt.Errorf("hash transcript: %w", err)
	}

	report := &ReplayReport{
		RunID:           rec.ID,
		RecordedHalt:    rec.HaltReason,
		ReplayedHalt:    res.Reason,
		RecordedHash:    rec.TranscriptHash,
		ReplayedHash:    replayedHash,
		ProgramIntact:   programHash == rec.ProgramHash,
		RecordedVersion: rec.EngineVersion,
		ReplayedVersion: ir.EngineVersion,
		Transcript:      tr,
	}
	report.Deterministic = report.ProgramIntact &&
		report.RecordedHalt == report.ReplayedHalt &&
		report.RecordedHash == report.ReplayedHash

	return report, nil
}
