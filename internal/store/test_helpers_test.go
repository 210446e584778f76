package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/ybf/internal/ir"
)

// createTestStore creates a new store in a temp directory.
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

// createTestRun creates a run record whose hashes match its content.
func createTestRun(t *testing.T, id, source, input string) ir.RunRecord {
	t.Helper()
	tr := ir.NewTranscript()
	_ = tr.Output("A")
	_ = tr.EndOfProgram()

	transcriptHash, err := ir.TranscriptHash(tr)
	if err != nil {
		t.Fatalf("TranscriptHash() failed: %v", err)
	}

	return ir.RunRecord{
		ID:              id,
		ProgramHash:     ir.MustProgramHash(source, input),
		Source:          source,
		Input:           input,
		HaltReason:      ir.HaltEnd,
		Steps:           3,
		Transcript:      tr,
		TranscriptHash:  transcriptHash,
		EngineVersion:   ir.EngineVersion,
		LanguageVersion: ir.LanguageVersion,
	}
}
