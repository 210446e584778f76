package ir

// RunRecord is the durable record of one run.
//
// Seq orders records; it is assigned by the store and never derived from
// wall time. ProgramHash and TranscriptHash make a record checkable: running
// Source on Input again must reproduce TranscriptHash.
type RunRecord struct {
	ID              string      `json:"id"`
	Seq             int64       `json:"seq"`
	ProgramHash     string      `json:"program_hash"`
	Source          string      `json:"source"`
	Input           string      `json:"input"`
	MaxSteps        int         `json:"max_steps"`
	HaltReason      HaltReason  `json:"halt_reason"`
	ErrorCode       string      `json:"error_code,omitempty"`
	Steps           int         `json:"steps"`
	Transcript      *Transcript `json:"transcript"`
	TranscriptHash  string      `json:"transcript_hash"`
	EngineVersion   string      `json:"engine_version"`
	LanguageVersion string      `json:"language_version"`
}
