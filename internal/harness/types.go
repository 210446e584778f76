package harness

import (
	"github.com/roach88/ybf/internal/ir"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Reason is how the run ended.
	Reason ir.HaltReason `json:"halt_reason"`

	// ErrorCode is the code of the error that ended the run, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Steps is the number of commands dispatched.
	Steps int `json:"steps"`

	// Transcript holds everything the run emitted.
	Transcript *ir.Transcript `json:"transcript"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:       name,
		Pass:       true,
		Transcript: ir.NewTranscript(),
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
