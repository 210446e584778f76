package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/ybf/internal/tape"
)

// RuntimeError represents an execution error that stopped a run.
//
// Runtime errors include:
//   - Buffer overrun: the position left the tape
//   - Undefined variable: a jump to an unbound name
//   - EOF reached: `,` after the input was exhausted
//   - Invalid command: a rune with no meaning, or an oversized repeat count
//   - Unbalanced loop: `]` without `[`, or `[` without `]` when skipped
//   - Step quota exceeded: the run dispatched more commands than allowed
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is the user-visible diagnostic.
	Message string

	// Offset is the stream offset of the command that failed.
	Offset int

	// Err is the underlying tape fault, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeBufferOverrun     RuntimeErrorCode = RuntimeErrorCode(tape.FaultOverrun)
	ErrCodeUndefinedVariable RuntimeErrorCode = RuntimeErrorCode(tape.FaultUndefinedVariable)
	ErrCodeEOFReached        RuntimeErrorCode = RuntimeErrorCode(tape.FaultEOF)

	// ErrCodeInvalidCommand indicates a rune that is not a command.
	ErrCodeInvalidCommand RuntimeErrorCode = "INVALID_COMMAND"

	// ErrCodeUnbalancedLoop indicates a bracket without its partner.
	ErrCodeUnbalancedLoop RuntimeErrorCode = "UNBALANCED_LOOP"

	// ErrCodeQuotaExceeded indicates the run exceeded its step limit.
	ErrCodeQuotaExceeded RuntimeErrorCode = "STEP_QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (offset=%d)", e.Code, e.Message, e.Offset)
}

// Unwrap returns the underlying tape fault.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// CodeOf returns the runtime error code of err, or "" if err is not a
// RuntimeError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsOverrun returns true if the error is a buffer overrun.
func IsOverrun(err error) bool {
	return CodeOf(err) == ErrCodeBufferOverrun
}

// IsQuotaError returns true if the error is a step quota error.
func IsQuotaError(err error) bool {
	return CodeOf(err) == ErrCodeQuotaExceeded
}

// newFaultError wraps a tape fault raised by the command at offset.
func newFaultError(offset int, err error) *RuntimeError {
	var f *tape.Fault
	if errors.As(err, &f) {
		return &RuntimeError{
			Code:    RuntimeErrorCode(f.Code),
			Message: f.Message,
			Offset:  offset,
			Err:     f,
		}
	}
	return &RuntimeError{
		Code:    ErrCodeInvalidCommand,
		Message: err.Error(),
		Offset:  offset,
		Err:     err,
	}
}

func newInvalidCommandError(offset int, r rune) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidCommand,
		Message: fmt.Sprintf("The command [ %c ] is invalid.", r),
		Offset:  offset,
	}
}

func newRepeatCountError(offset int, digits string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidCommand,
		Message: fmt.Sprintf("The repeat count [ %s ] is too large.", digits),
		Offset:  offset,
	}
}

func newUnmatchedOpenError(offset int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnbalancedLoop,
		Message: fmt.Sprintf("The loop opened at offset %d has no matching [ ] ].", offset),
		Offset:  offset,
	}
}

func newUnmatchedCloseError(offset int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnbalancedLoop,
		Message: fmt.Sprintf("The [ ] ] at offset %d has no matching [ [ ].", offset),
		Offset:  offset,
	}
}
