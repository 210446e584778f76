package engine

import "fmt"

// QuotaEnforcer counts dispatched commands and enforces a maximum.
//
// A yBrainfuck loop can run forever; the quota is how a host bounds a run
// it does not trust. A limit of 0 disables the check.
type QuotaEnforcer struct {
	maxSteps int // Maximum allowed steps, 0 for unlimited
	current  int // Steps dispatched so far
}

// NewQuotaEnforcer creates a quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check counts one step and validates it against the limit.
// Returns a RuntimeError with ErrCodeQuotaExceeded once the limit is passed.
func (q *QuotaEnforcer) Check(offset int) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &RuntimeError{
			Code:    ErrCodeQuotaExceeded,
			Message: fmt.Sprintf("The run exceeded the step limit of %d.", q.maxSteps),
			Offset:  offset,
		}
	}
	return nil
}

// Current returns the number of steps counted.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the limit, 0 for unlimited.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}
