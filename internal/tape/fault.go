package tape

import (
	"errors"
	"fmt"
)

// FaultCode categorizes tape faults.
type FaultCode string

const (
	// FaultOverrun indicates the position moved outside the tape.
	FaultOverrun FaultCode = "BUFFER_OVERRUN"

	// FaultUndefinedVariable indicates a jump to a name with no binding.
	FaultUndefinedVariable FaultCode = "UNDEFINED_VARIABLE"

	// FaultEOF indicates `,` ran after the input was exhausted.
	FaultEOF FaultCode = "EOF_REACHED"
)

// Fault is an error raised by a tape operation.
type Fault struct {
	Code     FaultCode
	Message  string
	Position int    // position after the failed operation
	Name     string // variable name, for FaultUndefinedVariable
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return f.Message
}

// IsFault reports whether err is a tape fault with the given code.
// Uses errors.As to handle wrapped errors.
func IsFault(err error, code FaultCode) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code == code
	}
	return false
}

func overrunAbove(position int) *Fault {
	return &Fault{
		Code:     FaultOverrun,
		Message:  fmt.Sprintf("Buffer overrun occurred. The current position [ %d ] exceeds `%d`.", position, MaxPosition),
		Position: position,
	}
}

func overrunBelow(position int) *Fault {
	return &Fault{
		Code:     FaultOverrun,
		Message:  fmt.Sprintf("Buffer overrun occurred. The current position has the negative value [ %d ].", position),
		Position: position,
	}
}

func undefinedVariable(name string, position int) *Fault {
	return &Fault{
		Code:     FaultUndefinedVariable,
		Message:  fmt.Sprintf("The variable [ %s ] is not defined.", name),
		Position: position,
		Name:     name,
	}
}

func eofReached(position int) *Fault {
	return &Fault{
		Code:     FaultEOF,
		Message:  "The [ , ] command is specified while EOF is already reached.",
		Position: position,
	}
}
