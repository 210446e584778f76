// Package preproc turns raw yBrainfuck source into an ir.Program.
//
// Every line is trimmed, cut at the first `#`, and checked for a `!name`
// declaration. Declaration problems are accumulated across the whole source
// and returned together; none of them stops the scan.
package preproc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/tape"
)

const (
	commentMarker     = "#"
	declarationMarker = "!"
)

// ErrorCode categorizes declaration errors.
type ErrorCode string

const (
	// ErrCodeMalformedName indicates a name that is not [A-Za-z][A-Za-z0-9_]+.
	ErrCodeMalformedName ErrorCode = "MALFORMED_NAME"

	// ErrCodeDuplicateName indicates a name declared twice.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"

	// ErrCodeTooManyNames indicates more declarations than free cells.
	ErrCodeTooManyNames ErrorCode = "TOO_MANY_NAMES"
)

// DeclarationError describes one rejected `!name` line.
type DeclarationError struct {
	Code ErrorCode `json:"code"`
	Name string    `json:"name"`
	Line int       `json:"line"` // 1-based
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	switch e.Code {
	case ErrCodeDuplicateName:
		return fmt.Sprintf("The variable [ %s ] (line: %d) is already defined.", e.Name, e.Line)
	case ErrCodeTooManyNames:
		return fmt.Sprintf("The variable [ %s ] (line: %d) does not fit on the tape.", e.Name, e.Line)
	default:
		return fmt.Sprintf("The variable name [ %s ] (line: %d) is invalid.", e.Name, e.Line)
	}
}

// ErrorList is every declaration error of a source, in line order.
type ErrorList []*DeclarationError

// Error implements the error interface.
func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// AsErrorList extracts the declaration errors from err.
func AsErrorList(err error) (ErrorList, bool) {
	var l ErrorList
	if errors.As(err, &l) {
		return l, true
	}
	return nil, false
}

// SplitLines splits source text on "\n", dropping a trailing "\r" from each
// line.
func SplitLines(source string) []string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Process preprocesses source text. See ProcessLines.
func Process(source string) (*ir.Program, error) {
	return ProcessLines(SplitLines(source))
}

// ProcessLines preprocesses a program given as lines.
//
// On success the program holds the declared names and the merged stream.
// If any declaration was rejected, the returned error is an ErrorList and
// the program is nil.
func ProcessLines(lines []string) (*ir.Program, error) {
	var (
		errs     ErrorList
		declared []string
		seen     = make(map[string]bool)
		out      = make([]string, len(lines))
	)

	for i, raw := range lines {
		lineNumber := i + 1
		line := strings.TrimSpace(raw)

		if j := strings.Index(line, commentMarker); j != -1 {
			line = line[:j]
		}

		if !strings.HasPrefix(line, declarationMarker) {
			out[i] = line
			continue
		}

		// Declaration lines never reach the stream.
		name := strings.TrimSpace(strings.TrimPrefix(line, declarationMarker))
		switch {
		case !tape.IsWellFormedName(name):
			errs = append(errs, &DeclarationError{Code: ErrCodeMalformedName, Name: name, Line: lineNumber})
		case seen[name]:
			errs = append(errs, &DeclarationError{Code: ErrCodeDuplicateName, Name: name, Line: lineNumber})
		case len(declared) >= tape.MaxDeclared:
			errs = append(errs, &DeclarationError{Code: ErrCodeTooManyNames, Name: name, Line: lineNumber})
		default:
			seen[name] = true
			declared = append(declared, name)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	stream := strings.Join(out, " ") + strings.Repeat(" ", ir.StreamPadding)
	return &ir.Program{
		Variables: declared,
		Stream:    []rune(stream),
	}, nil
}
