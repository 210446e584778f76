package ir

// CellCount is the number of cells on the tape.
const CellCount = 30000

// StreamPadding is the number of filler spaces appended to the instruction
// stream. Lookahead for `[-]` and token scanning reads at most two runes past
// the current one, so the padding keeps every such read in range.
const StreamPadding = 5

// BuiltinVariables are bound to cells 0..51 in this order.
const BuiltinVariables = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Program is the output of the preprocessor.
//
// INVARIANTS:
//   - Variables holds user-declared names only, in declaration order
//   - Variables are unique and well-formed
//   - Stream ends with StreamPadding spaces
type Program struct {
	Variables []string `json:"variables"`
	Stream    []rune   `json:"-"`
}

// Source returns the instruction stream as a string, padding included.
func (p *Program) Source() string {
	return string(p.Stream)
}

// HaltReason tells how a run ended. A run ends in exactly one reason.
type HaltReason string

const (
	// HaltEnd means the scan reached the end of the instruction stream.
	HaltEnd HaltReason = "end"

	// HaltExplicit means the program executed `~`.
	HaltExplicit HaltReason = "halt"

	// HaltError means an execution error stopped the run.
	HaltError HaltReason = "error"

	// HaltRejected means declaration errors stopped the run before any
	// instruction executed.
	HaltRejected HaltReason = "rejected"
)

// Failed reports whether the reason is an error outcome.
func (h HaltReason) Failed() bool {
	return h == HaltError || h == HaltRejected
}
