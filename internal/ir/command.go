package ir

// Command is the closed set of command tags the engine dispatches on.
// Every rune of the instruction stream classifies to exactly one tag.
type Command uint8

const (
	CmdInvalid Command = iota
	CmdNop
	CmdHalt
	CmdPrintRaw
	CmdDump
	CmdForward
	CmdBackward
	CmdIncrement
	CmdDecrement
	CmdPrint
	CmdRead
	CmdLoopOpen
	CmdLoopClose
	CmdNumber     // first digit of a repeat-count literal
	CmdIdentifier // first letter of a variable name

	numCommands
)

// NumCommands is the size of a dispatch table indexed by Command.
const NumCommands = int(numCommands)

var commandNames = [...]string{
	CmdInvalid:    "invalid",
	CmdNop:        "nop",
	CmdHalt:       "halt",
	CmdPrintRaw:   "print_raw",
	CmdDump:       "dump",
	CmdForward:    "forward",
	CmdBackward:   "backward",
	CmdIncrement:  "increment",
	CmdDecrement:  "decrement",
	CmdPrint:      "print",
	CmdRead:       "read",
	CmdLoopOpen:   "loop_open",
	CmdLoopClose:  "loop_close",
	CmdNumber:     "number",
	CmdIdentifier: "identifier",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// Classify maps a single stream rune to its command tag.
func Classify(r rune) Command {
	switch r {
	case ' ', '{', '}':
		return CmdNop
	case '~':
		return CmdHalt
	case '?':
		return CmdPrintRaw
	case '%':
		return CmdDump
	case '>':
		return CmdForward
	case '<':
		return CmdBackward
	case '+':
		return CmdIncrement
	case '-':
		return CmdDecrement
	case '.':
		return CmdPrint
	case ',':
		return CmdRead
	case '[':
		return CmdLoopOpen
	case ']':
		return CmdLoopClose
	}
	switch {
	case IsDigit(r):
		return CmdNumber
	case IsLetter(r):
		return CmdIdentifier
	}
	return CmdInvalid
}

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsLetter reports whether r is an ASCII letter.
func IsLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// IsIdentifierRune reports whether r may continue a variable name.
func IsIdentifierRune(r rune) bool {
	return IsLetter(r) || IsDigit(r) || r == '_'
}
