package tape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/ybf/internal/ir"
)

const (
	// MinPosition is the lowest valid position.
	MinPosition = 0

	// MaxPosition is the highest valid position.
	MaxPosition = ir.CellCount - 1

	cellModulo = 256
)

// Tape is the memory of a single run.
// It is owned by exactly one engine and never shared.
type Tape struct {
	cells    []byte
	position int
	vars     *Variables
}

// New creates a zeroed tape positioned at cell 0.
func New(vars *Variables) *Tape {
	return &Tape{
		cells: make([]byte, ir.CellCount),
		vars:  vars,
	}
}

// Position returns the current position. It may be out of range after an
// overrun fault.
func (t *Tape) Position() int {
	return t.position
}

// Variables returns the variable table the tape was built with.
func (t *Tape) Variables() *Variables {
	return t.vars
}

// InRange reports whether the position addresses a cell.
func (t *Tape) InRange() bool {
	return t.position >= MinPosition && t.position <= MaxPosition
}

// Forward moves the position up by n.
func (t *Tape) Forward(n int) error {
	t.position += n
	if t.position > MaxPosition {
		return overrunAbove(t.position)
	}
	return nil
}

// Backward moves the position down by n.
func (t *Tape) Backward(n int) error {
	t.position -= n
	if t.position < MinPosition {
		return overrunBelow(t.position)
	}
	return nil
}

// MoveTo jumps to the cell bound to name, through Forward or Backward so the
// same overrun check applies.
func (t *Tape) MoveTo(name string) error {
	target, ok := t.vars.Lookup(name)
	if !ok {
		return undefinedVariable(name, t.position)
	}
	diff := target - t.position
	if diff > 0 {
		return t.Forward(diff)
	}
	return t.Backward(-diff)
}

// Increment adds v modulo 256 to the current cell.
func (t *Tape) Increment(v int) {
	sum := int(t.cells[t.position]) + v%cellModulo
	if sum >= cellModulo {
		sum -= cellModulo
	}
	t.cells[t.position] = byte(sum)
}

// Decrement subtracts v modulo 256 from the current cell.
func (t *Tape) Decrement(v int) {
	diff := int(t.cells[t.position]) - v%cellModulo
	if diff < 0 {
		diff += cellModulo
	}
	t.cells[t.position] = byte(diff)
}

// ResetToZero clears the current cell.
func (t *Tape) ResetToZero() {
	t.cells[t.position] = 0
}

// Value returns the current cell.
func (t *Tape) Value() byte {
	return t.cells[t.position]
}

// Cell returns cell i. It panics when i is out of range.
func (t *Tape) Cell(i int) byte {
	return t.cells[i]
}

// ValueOf returns the cell bound to name.
func (t *Tape) ValueOf(name string) (byte, bool) {
	i, ok := t.vars.Lookup(name)
	if !ok {
		return 0, false
	}
	return t.cells[i], true
}

// ReadInput stores the next input character into the current cell.
// Characters above 255 are reduced modulo 256.
func (t *Tape) ReadInput(in Input) error {
	r, ok := in.Next()
	if !ok {
		return eofReached(t.position)
	}
	t.cells[t.position] = byte(r % cellModulo)
	return nil
}

// Char renders the current cell as a character, repeated.
func (t *Tape) Char(repeat int) string {
	if repeat <= 0 {
		return ""
	}
	return strings.Repeat(string(rune(t.Value())), repeat)
}

// Raw renders the current cell as a decimal number and a line break.
func (t *Tape) Raw() string {
	return strconv.Itoa(int(t.Value())) + "\n"
}

// Structure renders a dump of the position, the current value and every
// non-zero named cell in table order.
func (t *Tape) Structure() string {
	name, ok := t.vars.NameAt(t.position)
	if !ok {
		name = "unnamed"
	}

	var b strings.Builder
	b.WriteString("---------- Current Memory Structure ----------\n")
	fmt.Fprintf(&b, "Position: %d (%s)\n", t.position, name)
	fmt.Fprintf(&b, "   Value: %d\n", t.Value())
	b.WriteString("  Memory: {")
	for i, n := range t.vars.names {
		if v := t.cells[i]; v != 0 {
			fmt.Fprintf(&b, "'%s': %d, ", n, v)
		}
	}
	b.WriteString("}\n")
	b.WriteString("----------------------------------------------\n")
	return b.String()
}
