// Package ctrans translates a preprocessed yBrainfuck program into a
// standalone C program.
//
// The generated program behaves like the interpreter for every program the
// translator accepts: the same overrun and EOF diagnostics on stderr, the
// same `?` and `%` output, cell values above 127 written as UTF-8. Two
// differences are inherent to a static translation:
//   - invalid commands, undefined variables and unbalanced brackets are
//     rejected up front instead of when execution reaches them
//   - `,` reads bytes, not Unicode characters
//
// Adjacent `+` and `-` commands are folded into a single statement.
package ctrans

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/tape"
)

// Error is a translation failure at a stream offset.
type Error struct {
	Offset  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Translate generates C source for prog.
func Translate(prog *ir.Program) (string, error) {
	vars, err := tape.NewVariables(prog.Variables)
	if err != nil {
		return "", fmt.Errorf("build variable table: %w", err)
	}

	t := &translator{
		stream: prog.Stream,
		vars:   vars,
		body:   &writer{indent: 1},
	}
	if err := t.translate(); err != nil {
		return "", err
	}

	out := &writer{}
	t.prelude(out)
	out.put("int main(void) {")
	out.put("")
	out.b.WriteString(t.body.b.String())
	out.put("")
	out.put("    return 0;")
	out.put("}")
	return out.b.String(), nil
}

// writer accumulates indented C lines.
type writer struct {
	b      strings.Builder
	indent int
}

func (w *writer) put(line string) {
	if line != "" {
		w.b.WriteString(strings.Repeat("    ", w.indent))
	}
	w.b.WriteString(line)
	w.b.WriteByte('\n')
}

func (w *writer) putf(format string, args ...any) {
	w.put(fmt.Sprintf(format, args...))
}

type translator struct {
	stream []rune
	vars   *tape.Variables
	body   *writer

	pc     int
	repeat int
	loops  []int

	// pending folds adjacent + and - into one signed delta.
	pending    int
	hasPending bool

	usesDump  bool
	usesInput bool
}

func (t *translator) translate() error {
	t.repeat = 1
	for t.pc < len(t.stream) {
		r := t.stream[t.pc]
		cmd := ir.Classify(r)

		switch cmd {
		case ir.CmdIncrement, ir.CmdDecrement, ir.CmdNumber:
		default:
			t.flush()
		}

		next := t.pc + 1
		switch cmd {
		case ir.CmdNop:
		case ir.CmdHalt:
			t.body.put("return 0;")
		case ir.CmdPrintRaw:
			t.body.put(`printf("%d\n", data[pos]);`)
		case ir.CmdDump:
			t.usesDump = true
			t.body.put("dump();")
		case ir.CmdForward:
			t.body.putf("forward(%d);", t.repeat)
		case ir.CmdBackward:
			t.body.putf("backward(%d);", t.repeat)
		case ir.CmdIncrement:
			t.fold(t.repeat % 256)
		case ir.CmdDecrement:
			t.fold(-(t.repeat % 256))
		case ir.CmdPrint:
			if t.repeat == 1 {
				t.body.put("emit(data[pos]);")
			} else if t.repeat > 1 {
				t.body.putf("for (int i = 0; i < %d; i++) emit(data[pos]);", t.repeat)
			}
		case ir.CmdRead:
			t.usesInput = true
			t.body.put("read_input();")
		case ir.CmdLoopOpen:
			if t.peek(1) == '-' && t.peek(2) == ']' {
				t.body.put("data[pos] = 0;")
				next = t.pc + 3
				break
			}
			t.loops = append(t.loops, t.pc)
			t.body.put("while (data[pos]) {")
			t.body.indent++
		case ir.CmdLoopClose:
			if len(t.loops) == 0 {
				return &Error{Offset: t.pc, Message: "The [ ] ] has no matching [ [ ]."}
			}
			t.loops = t.loops[:len(t.loops)-1]
			t.body.indent--
			t.body.put("}")
		case ir.CmdNumber:
			end := t.scan(ir.IsDigit)
			digits := string(t.stream[t.pc:end])
			n, err := strconv.ParseInt(digits, 10, 32)
			if err != nil {
				return &Error{Offset: t.pc, Message: fmt.Sprintf("The repeat count [ %s ] is too large.", digits)}
			}
			t.repeat = int(n)
			t.pc = end
			continue
		case ir.CmdIdentifier:
			end := t.scan(ir.IsIdentifierRune)
			name := string(t.stream[t.pc:end])
			idx, ok := t.vars.Lookup(name)
			if !ok {
				return &Error{Offset: t.pc, Message: fmt.Sprintf("The variable [ %s ] is not defined.", name)}
			}
			t.body.putf("pos = %d; /* %s */", idx, name)
			next = end
		default:
			return &Error{Offset: t.pc, Message: fmt.Sprintf("The command [ %c ] is invalid.", r)}
		}

		t.repeat = 1
		t.pc = next
	}
	t.flush()

	if n := len(t.loops); n > 0 {
		return &Error{Offset: t.loops[n-1], Message: "The [ [ ] has no matching [ ] ]."}
	}
	return nil
}

func (t *translator) peek(k int) rune {
	if i := t.pc + k; i < len(t.stream) {
		return t.stream[i]
	}
	return 0
}

// scan returns the end offset of the token starting at pc.
func (t *translator) scan(continues func(rune) bool) int {
	end := t.pc + 1
	for end < len(t.stream) && continues(t.stream[end]) {
		end++
	}
	return end
}

func (t *translator) fold(delta int) {
	t.pending += delta
	t.hasPending = true
}

func (t *translator) flush() {
	if !t.hasPending {
		return
	}
	delta := ((t.pending % 256) + 256) % 256
	switch {
	case delta == 0:
	case delta == 1:
		t.body.put("++data[pos];")
	case delta == 255:
		t.body.put("--data[pos];")
	default:
		t.body.putf("data[pos] += %d;", delta)
	}
	t.pending = 0
	t.hasPending = false
}

// prelude writes includes, the tape and the helper functions.
func (t *translator) prelude(w *writer) {
	w.put("#include <stdio.h>")
	w.put("#include <stdlib.h>")
	w.put("")
	w.putf("#define CELL_COUNT %d", ir.CellCount)
	w.put("")
	w.put("static unsigned char data[CELL_COUNT];")
	w.put("static long pos = 0;")
	w.put("")
	w.put("static void forward(long n) {")
	w.put("    pos += n;")
	w.put("    if (pos > CELL_COUNT - 1) {")
	w.put("        fflush(stdout);")
	w.put("        fprintf(stderr, \"Buffer overrun occurred. The current position [ %ld ] exceeds `%d`.\\n\", pos, CELL_COUNT - 1);")
	w.put("        exit(1);")
	w.put("    }")
	w.put("}")
	w.put("")
	w.put("static void backward(long n) {")
	w.put("    pos -= n;")
	w.put("    if (pos < 0) {")
	w.put("        fflush(stdout);")
	w.put("        fprintf(stderr, \"Buffer overrun occurred. The current position has the negative value [ %ld ].\\n\", pos);")
	w.put("        exit(1);")
	w.put("    }")
	w.put("}")
	w.put("")
	w.put("static void emit(unsigned char v) {")
	w.put("    if (v < 0x80) {")
	w.put("        putchar(v);")
	w.put("    } else {")
	w.put("        putchar(0xC0 | (v >> 6));")
	w.put("        putchar(0x80 | (v & 0x3F));")
	w.put("    }")
	w.put("}")

	if t.usesInput {
		w.put("")
		w.put("static void read_input(void) {")
		w.put("    int c = getchar();")
		w.put("    if (c == EOF) {")
		w.put("        fflush(stdout);")
		w.put("        fprintf(stderr, \"The [ , ] command is specified while EOF is already reached.\\n\");")
		w.put("        exit(1);")
		w.put("    }")
		w.put("    data[pos] = (unsigned char)c;")
		w.put("}")
	}

	if t.usesDump {
		names := t.vars.Names()
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = strconv.Quote(n)
		}
		w.put("")
		w.putf("static const char *const names[%d] = {", len(names))
		for i := 0; i < len(quoted); i += 13 {
			end := i + 13
			if end > len(quoted) {
				end = len(quoted)
			}
			w.put("    " + strings.Join(quoted[i:end], ", ") + ",")
		}
		w.put("};")
		w.put("")
		w.put("static void dump(void) {")
		w.put("    printf(\"---------- Current Memory Structure ----------\\n\");")
		w.putf("    printf(\"Position: %%ld (%%s)\\n\", pos, pos < %d ? names[pos] : \"unnamed\");", len(names))
		w.put("    printf(\"   Value: %d\\n\", data[pos]);")
		w.put("    printf(\"  Memory: {\");")
		w.putf("    for (int i = 0; i < %d; i++) {", len(names))
		w.put("        if (data[i]) {")
		w.put("            printf(\"'%s': %d, \", names[i], data[i]);")
		w.put("        }")
		w.put("    }")
		w.put("    printf(\"}\\n\");")
		w.put("    printf(\"----------------------------------------------\\n\");")
		w.put("}")
	}
	w.put("")
}
