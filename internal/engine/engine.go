package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/preproc"
	"github.com/roach88/ybf/internal/tape"
)

// ctxCheckInterval is how many steps run between context checks.
const ctxCheckInterval = 4096

// maxOutputChunk bounds the bytes passed to one Sink.Output call, so a
// large repeat count on `.` never materialises its whole output at once.
const maxOutputChunk = 64 << 10

// Engine executes programs. An Engine holds configuration only; every call
// to Run builds its own tape and execution state, so one Engine may serve
// many runs, including concurrent ones.
type Engine struct {
	maxSteps int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps sets the maximum number of dispatched commands per run.
//
// Default: 0 (unlimited)
// Use WithMaxSteps(10) for testing quota enforcement.
func WithMaxSteps(maxSteps int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// New creates an Engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSteps returns the configured step limit, 0 for unlimited.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// Result describes how a run ended.
type Result struct {
	// Reason is the single terminal state of the run.
	Reason ir.HaltReason

	// Err is the RuntimeError for HaltError, the preproc.ErrorList for
	// HaltRejected, and nil otherwise.
	Err error

	// Steps is the number of commands dispatched.
	Steps int

	// Tape is the final memory. Nil when the program was rejected.
	Tape *tape.Tape
}

// ErrorCode returns the code of the error that ended the run, or "". A
// rejected program reports the code of its first declaration error.
func (r *Result) ErrorCode() string {
	if code := CodeOf(r.Err); code != "" {
		return string(code)
	}
	if list, ok := preproc.AsErrorList(r.Err); ok && len(list) > 0 {
		return string(list[0].Code)
	}
	return ""
}

// RunSource preprocesses source and runs it.
//
// Declaration errors are all written to the sink as diagnostics and the
// run ends with HaltRejected before any instruction executes.
func (e *Engine) RunSource(ctx context.Context, source string, in tape.Input, sink ir.Sink) (*Result, error) {
	prog, err := preproc.Process(source)
	if err != nil {
		list, ok := preproc.AsErrorList(err)
		if !ok {
			return nil, fmt.Errorf("preprocess: %w", err)
		}
		for _, declErr := range list {
			if werr := sink.Diagnostic(declErr.Error()); werr != nil {
				return nil, fmt.Errorf("write diagnostic: %w", werr)
			}
		}
		slog.DebugContext(ctx, "program rejected", "errors", len(list))
		return &Result{Reason: ir.HaltRejected, Err: list}, nil
	}
	return e.Run(ctx, prog, in, sink)
}

// Run executes a preprocessed program.
//
// The returned error is non-nil only when the host side fails: the sink
// refuses a write or ctx is cancelled. Program errors are reported through
// the sink and Result, never as a Go error.
func (e *Engine) Run(ctx context.Context, prog *ir.Program, in tape.Input, sink ir.Sink) (*Result, error) {
	vars, err := tape.NewVariables(prog.Variables)
	if err != nil {
		return nil, fmt.Errorf("build variable table: %w", err)
	}

	r := &run{
		ctx:    ctx,
		stream: prog.Stream,
		repeat: 1,
		tape:   tape.New(vars),
		in:     in,
		sink:   sink,
		quota:  NewQuotaEnforcer(e.maxSteps),
	}

	slog.DebugContext(ctx, "run starting", "stream_len", len(r.stream), "variables", len(prog.Variables), "max_steps", e.maxSteps)

	reason, err := r.loop(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Reason: reason,
		Steps:  r.quota.Current(),
		Tape:   r.tape,
	}
	if r.failure != nil {
		result.Err = r.failure
	}

	slog.DebugContext(ctx, "run finished", "reason", reason, "steps", result.Steps, "position", r.tape.Position())
	return result, nil
}

// run is the mutable context of one execution.
type run struct {
	ctx    context.Context
	stream []rune
	pc     int // offset of the rune being dispatched
	next   int // offset to dispatch after the current command
	repeat int
	loops  []int // offsets of open `[` runes

	tape  *tape.Tape
	in    tape.Input
	sink  ir.Sink
	quota *QuotaEnforcer

	halted  bool
	failure *RuntimeError
}

// handler executes the command at r.pc. A returned *RuntimeError stops the
// run with a diagnostic; any other error aborts it as a host failure.
type handler func(r *run) error

// dispatch maps every command tag to its handler.
var dispatch = [ir.NumCommands]handler{
	ir.CmdInvalid:    (*run).invalid,
	ir.CmdNop:        (*run).nop,
	ir.CmdHalt:       (*run).halt,
	ir.CmdPrintRaw:   (*run).printRaw,
	ir.CmdDump:       (*run).dump,
	ir.CmdForward:    (*run).forward,
	ir.CmdBackward:   (*run).backward,
	ir.CmdIncrement:  (*run).increment,
	ir.CmdDecrement:  (*run).decrement,
	ir.CmdPrint:      (*run).print,
	ir.CmdRead:       (*run).read,
	ir.CmdLoopOpen:   (*run).loopOpen,
	ir.CmdLoopClose:  (*run).loopClose,
	ir.CmdNumber:     (*run).number,
	ir.CmdIdentifier: (*run).identifier,
}

func (r *run) loop(ctx context.Context) (ir.HaltReason, error) {
	for r.pc < len(r.stream) {
		if r.quota.Current()%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
		}

		if err := r.quota.Check(r.pc); err != nil {
			return r.fail(err)
		}

		cmd := ir.Classify(r.stream[r.pc])
		r.next = r.pc + 1
		if err := dispatch[cmd](r); err != nil {
			return r.fail(err)
		}
		if r.halted {
			return ir.HaltExplicit, nil
		}
		// A repeat count survives only into the next command.
		if cmd != ir.CmdNumber {
			r.repeat = 1
		}
		r.pc = r.next
	}

	if err := r.sink.EndOfProgram(); err != nil {
		return "", fmt.Errorf("write end marker: %w", err)
	}
	return ir.HaltEnd, nil
}

// fail records a program error and writes its diagnostic. Host errors pass
// through unchanged.
func (r *run) fail(err error) (ir.HaltReason, error) {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return "", err
	}
	r.failure = re
	if werr := r.sink.Diagnostic(re.Message); werr != nil {
		return "", fmt.Errorf("write diagnostic: %w", werr)
	}
	return ir.HaltError, nil
}

// peek returns the rune k positions past the current one, or 0 past the end.
func (r *run) peek(k int) rune {
	if i := r.pc + k; i < len(r.stream) {
		return r.stream[i]
	}
	return 0
}

func (r *run) fault(err error) error {
	if err == nil {
		return nil
	}
	return newFaultError(r.pc, err)
}

func (r *run) output(text string) error {
	if err := r.sink.Output(text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (r *run) invalid() error {
	return newInvalidCommandError(r.pc, r.stream[r.pc])
}

func (r *run) nop() error {
	return nil
}

func (r *run) halt() error {
	r.halted = true
	return nil
}

func (r *run) printRaw() error {
	return r.output(r.tape.Raw())
}

func (r *run) dump() error {
	return r.output(r.tape.Structure())
}

func (r *run) forward() error {
	return r.fault(r.tape.Forward(r.repeat))
}

func (r *run) backward() error {
	return r.fault(r.tape.Backward(r.repeat))
}

func (r *run) increment() error {
	r.tape.Increment(r.repeat)
	return nil
}

func (r *run) decrement() error {
	r.tape.Decrement(r.repeat)
	return nil
}

// print emits the current cell repeat times in chunks of at most
// maxOutputChunk bytes, checking for cancellation between chunks.
func (r *run) print() error {
	if r.repeat <= 0 {
		return nil
	}
	char := r.tape.Char(1)
	perChunk := max(1, maxOutputChunk/len(char))
	for left := r.repeat; left > 0; {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		n := min(left, perChunk)
		if err := r.output(strings.Repeat(char, n)); err != nil {
			return err
		}
		left -= n
	}
	return nil
}

func (r *run) read() error {
	return r.fault(r.tape.ReadInput(r.in))
}

// loopOpen handles `[`: the `[-]` reset idiom, entering the body, or
// skipping to the matching `]`.
func (r *run) loopOpen() error {
	if r.peek(1) == '-' && r.peek(2) == ']' {
		r.tape.ResetToZero()
		r.next = r.pc + 3
		return nil
	}

	if r.tape.Value() != 0 {
		r.loops = append(r.loops, r.pc)
		return nil
	}

	depth := 1
	for i := r.pc + 1; i < len(r.stream); i++ {
		switch r.stream[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				r.next = i + 1
				return nil
			}
		}
	}
	return newUnmatchedOpenError(r.pc)
}

// loopClose handles `]` by jumping back to its `[`, which re-checks the cell.
func (r *run) loopClose() error {
	n := len(r.loops)
	if n == 0 {
		return newUnmatchedCloseError(r.pc)
	}
	r.next = r.loops[n-1]
	r.loops = r.loops[:n-1]
	return nil
}

// number scans a repeat-count literal.
func (r *run) number() error {
	end := r.pc + 1
	for end < len(r.stream) && ir.IsDigit(r.stream[end]) {
		end++
	}
	digits := string(r.stream[r.pc:end])
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return newRepeatCountError(r.pc, digits)
	}
	r.repeat = int(n)
	r.next = end
	return nil
}

// identifier scans a variable name and jumps to its cell.
func (r *run) identifier() error {
	end := r.pc + 1
	for end < len(r.stream) && ir.IsIdentifierRune(r.stream[end]) {
		end++
	}
	r.next = end
	return r.fault(r.tape.MoveTo(string(r.stream[r.pc:end])))
}
