package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/engine"
	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/logs"
	"github.com/roach88/ybf/internal/store"
	"github.com/roach88/ybf/internal/tape"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Input     string
	InputFile string
	Database  string
	MaxSteps  int

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator engine.RunIDGenerator
}

// RunOutput is the result of one run.
type RunOutput struct {
	RunID          string        `json:"run_id"`
	HaltReason     ir.HaltReason `json:"halt_reason"`
	ErrorCode      string        `json:"error_code,omitempty"`
	Steps          int           `json:"steps"`
	Output         string        `json:"output"`
	Diagnostics    []string      `json:"diagnostics"`
	ProgramHash    string        `json:"program_hash"`
	TranscriptHash string        `json:"transcript_hash"`
	Recorded       bool          `json:"recorded"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file|->",
		Short: "Run a yBrainfuck program",
		Long: `Run a yBrainfuck program read from a file or from stdin ("-").

Output is streamed as the program produces it. Errors are written to
stderr and end the run. With --db the run is recorded and can later be
listed with "ybf history" and verified with "ybf replay".

Exit codes:
  0 - The program reached its end or executed ~
  1 - The program was rejected or stopped with an error
  2 - Command error (unreadable file, database error, etc.)

Examples:
  ybf run hello.ybf
  ybf run cat.ybf --input "hello"
  echo '65+.' | ybf run -
  ybf run loop.ybf --max-steps 100000 --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "", "input text consumed by ,")
	cmd.Flags().StringVar(&opts.InputFile, "input-file", "", `read input from a file, or "-" for stdin`)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "stop after this many commands (0 = unlimited)")

	return cmd
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	src, err := readSource(cmd, path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read program", err)
	}

	input, closeInput, err := openInput(opts, path, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open input", err)
	}
	defer closeInput()

	maxSteps := opts.MaxSteps
	if !cmd.Flags().Changed("max-steps") {
		maxSteps = opts.Config.MaxSteps
	}
	if maxSteps < 0 {
		return NewExitError(ExitCommandError, "--max-steps must be non-negative")
	}

	gen := opts.RunIDGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	runID := gen.Generate()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logs.WithRunID(ctx, runID)

	tr := ir.NewTranscript()
	var sink ir.Sink = tr
	var terminal *textSink
	if opts.Format != "json" {
		terminal = newTextSink(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Config.EndMarker)
		sink = ir.Tee(tr, terminal)
	}

	recorder := tape.NewRecorder(input)
	eng := engine.New(engine.WithMaxSteps(maxSteps))

	res, err := eng.RunSource(ctx, src, recorder, sink)
	if terminal != nil {
		if ferr := terminal.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("write output: %w", ferr)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "run interrupted", err)
		}
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	rec, err := newRunRecord(runID, src, recorder.Consumed(), maxSteps, res, tr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash run", err)
	}
	slog.DebugContext(ctx, "run hashed",
		"reason", res.Reason,
		"steps", res.Steps,
		"program_hash", rec.ProgramHash,
	)

	out := RunOutput{
		RunID:          runID,
		HaltReason:     res.Reason,
		ErrorCode:      rec.ErrorCode,
		Steps:          res.Steps,
		Output:         tr.Stdout(),
		Diagnostics:    tr.Diagnostics(),
		ProgramHash:    rec.ProgramHash,
		TranscriptHash: rec.TranscriptHash,
	}

	if db := opts.database(opts.Database); db != "" {
		if err := recordRun(ctx, db, rec); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		out.Recorded = true
	}

	return outputRun(formatter, out)
}

// openInput selects the input source. Without --input or --input-file the
// program sees an empty input.
func openInput(opts *RunOptions, programPath string, cmd *cobra.Command) (tape.Input, func(), error) {
	noop := func() {}

	if opts.Input != "" && opts.InputFile != "" {
		return nil, noop, fmt.Errorf("--input and --input-file are mutually exclusive")
	}

	switch {
	case opts.InputFile == stdinPath:
		if programPath == stdinPath {
			return nil, noop, fmt.Errorf("program and input cannot both be read from stdin")
		}
		return tape.NewReaderInput(cmd.InOrStdin()), noop, nil
	case opts.InputFile != "":
		f, err := os.Open(opts.InputFile)
		if err != nil {
			return nil, noop, fmt.Errorf("open input: %w", err)
		}
		return tape.NewReaderInput(f), func() { f.Close() }, nil
	default:
		return tape.NewStringInput(opts.Input), noop, nil
	}
}

// newRunRecord builds the durable record of a finished run.
func newRunRecord(id, src, input string, maxSteps int, res *engine.Result, tr *ir.Transcript) (ir.RunRecord, error) {
	programHash, err := ir.ProgramHash(src, input)
	if err != nil {
		return ir.RunRecord{}, err
	}
	transcriptHash, err := ir.TranscriptHash(tr)
	if err != nil {
		return ir.RunRecord{}, err
	}

	return ir.RunRecord{
		ID:              id,
		ProgramHash:     programHash,
		Source:          src,
		Input:           input,
		MaxSteps:        maxSteps,
		HaltReason:      res.Reason,
		ErrorCode:       res.ErrorCode(),
		Steps:           res.Steps,
		Transcript:      tr,
		TranscriptHash:  transcriptHash,
		EngineVersion:   ir.EngineVersion,
		LanguageVersion: ir.LanguageVersion,
	}, nil
}

func recordRun(ctx context.Context, path string, rec ir.RunRecord) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.ErrorContext(ctx, "error closing database", "error", closeErr)
		}
	}()

	seq, err := st.WriteRun(ctx, rec)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "run recorded", "db", path, "seq", seq)
	return nil
}

func outputRun(formatter *OutputFormatter, out RunOutput) error {
	failed := out.HaltReason.Failed()

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: out, RunID: out.RunID}
		if failed {
			resp.Status = "error"
			resp.Error = runError(out)
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		formatter.VerboseLog("run %s: %s after %d step(s)", out.RunID, out.HaltReason, out.Steps)
	}

	if failed {
		// Diagnostics have already been written.
		return NewExitError(ExitFailure, "")
	}
	return nil
}

func runError(out RunOutput) *CLIError {
	code := ErrCodeProgramError
	if out.HaltReason == ir.HaltRejected {
		code = ErrCodeRejected
	}
	msg := string(out.HaltReason)
	if len(out.Diagnostics) > 0 {
		msg = out.Diagnostics[0]
	}
	return &CLIError{Code: code, Message: msg, Details: out.ErrorCode}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
