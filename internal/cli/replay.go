package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/engine"
	"github.com/roach88/ybf/internal/logs"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult is the JSON shape of a replay.
type ReplayResult = engine.ReplayReport

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-execute a recorded run and verify its transcript",
		Long: `Re-execute a recorded run on its recorded input and step limit, and
verify that the new transcript is identical to the recorded one.

Exit codes:
  0 - The transcript matches
  1 - The transcript differs, or the stored program was altered
  2 - Command error (database not found, unknown run, etc.)

Examples:
  ybf replay 0192f0c4-7b8e-7c3a-9d51-3e0f1a2b4c5d --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := logs.WithRunID(commandContext(cmd), runID)

	st, err := openStore(formatter, opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run %s not found", runID), nil)
			return NewExitError(ExitCommandError, "")
		}
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	result, err := engine.Replay(ctx, rec)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}
	slog.DebugContext(ctx, "run replayed", "halt", result.ReplayedHalt, "deterministic", result.Deterministic)

	return outputReplay(formatter, *result)
}

func outputReplay(formatter *OutputFormatter, result ReplayResult) error {
	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
		if !result.Deterministic {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeReplay, Message: "replay does not match the recorded run"}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Deterministic {
			fmt.Fprintf(w, "✓ run %s replayed: %s, transcript %s\n", result.RunID, result.ReplayedHalt, shortHash(result.ReplayedHash))
		} else {
			fmt.Fprintf(w, "✗ run %s does not replay\n", result.RunID)
			if !result.ProgramIntact {
				fmt.Fprintln(w, "  stored program or input does not match its hash")
			}
			if result.RecordedHalt != result.ReplayedHalt {
				fmt.Fprintf(w, "  halt: recorded %s, replayed %s\n", result.RecordedHalt, result.ReplayedHalt)
			}
			if result.RecordedHash != result.ReplayedHash {
				fmt.Fprintf(w, "  transcript: recorded %s, replayed %s\n", shortHash(result.RecordedHash), shortHash(result.ReplayedHash))
			}
		}
		if result.RecordedVersion != result.ReplayedVersion {
			formatter.VerboseLog("recorded with engine %s, replayed with %s", result.RecordedVersion, result.ReplayedVersion)
		}
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "")
	}
	return nil
}
