package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/ctrans"
	"github.com/roach88/ybf/internal/preproc"
)

// CheckOutput reports the result of checking a program without running it.
type CheckOutput struct {
	Valid        bool                        `json:"valid"`
	Variables    []string                    `json:"variables"`
	StreamLength int                         `json:"stream_length"`
	Errors       []*preproc.DeclarationError `json:"errors,omitempty"`
	Warnings     []string                    `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file|->",
		Short: "Check a program without running it",
		Long: `Preprocess a program and report every declaration error.

A program with declaration errors is rejected by "ybf run" before any
command executes. Problems that only surface when the offending command
runs (an invalid command, an undefined variable, an unmatched bracket)
are reported as warnings.

Exit codes:
  0 - No declaration errors
  1 - One or more declaration errors
  2 - Command error

Examples:
  ybf check prog.ybf
  ybf check prog.ybf --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	src, err := readSource(cmd, path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read program", err)
	}

	out := CheckOutput{Valid: true, Variables: []string{}}

	prog, err := preproc.Process(src)
	if err != nil {
		list, ok := preproc.AsErrorList(err)
		if !ok {
			return WrapExitError(ExitCommandError, "failed to preprocess", err)
		}
		out.Valid = false
		out.Errors = list
	} else {
		out.Variables = append(out.Variables, prog.Variables...)
		out.StreamLength = len(prog.Stream)

		if _, err := ctrans.Translate(prog); err != nil {
			var terr *ctrans.Error
			if !errors.As(err, &terr) {
				return WrapExitError(ExitCommandError, "failed to analyze program", err)
			}
			out.Warnings = append(out.Warnings, terr.Error())
		}
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: out}
		if !out.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeRejected,
				Message: fmt.Sprintf("%d declaration error(s)", len(out.Errors)),
			}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		outputCheckText(formatter, path, out)
	}

	if !out.Valid {
		return NewExitError(ExitFailure, "")
	}
	return nil
}

func outputCheckText(formatter *OutputFormatter, path string, out CheckOutput) {
	w := formatter.Writer

	if !out.Valid {
		fmt.Fprintf(w, "✗ %s: %d declaration error(s)\n", path, len(out.Errors))
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
		return
	}

	fmt.Fprintf(w, "✓ %s\n", path)
	fmt.Fprintf(w, "  %d declared variable(s)", len(out.Variables))
	if len(out.Variables) > 0 {
		fmt.Fprintf(w, ": %v", out.Variables)
	}
	fmt.Fprintln(w)
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}
