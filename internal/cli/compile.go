package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/ctrans"
	"github.com/roach88/ybf/internal/preproc"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompileOutput describes a successful translation.
type CompileOutput struct {
	File   string `json:"file,omitempty"`
	Bytes  int    `json:"bytes"`
	Source string `json:"source,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file|->",
		Short: "Translate a program to C",
		Long: `Translate a yBrainfuck program to a standalone C program.

Runs of > < + - are folded, [-] becomes a store of zero, and jumps to
variables become absolute pointer assignments. Anything the interpreter
would only report when executed is reported here up front.

Examples:
  ybf compile hello.ybf -o hello.c && cc -o hello hello.c
  ybf compile hello.ybf > hello.c`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	src, err := readSource(cmd, path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read program", err)
	}

	prog, err := preproc.Process(src)
	if err != nil {
		list, ok := preproc.AsErrorList(err)
		if !ok {
			return WrapExitError(ExitCommandError, "failed to preprocess", err)
		}
		_ = formatter.Error(ErrCodeRejected, fmt.Sprintf("%d declaration error(s)", len(list)), list)
		if formatter.Format != "json" {
			for _, e := range list {
				fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
			}
		}
		return NewExitError(ExitFailure, "")
	}

	csrc, err := ctrans.Translate(prog)
	if err != nil {
		var terr *ctrans.Error
		if !errors.As(err, &terr) {
			return WrapExitError(ExitCommandError, "failed to translate", err)
		}
		_ = formatter.Error(ErrCodeTranslate, terr.Message, map[string]int{"offset": terr.Offset})
		return NewExitError(ExitFailure, "")
	}

	out := CompileOutput{File: opts.Output, Bytes: len(csrc)}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(csrc), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		formatter.VerboseLog("Wrote %d byte(s) of C to %s", len(csrc), opts.Output)
		if formatter.Format == "json" {
			return formatter.Success(out)
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote C to %s\n", opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		out.Source = csrc
		return formatter.Success(out)
	}
	_, err = fmt.Fprint(formatter.Writer, csrc)
	return err
}
