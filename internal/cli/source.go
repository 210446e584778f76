package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/ir"
)

// stdinPath names standard input wherever a file argument is accepted.
const stdinPath = "-"

// readSource reads a program from path, or from the command's stdin when
// path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read program from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read program: %w", err)
	}
	return string(data), nil
}

// textSink streams a run to the terminal: output as it is produced,
// diagnostics on the error stream, and the end marker on its own line.
// Output is buffered; the buffer is flushed before every diagnostic, at
// the end marker and by Flush.
type textSink struct {
	out         *bufio.Writer
	diag        io.Writer
	endMarker   string
	atLineStart bool
}

func newTextSink(out, diag io.Writer, endMarker bool) *textSink {
	s := &textSink{out: bufio.NewWriter(out), diag: diag, atLineStart: true}
	if endMarker {
		s.endMarker = ir.EndMarker
	}
	return s
}

func (s *textSink) Output(text string) error {
	if text == "" {
		return nil
	}
	if _, err := s.out.WriteString(text); err != nil {
		return err
	}
	s.atLineStart = strings.HasSuffix(text, "\n")
	return nil
}

func (s *textSink) Diagnostic(text string) error {
	if !s.atLineStart {
		if err := s.out.WriteByte('\n'); err != nil {
			return err
		}
		s.atLineStart = true
	}
	if err := s.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.diag, "error: %s\n", text)
	return err
}

func (s *textSink) EndOfProgram() error {
	if s.endMarker != "" {
		if !s.atLineStart {
			if err := s.out.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(s.out, s.endMarker); err != nil {
			return err
		}
		s.atLineStart = true
	}
	return s.Flush()
}

// Flush writes any buffered output.
func (s *textSink) Flush() error {
	return s.out.Flush()
}
