// Command ybf runs yBrainfuck programs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ybf/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}

	// Usage errors from cobra (bad flags, wrong arg count) are command errors.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
