package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// cliResult captures one command execution.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args. An empty config file is always
// passed so a ybf.cue in the working directory cannot leak into tests.
func execute(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "empty.cue")
	require.NoError(t, os.WriteFile(cfg, nil, 0644))

	return executeWithConfig(t, cfg, stdin, args...)
}

func executeWithConfig(t *testing.T, cfg, stdin string, args ...string) cliResult {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfg}, args...))

	err := cmd.Execute()
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// writeFile writes content into a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
