package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ybf", cmd.Use)
	assert.Contains(t, cmd.Long, "yBrainfuck")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "check", "compile", "test", "history", "replay", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "log-file", "journal"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for _, name := range []string{"input", "input-file", "db", "max-steps"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "0", runCmd.Flags().Lookup("max-steps").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	res := execute(t, "", "--format", "xml", "version")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "invalid format")
}

func TestConfigFormatApplies(t *testing.T) {
	cfg := writeFile(t, "ybf.cue", `format: "json"`)

	res := executeWithConfig(t, cfg, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"engine_version"`)

	res = executeWithConfig(t, cfg, "", "--format", "text", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ybf ")
}

func TestConfigInvalid(t *testing.T) {
	cfg := writeFile(t, "ybf.cue", `max_steps: -5`)

	res := executeWithConfig(t, cfg, "", "version")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "failed to load config")
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ybf.log")
	prog := writeFile(t, "p.ybf", "+.")

	res := execute(t, "", "--verbose", "--log-file", logPath, "run", prog)
	require.NoError(t, res.err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id"`)
	assert.Contains(t, string(data), `"msg":"run finished"`)
}

func TestVersion(t *testing.T) {
	res := execute(t, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "ybf 0.1.0 (yBrainfuck 2.0.1)\n", res.stdout)
}
