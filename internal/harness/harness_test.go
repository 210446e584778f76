package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ybf/internal/ir"
)

func TestRun_AllScenariosPass(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong
description: every expectation is wrong
program: "65+.<"
expect:
  halt: end
  output: "B"
  diagnostics: []
  diagnostics_contain: ["nothing like this"]
  error_code: EOF_REACHED
  cells:
    "1": 9
    nope: 1
  position: 3
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, ir.HaltError, result.Reason)
	assert.Equal(t, "BUFFER_OVERRUN", result.ErrorCode)

	assert.Equal(t, []string{
		`halt: expected "end", got "error"`,
		`output: expected "B", got "A"`,
		`diagnostics: expected [], got ["Buffer overrun occurred. The current position has the negative value [ -1 ]."]`,
		`diagnostics: no diagnostic contains "nothing like this"`,
		`error_code: expected "EOF_REACHED", got "BUFFER_OVERRUN"`,
		`position: expected 3, got -1`,
		`cells[1]: expected 9, got 0`,
		`cells[nope]: variable is not defined`,
	}, result.Errors)
}

func TestRun_RejectedHasNoMemory(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: rejected_cells
description: cells cannot be checked on a rejected program
program: "!a\n+"
expect:
  halt: rejected
  cells:
    "0": 1
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"memory: the program was rejected, no memory to inspect"}, result.Errors)
}

func TestRun_StepQuota(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: spin
description: an infinite loop is stopped by the step limit
program: "+[]"
max_steps: 100
expect:
  halt: error
  error_code: STEP_QUOTA_EXCEEDED
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CancelledContext(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: spin
description: cancelled before it can finish
program: "+[]"
expect:
  halt: end
`))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, scenario)
	assert.ErrorIs(t, err, context.Canceled)
}
