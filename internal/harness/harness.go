package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/ybf/internal/engine"
	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/tape"
)

// Run executes a test scenario and returns the result.
//
// Each scenario gets a fresh engine and tape. The returned error is
// non-nil only when the run itself could not complete, for example when
// ctx is cancelled; expectation mismatches are recorded in the result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	eng := engine.New(engine.WithMaxSteps(scenario.MaxSteps))
	tr := ir.NewTranscript()

	res, err := eng.RunSource(ctx, scenario.Program, tape.NewStringInput(scenario.Input), tr)
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Reason = res.Reason
	result.ErrorCode = res.ErrorCode()
	result.Steps = res.Steps
	result.Transcript = tr

	for _, msg := range Check(&scenario.Expect, res, tr) {
		result.AddError(msg)
	}

	slog.DebugContext(ctx, "scenario finished",
		"scenario", scenario.Name,
		"reason", result.Reason,
		"steps", result.Steps,
		"pass", result.Pass,
	)
	return result, nil
}
