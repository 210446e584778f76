package harness

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/ybf/internal/engine"
	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/tape"
)

// Check compares a finished run against expect and returns one message per
// mismatch.
func Check(expect *Expect, res *engine.Result, tr *ir.Transcript) []string {
	var errs []string

	if string(res.Reason) != expect.Halt {
		errs = append(errs, fmt.Sprintf("halt: expected %q, got %q", expect.Halt, res.Reason))
	}

	if expect.Output != nil {
		if got := tr.Stdout(); got != *expect.Output {
			errs = append(errs, fmt.Sprintf("output: expected %q, got %q", *expect.Output, got))
		}
	}

	diagnostics := tr.Diagnostics()
	if expect.Diagnostics != nil && !slices.Equal(expect.Diagnostics, diagnostics) {
		errs = append(errs, fmt.Sprintf("diagnostics: expected %q, got %q", expect.Diagnostics, diagnostics))
	}

	for _, want := range expect.DiagnosticsContain {
		if !containsSubstring(diagnostics, want) {
			errs = append(errs, fmt.Sprintf("diagnostics: no diagnostic contains %q", want))
		}
	}

	if expect.ErrorCode != "" {
		if got := res.ErrorCode(); got != expect.ErrorCode {
			errs = append(errs, fmt.Sprintf("error_code: expected %q, got %q", expect.ErrorCode, got))
		}
	}

	if len(expect.Cells) > 0 || expect.Position != nil {
		errs = append(errs, checkMemory(expect, res.Tape)...)
	}

	return errs
}

func checkMemory(expect *Expect, t *tape.Tape) []string {
	if t == nil {
		return []string{"memory: the program was rejected, no memory to inspect"}
	}

	var errs []string

	if expect.Position != nil && t.Position() != *expect.Position {
		errs = append(errs, fmt.Sprintf("position: expected %d, got %d", *expect.Position, t.Position()))
	}

	keys := make([]string, 0, len(expect.Cells))
	for k := range expect.Cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		want := expect.Cells[key]

		var got byte
		if idx, err := strconv.Atoi(key); err == nil {
			got = t.Cell(idx)
		} else {
			v, ok := t.ValueOf(key)
			if !ok {
				errs = append(errs, fmt.Sprintf("cells[%s]: variable is not defined", key))
				continue
			}
			got = v
		}

		if int(got) != want {
			errs = append(errs, fmt.Sprintf("cells[%s]: expected %d, got %d", key, want, got))
		}
	}

	return errs
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
