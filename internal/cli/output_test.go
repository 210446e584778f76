package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Success(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, formatter.Success(VersionOutput{EngineVersion: "0.1.0", LanguageVersion: "2.0.1"}))

		var resp struct {
			Status string        `json:"status"`
			Data   VersionOutput `json:"data"`
			Error  *CLIError     `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "2.0.1", resp.Data.LanguageVersion)
		assert.Nil(t, resp.Error)
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		require.NoError(t, formatter.Success("3 scenario(s)"))
		assert.Equal(t, "3 scenario(s)\n", buf.String())
	})
}

func TestOutputFormatter_Error(t *testing.T) {
	details := map[string]int{"offset": 7}

	tests := []struct {
		name     string
		format   string
		verbose  bool
		contains []string
		absent   []string
	}{
		{"text", "text", false, []string{"Error [E103]: unmatched bracket\n"}, []string{"Details:"}},
		{"text verbose", "text", true, []string{"Error [E103]", "Details: map[offset:7]"}, nil},
		{"json", "json", false, []string{`"status": "error"`, `"code": "E103"`, `"offset": 7`}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error(ErrCodeTranslate, "unmatched bracket", details))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestOutputFormatter_Respond(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Respond(CLIResponse{
		Status: "error",
		Data:   map[string]int{"steps": 3},
		Error:  &CLIError{Code: ErrCodeProgramError, Message: "boom"},
		RunID:  "run-1",
	})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, ErrCodeProgramError, resp.Error.Code)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		split   bool
	}{
		{"disabled", false, false},
		{"enabled", true, false},
		{"enabled with err writer", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.split {
				formatter.ErrWriter = errOut
			}

			formatter.VerboseLog("run %s: %s", "r1", "end")

			switch {
			case !tt.verbose:
				assert.Empty(t, out.String())
			case tt.split:
				assert.Empty(t, out.String())
				assert.Equal(t, "run r1: end\n", errOut.String())
			default:
				assert.Equal(t, "run r1: end\n", out.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrapped", assert.AnError)))
	assert.Equal(t, "", NewExitError(ExitFailure, "").Error())
	assert.Equal(t, "wrapped: "+assert.AnError.Error(), WrapExitError(ExitFailure, "wrapped", assert.AnError).Error())
}
