package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Stdout(t *testing.T) {
	prog := writeFile(t, "a.ybf", "65+.")

	res := execute(t, "", "compile", prog)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "int main(void) {")
	assert.Contains(t, res.stdout, "data[pos] += 65;")
}

func TestCompile_OutputFile(t *testing.T) {
	prog := writeFile(t, "a.ybf", "+[-]")
	out := filepath.Join(t.TempDir(), "a.c")

	res := execute(t, "", "compile", prog, "-o", out)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Wrote C to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "data[pos] = 0;")
}

func TestCompile_TranslationError(t *testing.T) {
	prog := writeFile(t, "bad.ybf", "+]")

	res := execute(t, "", "compile", prog)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E103]")
}

func TestCompile_Rejected(t *testing.T) {
	prog := writeFile(t, "dup.ybf", "!xy\n!xy\n")

	res := execute(t, "", "compile", prog)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E101]")
	assert.Contains(t, res.stdout, "already defined")
}

func TestCompile_JSON(t *testing.T) {
	prog := writeFile(t, "a.ybf", "+.")

	res := execute(t, "", "--format", "json", "compile", prog)
	require.NoError(t, res.err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Contains(t, resp.Data.Source, "int main(void)")
	assert.Equal(t, len(resp.Data.Source), resp.Data.Bytes)
}
