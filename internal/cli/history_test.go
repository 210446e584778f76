package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ybf/internal/store"
)

// recordRuns runs each program against db and returns the run IDs in order.
func recordRuns(t *testing.T, db string, programs ...string) []string {
	t.Helper()

	var ids []string
	for _, p := range programs {
		prog := writeFile(t, "p.ybf", p)
		res := execute(t, "", "--format", "json", "run", prog, "--db", db, "--input", "xyz")

		var resp struct {
			Data RunOutput `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
		require.True(t, resp.Data.Recorded)
		ids = append(ids, resp.Data.RunID)
	}
	return ids
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	res := execute(t, "", "history", "--db", db)
	require.NoError(t, res.err)
	assert.Equal(t, "No runs recorded.\n", res.stdout)
}

func TestHistory_NoDatabase(t *testing.T) {
	res := execute(t, "", "history")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "no database")
}

func TestHistory_ListsNewestFirst(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	ids := recordRuns(t, db, "65+.", ",.,.", "<")

	res := execute(t, "", "--format", "json", "history", "--db", db)
	require.NoError(t, res.err)

	var resp struct {
		Data []RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, ids[2], resp.Data[0].RunID)
	assert.Equal(t, int64(3), resp.Data[0].Seq)
	assert.Equal(t, "error", string(resp.Data[0].HaltReason))
	assert.Equal(t, "BUFFER_OVERRUN", resp.Data[0].ErrorCode)
	assert.Equal(t, ids[0], resp.Data[2].RunID)

	res = execute(t, "", "history", "--db", db, "--limit", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "SEQ")
	assert.Contains(t, res.stdout, ids[2])
	assert.NotContains(t, res.stdout, ids[0])
	assert.Contains(t, res.stdout, "3 run(s): 2 end, 1 error")
}

func TestHistory_DatabaseFromConfig(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	cfg := writeFile(t, "ybf.cue", `db: "`+db+`"`)

	prog := writeFile(t, "p.ybf", "+.")
	res := executeWithConfig(t, cfg, "", "run", prog)
	require.NoError(t, res.err)

	res = executeWithConfig(t, cfg, "", "history")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "end")
}

func TestReplay_Deterministic(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	ids := recordRuns(t, db, ",.,.,.,", "65+.<")

	for _, id := range ids {
		res := execute(t, "", "replay", id, "--db", db)
		require.NoError(t, res.err, id)
		assert.Contains(t, res.stdout, "✓ run "+id+" replayed")
	}
}

func TestReplay_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	ids := recordRuns(t, db, ",.")

	res := execute(t, "", "--format", "json", "replay", ids[0], "--db", db)
	require.NoError(t, res.err)

	var resp struct {
		Status string       `json:"status"`
		RunID  string       `json:"run_id"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ids[0], resp.RunID)
	assert.True(t, resp.Data.Deterministic)
	assert.True(t, resp.Data.ProgramIntact)
	assert.Equal(t, resp.Data.RecordedHash, resp.Data.ReplayedHash)
}

func TestReplay_NotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	recordRuns(t, db, "+.")

	res := execute(t, "", "replay", "no-such-run", "--db", db)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E005]")
}

func TestReplay_DetectsTampering(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	ids := recordRuns(t, db, "65+.", "66+.")

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().Exec("UPDATE runs SET source = '67+.' WHERE id = ?", ids[0])
	require.NoError(t, err)
	_, err = st.DB().Exec("UPDATE runs SET transcript_hash = 'deadbeef' WHERE id = ?", ids[1])
	require.NoError(t, err)
	require.NoError(t, st.Close())

	res := execute(t, "", "replay", ids[0], "--db", db)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "does not match its hash")

	res = execute(t, "", "--format", "json", "replay", ids[1], "--db", db)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeReplay, resp.Error.Code)
}
