package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mcwalk/internal/store"
)

func TestReplay_Deterministic(t *testing.T) {
	dbPath := seedRun(t, "run-1")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "deterministic: true")
	assert.Contains(t, buf.String(), "run-1")
}

func TestReplay_SingleRun(t *testing.T) {
	dbPath := seedRun(t, "run-1")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--run", "run-1"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ReplayResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.True(t, result.AllDeterministic)
	require.Len(t, result.Runs, 1)
	assert.Equal(t, "run-1", result.Runs[0].RunID)
	assert.Equal(t, "demo-two-coins", result.Runs[0].Name)
	assert.True(t, result.Runs[0].Deterministic)
	assert.Empty(t, result.Runs[0].Mismatch)
}

// tamper updates one column of the stored run to simulate corruption.
func tamper(t *testing.T, dbPath, column, value string) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.DB().Exec("UPDATE runs SET "+column+" = ? WHERE id = ?", value, "run-1")
	require.NoError(t, err)
}

func TestReplay_TrajectoryHashMismatch(t *testing.T) {
	dbPath := seedRun(t, "run-1")
	tamper(t, dbPath, "trajectory_hash", "0000000000000000000000000000000000000000000000000000000000000000")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "MISMATCH (trajectory_hash)")
}

func TestReplay_ConfigHashMismatch(t *testing.T) {
	dbPath := seedRun(t, "run-1")
	tamper(t, dbPath, "config_hash", "0000000000000000000000000000000000000000000000000000000000000000")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "MISMATCH (config_hash)")
}

func TestReplay_MissingRun(t *testing.T) {
	dbPath := seedRun(t, "run-1")

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--run", "missing"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_EmptyDatabase(t *testing.T) {
	dbPath := seedRun(t, "run-1")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().Exec("DELETE FROM runs")
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	// Zero runs replay vacuously deterministic.
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "replayed 0 run(s)")
}

func TestReplayResult_String(t *testing.T) {
	result := ReplayResult{
		TotalRuns:        2,
		AllDeterministic: false,
		Runs: []ReplayRunResult{
			{RunID: "a", Name: "one", Deterministic: true},
			{RunID: "b", Name: "two", Deterministic: false, Mismatch: "trajectory_hash"},
		},
	}
	got := result.String()
	assert.Contains(t, got, "replayed 2 run(s), deterministic: false")
	assert.Contains(t, got, "a (one): ok")
	assert.Contains(t, got, "b (two): MISMATCH (trajectory_hash)")
}
