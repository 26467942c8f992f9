package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mcwalk/internal/runspec"
	"github.com/roach88/mcwalk/internal/store"
)

// testSpec is the demo two-coin spec with a short chain, built directly so
// tests that don't exercise CUE loading skip it.
func testSpec() *runspec.RunSpec {
	return &runspec.RunSpec{
		Name: "demo-two-coins",
		Model: runspec.ModelSpec{
			Experiments: []runspec.ExperimentSpec{
				{Successes: 5, Trials: 7},
				{Successes: 2, Trials: 7},
			},
			Priors: []runspec.PriorSpec{
				{Alpha: 3, Beta: 3},
				{Alpha: 3, Beta: 3},
			},
		},
		Sampler: runspec.SamplerSpec{
			Steps:          2000,
			Start:          []float64{0.5, 0.5},
			BurnInFraction: 0.1,
			StepSD:         []float64{0.2, 0.2},
			Seed:           47405,
			CredMass:       0.95,
		},
	}
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("id-1", "id-2")
	assert.Equal(t, "id-1", gen.Generate())
	assert.Equal(t, "id-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	id, err := uuid.Parse(gen.Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, gen.Generate(), gen.Generate())
}

func TestExecuteRun_PersistsEverything(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	spec := testSpec()

	report, err := executeRun(ctx, st, spec, NewFixedGenerator("run-1"))
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "demo-two-coins", report.Name)
	assert.Equal(t, 2000, report.Steps)
	assert.Equal(t, 200, report.Boundary)
	assert.Equal(t, 2000-1-200, report.Accepted+report.Rejected)

	run, err := st.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.ConfigHash, run.ConfigHash)
	assert.Equal(t, report.TrajectoryHash, run.TrajectoryHash)
	assert.Equal(t, int64(47405), run.Seed)
	assert.JSONEq(t, run.Spec, mustCanonicalJSON(t, spec))

	trajectory, err := st.ReadTrajectory(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, trajectory, 2000)

	rec, err := st.ReadSummary(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.Mean, rec.Mean)
	assert.Equal(t, 0.95, rec.CredMass)
	require.NotNil(t, rec.Evidence)
	assert.Equal(t, *report.Evidence, *rec.Evidence)
}

func mustCanonicalJSON(t *testing.T, spec *runspec.RunSpec) string {
	t.Helper()
	data, err := spec.CanonicalJSON()
	require.NoError(t, err)
	return string(data)
}

func TestExecuteRun_DeterministicAcrossRuns(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	first, err := executeRun(ctx, st, testSpec(), NewFixedGenerator("run-1"))
	require.NoError(t, err)
	second, err := executeRun(ctx, st, testSpec(), NewFixedGenerator("run-2"))
	require.NoError(t, err)

	assert.Equal(t, first.ConfigHash, second.ConfigHash)
	assert.Equal(t, first.TrajectoryHash, second.TrajectoryHash)
	assert.Equal(t, first.Mean, second.Mean)
}

func TestExecuteRun_SeedChangesTrajectoryHash(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	first, err := executeRun(ctx, st, testSpec(), NewFixedGenerator("run-1"))
	require.NoError(t, err)

	reseeded := testSpec()
	reseeded.Sampler.Seed = 1
	second, err := executeRun(ctx, st, reseeded, NewFixedGenerator("run-2"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ConfigHash, second.ConfigHash)
	assert.NotEqual(t, first.TrajectoryHash, second.TrajectoryHash)
}

func TestExecuteRun_ConfigError(t *testing.T) {
	st := setupTestStore(t)

	spec := testSpec()
	spec.Sampler.Start = []float64{1.5, 0.5} // outside the posterior domain

	_, err := executeRun(context.Background(), st, spec, NewFixedGenerator("run-1"))
	require.Error(t, err)
}

func TestExecuteRun_Cancelled(t *testing.T) {
	st := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled run is not persisted.
	_, err := executeRun(ctx, st, testSpec(), NewFixedGenerator("run-1"))
	require.Error(t, err)

	_, err = st.ReadRun(context.Background(), "run-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunCommand_EndToEnd(t *testing.T) {
	specsDir := writeSpecDir(t, map[string]string{"run.cue": validSpecCUE})
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, specsDir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "demo-two-coins")
	assert.Contains(t, buf.String(), "config hash:")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(47405), runs[0].Seed)
}

func TestRunCommand_InvalidSpecDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "/nonexistent/specs"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ConfigErrorExitCode(t *testing.T) {
	// Start outside the domain passes the CUE schema (start is just a list
	// of numbers) but fails sampler validation: exit code 1, not 2.
	specsDir := writeSpecDir(t, map[string]string{"run.cue": `
package specs

run: {
	name: "bad-start"
	model: {
		experiments: [{successes: 5, trials: 7}]
		priors: [{alpha: 3, beta: 3}]
	}
	sampler: {
		steps:          100
		start:          [1.5]
		burnInFraction: 0.1
		stepSD:         [0.2]
		seed:           1
		credMass:       0.95
	}
}
`})
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, specsDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunCommand_RequiresDBFlag(t *testing.T) {
	specsDir := writeSpecDir(t, map[string]string{"run.cue": validSpecCUE})

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{specsDir})

	assert.Error(t, cmd.Execute())
}
