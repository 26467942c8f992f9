package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mcwalk/internal/canonical"
	"github.com/roach88/mcwalk/internal/runspec"
	"github.com/roach88/mcwalk/internal/sampler"
	"github.com/roach88/mcwalk/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay verdict for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Name          string `json:"name"`
	Steps         int    `json:"steps"`
	Seed          int64  `json:"seed"`
	Deterministic bool   `json:"deterministic"`
	Mismatch      string `json:"mismatch,omitempty"` // which hash diverged
}

// ReplayResult holds the overall replay verdict.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// String renders the result for text output.
func (r ReplayResult) String() string {
	out := fmt.Sprintf("replayed %d run(s), deterministic: %v", r.TotalRuns, r.AllDeterministic)
	for _, run := range r.Runs {
		status := "ok"
		if !run.Deterministic {
			status = "MISMATCH (" + run.Mismatch + ")"
		}
		out += fmt.Sprintf("\n  %s (%s): %s", run.RunID, run.Name, status)
	}
	return out
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run stored configurations and verify determinism",
		Long: `Re-run stored run configurations and verify bit-for-bit determinism.

For every stored run (or a single run given --run), the persisted spec is
rebuilt into a fresh chain, re-run with the stored seed, and the resulting
trajectory hash compared against the stored one. The config hash is
recomputed and compared as well, so spec-column corruption is also caught.

Exit codes:
  0 - All replayed runs are deterministic
  1 - Determinism verification failed (hash mismatch)
  2 - Command error (database not found, etc.)

Examples:
  mcwalk replay --db ./runs.db
  mcwalk replay --db ./runs.db --run 0190f2c3-...
  mcwalk replay --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a single run ID")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{TotalRuns: len(runs), AllDeterministic: true}
	for _, run := range runs {
		formatter.VerboseLog("replaying run %s (%d steps)", run.ID, run.Steps)
		verdict, err := replayRun(ctx, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		if !verdict.Deterministic {
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, verdict)
	}

	if err := formatter.Success(result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay detected non-deterministic runs")
	}
	return nil
}

// replayRun re-executes one stored configuration and compares hashes.
func replayRun(ctx context.Context, run store.Run) (ReplayRunResult, error) {
	verdict := ReplayRunResult{RunID: run.ID, Steps: run.Steps, Seed: run.Seed}

	var spec runspec.RunSpec
	if err := json.Unmarshal([]byte(run.Spec), &spec); err != nil {
		return verdict, fmt.Errorf("parse stored spec: %w", err)
	}
	verdict.Name = spec.Name

	configHash, err := spec.ConfigHash()
	if err != nil {
		return verdict, err
	}
	if configHash != run.ConfigHash {
		verdict.Mismatch = "config_hash"
		return verdict, nil
	}

	target, err := spec.BuildModel()
	if err != nil {
		return verdict, err
	}
	chain, err := sampler.New(spec.SamplerConfig(), target)
	if err != nil {
		return verdict, err
	}
	result, err := chain.Run(ctx)
	if err != nil {
		return verdict, err
	}

	trajectoryHash, err := canonical.TrajectoryHash(result.Trajectory)
	if err != nil {
		return verdict, err
	}
	if trajectoryHash != run.TrajectoryHash {
		verdict.Mismatch = "trajectory_hash"
		return verdict, nil
	}

	verdict.Deterministic = true
	return verdict, nil
}
