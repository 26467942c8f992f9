package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mcwalk/internal/runspec"
	"github.com/roach88/mcwalk/internal/store"
	"github.com/roach88/mcwalk/internal/summary"
)

// SummarizeOptions holds flags for the summarize command.
type SummarizeOptions struct {
	*RootOptions
	Database string
	RunID    string
	CredMass float64
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummarizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Recompute the posterior summary for a stored run",
		Long: `Recompute the posterior summary from a run's stored trajectory.

The trajectory is read back from the database, trimmed at the run's burn-in
boundary, and summarized. Use --cred-mass to extract the highest-density
region at a different credibility mass than the original run; the stored
summary is replaced.

Examples:
  mcwalk summarize --db ./runs.db --run 0190f2c3-...
  mcwalk summarize --db ./runs.db --run 0190f2c3-... --cred-mass 0.89`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to summarize (required)")
	cmd.Flags().Float64Var(&opts.CredMass, "cred-mass", 0, "override the credibility mass (default: the run's configured value)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runSummarize(opts *SummarizeOptions, cmd *cobra.Command) error {
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
	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var spec runspec.RunSpec
	if err := json.Unmarshal([]byte(run.Spec), &spec); err != nil {
		return WrapExitError(ExitCommandError, "failed to parse stored run spec", err)
	}
	target, err := spec.BuildModel()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to rebuild model", err)
	}

	trajectory, err := st.ReadTrajectory(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trajectory", err)
	}

	credMass := spec.Sampler.CredMass
	if cmd.Flags().Changed("cred-mass") {
		if !(opts.CredMass > 0 && opts.CredMass < 1) {
			return NewExitError(ExitFailure, fmt.Sprintf("cred-mass must be in (0,1), got %v", opts.CredMass))
		}
		credMass = opts.CredMass
	}

	formatter.VerboseLog("summarizing %d post-burn-in states at cred mass %v", len(trajectory)-run.Boundary, credMass)

	trimmed := summary.Trim(trajectory, run.Boundary)
	s, err := summary.Compute(trimmed, target, credMass)
	if err != nil {
		return WrapExitError(ExitFailure, "summary failed", err)
	}

	rec := store.SummaryRecord{
		RunID:     run.ID,
		Mean:      s.Mean,
		Std:       s.Std,
		CredMass:  s.CredMass,
		Waterline: s.Waterline,
		HDICount:  len(s.HDIPoints),
	}
	if s.EvidenceOK {
		v := s.Evidence
		rec.Evidence = &v
	}
	if err := st.WriteSummary(ctx, rec); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist summary", err)
	}

	return formatter.Success(buildReport(spec.Name, run, s))
}
