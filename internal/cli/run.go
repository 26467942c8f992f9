package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/mcwalk/internal/canonical"
	"github.com/roach88/mcwalk/internal/runspec"
	"github.com/roach88/mcwalk/internal/sampler"
	"github.com/roach88/mcwalk/internal/store"
	"github.com/roach88/mcwalk/internal/summary"
)

// RunIDGenerator generates unique run identifiers.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run identifiers.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run IDs for deterministic tests.
type FixedGenerator struct {
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next fixed ID. Panics when exhausted.
func (g *FixedGenerator) Generate() string {
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <specs-dir>",
		Short: "Run the sampler for a spec and persist the trajectory",
		Long: `Run the Metropolis chain described by a CUE run spec.

The spec directory is loaded and validated against the embedded schema, the
chain runs to completion, and the run record, full trajectory, and posterior
summary are persisted to the SQLite database (creating it if needed).

Example:
  mcwalk run --db ./runs.db ./specs
  mcwalk run --db /tmp/test.db ./demo-specs --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSample(opts *RunOptions, specsDir string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	slog.Info("loading run spec", "dir", specsDir)
	loadResult, loadErrors := LoadRunSpec(specsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return WrapExitError(ExitCommandError, "failed to load run spec", loadErrors[0])
	}
	spec := loadResult.Spec
	slog.Info("run spec loaded", "name", spec.Name, "files", loadResult.FileCount)

	slog.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	// Ctrl-C stops the chain; a cancelled run is not persisted because a
	// trajectory shorter than the configured length would break the
	// replay contract.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := executeRun(ctx, st, spec, opts.generator())
	if err != nil {
		if sampler.IsConfigError(err) {
			return WrapExitError(ExitFailure, "run failed", err)
		}
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	return formatter.Success(report)
}

func (opts *RunOptions) generator() RunIDGenerator {
	if opts.IDGenerator != nil {
		return opts.IDGenerator
	}
	return UUIDv7Generator{}
}

// executeRun performs one full sample-persist-summarize cycle and returns
// the report. Shared by the run command and the test harness.
func executeRun(ctx context.Context, st *store.Store, spec *runspec.RunSpec, gen RunIDGenerator) (RunReport, error) {
	target, err := spec.BuildModel()
	if err != nil {
		return RunReport{}, err
	}

	cfg := spec.SamplerConfig()
	chain, err := sampler.New(cfg, target)
	if err != nil {
		return RunReport{}, err
	}

	slog.Debug("starting chain", "steps", cfg.Steps, "seed", cfg.Seed, "boundary", cfg.Boundary())
	result, err := chain.Run(ctx)
	if err != nil {
		return RunReport{}, fmt.Errorf("chain interrupted after %d steps: %w", len(result.Trajectory), err)
	}
	slog.Info("chain finished",
		"steps", len(result.Trajectory),
		"accepted", result.Accepted,
		"rejected", result.Rejected,
		"rate", result.AcceptanceRate(),
	)

	configHash, err := spec.ConfigHash()
	if err != nil {
		return RunReport{}, err
	}
	trajectoryHash, err := canonical.TrajectoryHash(result.Trajectory)
	if err != nil {
		return RunReport{}, err
	}
	specJSON, err := spec.CanonicalJSON()
	if err != nil {
		return RunReport{}, err
	}

	run := store.Run{
		ID:             gen.Generate(),
		CreatedAt:      time.Now().Unix(),
		Spec:           string(specJSON),
		ConfigHash:     configHash,
		Seed:           cfg.Seed,
		Steps:          cfg.Steps,
		Boundary:       result.Boundary,
		Accepted:       result.Accepted,
		Rejected:       result.Rejected,
		TrajectoryHash: trajectoryHash,
		EngineVersion:  sampler.EngineVersion,
	}
	if err := st.WriteRun(ctx, run, result.Trajectory); err != nil {
		return RunReport{}, err
	}
	slog.Debug("run persisted", "id", run.ID, "trajectory_hash", trajectoryHash)

	trimmed := summary.Trim(result.Trajectory, result.Boundary)
	s, err := summary.Compute(trimmed, target, cfg.CredMass)
	if err != nil {
		return RunReport{}, err
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
		return RunReport{}, err
	}

	return buildReport(spec.Name, run, s), nil
}
