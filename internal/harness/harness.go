package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/mcwalk/internal/sampler"
	"github.com/roach88/mcwalk/internal/summary"
)

// Result holds the outcome of running a scenario: the raw run artifacts
// plus any expectation failures.
type Result struct {
	ScenarioName string

	// AcceptanceRate is the post-burn-in acceptance rate of the chain.
	AcceptanceRate float64

	// Summary is the computed posterior summary for the trimmed trajectory.
	Summary *summary.Summary

	// Errors lists expectation failures. Empty means the scenario passed.
	Errors []string
}

// Passed reports whether all expectations held.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

func (r *Result) addErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Run executes a scenario end to end and evaluates its expectations.
//
// Execution flow:
//  1. Build the posterior target from the spec's model section
//  2. Run the seeded chain to completion
//  3. Trim burn-in and compute the posterior summary
//  4. Evaluate the expect clause against the result
//
// Run returns an error only for execution failures (invalid spec, chain
// construction). Expectation failures land in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	target, err := scenario.Spec.BuildModel()
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	chain, err := sampler.New(scenario.Spec.SamplerConfig(), target)
	if err != nil {
		return nil, fmt.Errorf("failed to build chain: %w", err)
	}

	runResult, err := chain.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("chain run failed: %w", err)
	}
	logger.Info("chain complete",
		"scenario", scenario.Name,
		"steps", len(runResult.Trajectory),
		"accepted", runResult.Accepted,
		"rejected", runResult.Rejected,
	)

	trimmed := summary.Trim(runResult.Trajectory, runResult.Boundary)
	sum, err := summary.Compute(trimmed, target, scenario.Spec.Sampler.CredMass)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	result := &Result{
		ScenarioName:   scenario.Name,
		AcceptanceRate: runResult.AcceptanceRate(),
		Summary:        sum,
	}
	evaluateExpectations(result, &scenario.Expect)
	return result, nil
}

// evaluateExpectations checks the expect clause against a run result,
// appending one error per failed check.
func evaluateExpectations(r *Result, expect *ExpectClause) {
	for d, want := range expect.Mean {
		got := r.Summary.Mean[d]
		if math.Abs(got-want) > expect.MeanTolerance {
			r.addErrorf("mean[%d]: got %v, want %v ± %v", d, got, want, expect.MeanTolerance)
		}
	}

	if b := expect.AcceptanceRate; b != nil {
		if r.AcceptanceRate < b.Min || r.AcceptanceRate > b.Max {
			r.addErrorf("acceptance rate %v outside [%v, %v]", r.AcceptanceRate, b.Min, b.Max)
		}
	}

	if expect.Evidence != 0 {
		if !r.Summary.EvidenceOK {
			r.addErrorf("evidence expected but estimate was degenerate")
		} else {
			rel := math.Abs(r.Summary.Evidence-expect.Evidence) / math.Abs(expect.Evidence)
			if rel > expect.EvidenceRelTolerance {
				r.addErrorf("evidence: got %v, want %v within %v relative error (got %v)",
					r.Summary.Evidence, expect.Evidence, expect.EvidenceRelTolerance, rel)
			}
		}
	}

	for i, want := range expect.HDIContains {
		if !hdiContains(r.Summary.HDIPoints, want, expect.HDITolerance) {
			r.addErrorf("hdiContains[%d]: no HDI point within %v of %v", i, expect.HDITolerance, want)
		}
	}
}

// hdiContains reports whether some HDI point is within tol of want in
// every dimension.
func hdiContains(points [][]float64, want []float64, tol float64) bool {
	for _, p := range points {
		if len(p) != len(want) {
			continue
		}
		within := true
		for d := range p {
			if math.Abs(p[d]-want[d]) > tol {
				within = false
				break
			}
		}
		if within {
			return true
		}
	}
	return false
}
