package sampler

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
)

// Chain drives the Gaussian random-walk Metropolis loop.
//
// INVARIANTS:
//   - One seeded source feeds both the proposal and the accept/reject draw.
//   - Per step, the proposal vector is drawn first, the uniform second.
//     Reordering changes the reproducible output.
//   - Run is single-threaded; a Chain must not be shared across goroutines.
type Chain struct {
	target   Target
	proposal Proposal
	uniform  *rand.Rand
	cfg      Config
}

// Result holds the finished (or cancelled-partial) output of a chain run.
// The trajectory is read-only once returned.
type Result struct {
	// Trajectory is the ordered state sequence; index 0 is the seed state.
	// Rejected steps appear as repeated states.
	Trajectory [][]float64

	// Accepted and Rejected tally transitions whose new-state index lies
	// strictly past the burn-in boundary. Accepted+Rejected equals
	// len(Trajectory)-1-Boundary for a completed run.
	Accepted int
	Rejected int

	// Boundary is the burn-in boundary index used for the counters (and for
	// downstream trimming).
	Boundary int
}

// AcceptanceRate returns Accepted/(Accepted+Rejected), or 0 when no
// post-burn-in transitions were counted.
func (r *Result) AcceptanceRate() float64 {
	total := r.Accepted + r.Rejected
	if total == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(total)
}

// New validates cfg against target and builds a chain seeded from
// cfg.Seed. All configuration errors surface here, never mid-run.
func New(cfg Config, target Target) (*Chain, error) {
	if err := cfg.Validate(target); err != nil {
		return nil, err
	}
	src := rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed))
	proposal, err := NewGaussianProposal(cfg.StepSD, src)
	if err != nil {
		return nil, err
	}
	return &Chain{
		target:   target,
		proposal: proposal,
		uniform:  rand.New(src),
		cfg:      cfg,
	}, nil
}

// Run executes the random walk and returns the full trajectory with
// accept/reject counters.
//
// Cancellation: the context is checked between steps. On cancellation the
// trajectory generated so far is returned alongside ctx.Err() - every prefix
// of a chain is itself a valid (shorter) chain sample.
func (c *Chain) Run(ctx context.Context) (*Result, error) {
	boundary := c.cfg.Boundary()
	trajectory := make([][]float64, 1, c.cfg.Steps)
	trajectory[0] = slices.Clone(c.cfg.Start)

	current := trajectory[0]
	currentProb := c.target.Prob(current)
	accepted, rejected := 0, 0

	for i := 1; i < c.cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return &Result{Trajectory: trajectory, Accepted: accepted, Rejected: rejected, Boundary: boundary}, err
		}

		// Draw order is fixed: proposal first, uniform second.
		proposed := c.proposal.Propose(current)
		proposedProb := c.target.Prob(proposed)

		// Guard the zero-density current state: treat the ratio as 0 and
		// reject rather than propagating NaN into the chain. A validated
		// start makes this unreachable, but the guard is load-bearing for
		// arbitrary targets.
		ratio := 0.0
		if currentProb > 0 {
			ratio = math.Min(1, proposedProb/currentProb)
		}

		u := c.uniform.Float64()
		if u < ratio {
			current = proposed
			currentProb = proposedProb
			if i > boundary {
				accepted++
			}
		} else {
			// Rejection repeats the current state. The repeat is part of
			// the stationary-distribution sample, not an omission.
			if i > boundary {
				rejected++
			}
		}
		trajectory = append(trajectory, slices.Clone(current))
	}

	return &Result{
		Trajectory: trajectory,
		Accepted:   accepted,
		Rejected:   rejected,
		Boundary:   boundary,
	}, nil
}
