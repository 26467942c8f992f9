package sampler

import (
	"math"
)

// Config holds everything a chain run needs besides the target itself.
// All values come from the caller at setup time; none are adjusted mid-run.
type Config struct {
	// Steps is the trajectory length, including the seed state at index 0.
	Steps int

	// Start is the initial position. It must lie inside the target's domain
	// with strictly positive density.
	Start []float64

	// BurnInFraction in [0,1) determines the burn-in boundary:
	// ceil(BurnInFraction * Steps).
	BurnInFraction float64

	// StepSD holds the per-dimension proposal step standard deviations.
	// The proposal covariance is diag(StepSD[i]^2).
	StepSD []float64

	// Seed fixes all randomness for the run. Two runs with identical Config
	// and target produce bit-identical trajectories.
	Seed int64

	// CredMass in (0,1) is the credibility mass used when extracting the
	// highest-density region from the finished trajectory.
	CredMass float64
}

// Boundary returns the burn-in boundary index: ceil(BurnInFraction * Steps).
// Trajectory indices below the boundary are discarded by summarization, and
// accept/reject counters only tally transitions past it.
func (c Config) Boundary() int {
	return int(math.Ceil(c.BurnInFraction * float64(c.Steps)))
}

// Validate checks the configuration against the given target and returns a
// *ConfigError describing the first violation found, or nil.
//
// Checks, in order: positive length, dimension agreement, finite in-domain
// start with positive density, burn-in fraction range (and that the boundary
// leaves at least one post-burn-in state), positive finite step SDs, and
// cred mass range.
func (c Config) Validate(target Target) error {
	if target == nil {
		return newConfigError("target", "target density is required")
	}
	if c.Steps <= 0 {
		return newConfigError("steps", "trajectory length must be positive, got %d", c.Steps)
	}
	dim := target.Dim()
	if dim <= 0 {
		return newConfigError("target", "target dimension must be positive, got %d", dim)
	}
	if len(c.Start) != dim {
		return newConfigError("start", "got %d coordinates, target has dimension %d", len(c.Start), dim)
	}
	for i, v := range c.Start {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return newConfigError("start", "coordinate %d is not finite: %v", i, v)
		}
	}
	if p := target.Prob(c.Start); p <= 0 {
		return newConfigError("start", "density at start %v is %v; start must lie inside the target domain with positive density", c.Start, p)
	}
	if c.BurnInFraction < 0 || c.BurnInFraction >= 1 {
		return newConfigError("burn_in_fraction", "must be in [0,1), got %v", c.BurnInFraction)
	}
	if b := c.Boundary(); b >= c.Steps {
		// Possible when ceil rounds a sub-1 fraction of a short trajectory
		// up to the full length.
		return newConfigError("burn_in_fraction", "burn-in boundary %d consumes the whole %d-step trajectory", b, c.Steps)
	}
	if len(c.StepSD) != dim {
		return newConfigError("step_sd", "got %d step SDs, target has dimension %d", len(c.StepSD), dim)
	}
	for i, sd := range c.StepSD {
		if !(sd > 0) || math.IsInf(sd, 0) {
			return newConfigError("step_sd", "dimension %d: step SD must be positive and finite, got %v (covariance would not be positive-definite)", i, sd)
		}
	}
	if !(c.CredMass > 0 && c.CredMass < 1) {
		return newConfigError("cred_mass", "must be in (0,1), got %v", c.CredMass)
	}
	return nil
}
