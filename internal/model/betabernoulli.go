package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Experiment is one observed Bernoulli experiment: Successes heads out of
// Trials flips. One experiment drives one parameter dimension.
type Experiment struct {
	Successes int
	Trials    int
}

// BetaPrior holds the Beta(Alpha, Beta) prior hyperparameters for one
// parameter dimension.
type BetaPrior struct {
	Alpha float64
	Beta  float64
}

// BetaBernoulli is the posterior density over per-dimension success
// probabilities: independent Bernoulli-sequence likelihoods times
// independent Beta priors. Valid domain is [0,1] per dimension; Prob returns
// exactly 0 outside it.
//
// The likelihood is the Bernoulli sequence probability
// theta^z * (1-theta)^(N-z), with no binomial coefficient: the data are an
// ordered flip sequence, so the density is properly normalized over the data
// space and BetaBernoulli implements sampler.NormalizedTarget.
type BetaBernoulli struct {
	experiments []Experiment
	priors      []distuv.Beta
}

// NewBetaBernoulli validates the experiments and priors (one of each per
// dimension) and builds the posterior target.
func NewBetaBernoulli(experiments []Experiment, priors []BetaPrior) (*BetaBernoulli, error) {
	if len(experiments) == 0 {
		return nil, fmt.Errorf("model: at least one experiment required")
	}
	if len(priors) != len(experiments) {
		return nil, fmt.Errorf("model: %d priors for %d experiments", len(priors), len(experiments))
	}
	dists := make([]distuv.Beta, len(priors))
	for i, e := range experiments {
		if e.Trials <= 0 {
			return nil, fmt.Errorf("model: experiment %d: trials must be positive, got %d", i, e.Trials)
		}
		if e.Successes < 0 || e.Successes > e.Trials {
			return nil, fmt.Errorf("model: experiment %d: successes %d outside [0,%d]", i, e.Successes, e.Trials)
		}
		p := priors[i]
		if !(p.Alpha > 0) || !(p.Beta > 0) {
			return nil, fmt.Errorf("model: prior %d: shape parameters must be positive, got Beta(%v,%v)", i, p.Alpha, p.Beta)
		}
		dists[i] = distuv.Beta{Alpha: p.Alpha, Beta: p.Beta}
	}
	return &BetaBernoulli{experiments: experiments, priors: dists}, nil
}

// Dim implements sampler.Target.
func (m *BetaBernoulli) Dim() int { return len(m.experiments) }

// Prob implements sampler.Target: likelihood times prior, exactly 0 when any
// coordinate leaves [0,1].
func (m *BetaBernoulli) Prob(theta []float64) float64 {
	if len(theta) != len(m.experiments) {
		return 0
	}
	for _, t := range theta {
		if !(t >= 0 && t <= 1) {
			return 0
		}
	}
	p := 1.0
	for i, e := range m.experiments {
		t := theta[i]
		z := float64(e.Successes)
		n := float64(e.Trials)
		p *= math.Pow(t, z) * math.Pow(1-t, n-z)
		p *= m.priors[i].Prob(t)
	}
	return p
}

// Normalized implements sampler.NormalizedTarget: the Bernoulli-sequence
// likelihood and the Beta prior pdf are both properly normalized.
func (m *BetaBernoulli) Normalized() {}

// Posterior returns the exact conjugate posterior for dimension d:
// Beta(z+a, N-z+b).
func (m *BetaBernoulli) Posterior(d int) distuv.Beta {
	e := m.experiments[d]
	prior := m.priors[d]
	return distuv.Beta{
		Alpha: float64(e.Successes) + prior.Alpha,
		Beta:  float64(e.Trials-e.Successes) + prior.Beta,
	}
}

// PosteriorMean returns the exact posterior mean per dimension:
// (z+a)/(N+a+b).
func (m *BetaBernoulli) PosteriorMean() []float64 {
	mean := make([]float64, len(m.experiments))
	for d := range m.experiments {
		post := m.Posterior(d)
		mean[d] = post.Alpha / (post.Alpha + post.Beta)
	}
	return mean
}

// MarginalLikelihood returns the exact model evidence p(Data): the product
// over dimensions of B(z+a, N-z+b) / B(a,b).
func (m *BetaBernoulli) MarginalLikelihood() float64 {
	p := 1.0
	for d, e := range m.experiments {
		prior := m.priors[d]
		z := float64(e.Successes)
		n := float64(e.Trials)
		p *= math.Exp(logBeta(z+prior.Alpha, n-z+prior.Beta) - logBeta(prior.Alpha, prior.Beta))
	}
	return p
}

// logBeta returns ln B(a,b) for a,b > 0.
func logBeta(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}
