package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Proposal generates candidate positions for the random walk.
//
// CONTRACT: the perturbation distribution must be symmetric around zero
// (density(d) == density(-d)). The chain applies the plain Metropolis
// acceptance ratio with no Hastings correction, which is only valid for
// symmetric proposals.
type Proposal interface {
	// Propose returns a fresh candidate position given the current one.
	// The current slice is not modified.
	Propose(current []float64) []float64
}

// GaussianProposal perturbs the current position with a draw from a
// zero-mean multivariate normal with fixed covariance. Gaussians are
// symmetric around their mean, satisfying the Proposal contract.
type GaussianProposal struct {
	dist *distmv.Normal
	dim  int
}

// NewGaussianProposal builds a proposal with diagonal covariance
// diag(stepSD[i]^2). All draws come from src, so the caller controls the
// random stream shared with the chain's accept/reject draws.
func NewGaussianProposal(stepSD []float64, src rand.Source) (*GaussianProposal, error) {
	dim := len(stepSD)
	if dim == 0 {
		return nil, newConfigError("step_sd", "at least one dimension required")
	}
	sigma := mat.NewSymDense(dim, nil)
	for i, sd := range stepSD {
		if !(sd > 0) || math.IsInf(sd, 0) {
			return nil, newConfigError("step_sd", "dimension %d: step SD must be positive and finite, got %v", i, sd)
		}
		sigma.SetSym(i, i, sd*sd)
	}
	return NewGaussianProposalCov(sigma, src)
}

// NewGaussianProposalCov builds a proposal from a full covariance matrix.
// The matrix must be symmetric positive-definite.
func NewGaussianProposalCov(sigma mat.Symmetric, src rand.Source) (*GaussianProposal, error) {
	dim := sigma.SymmetricDim()
	mu := make([]float64, dim)
	dist, ok := distmv.NewNormal(mu, sigma, src)
	if !ok {
		return nil, newConfigError("covariance", "matrix is not positive-definite")
	}
	return &GaussianProposal{dist: dist, dim: dim}, nil
}

// Dim returns the proposal dimensionality.
func (p *GaussianProposal) Dim() int { return p.dim }

// Propose implements Proposal. It draws one perturbation vector from the
// configured normal and adds it to current.
func (p *GaussianProposal) Propose(current []float64) []float64 {
	if len(current) != p.dim {
		panic(fmt.Sprintf("sampler: propose called with %d coordinates, proposal has dimension %d", len(current), p.dim))
	}
	jump := p.dist.Rand(nil)
	out := make([]float64, p.dim)
	for i := range out {
		out[i] = current[i] + jump[i]
	}
	return out
}
