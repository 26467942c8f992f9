package summary

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/mcwalk/internal/sampler"
)

// Summary is the immutable post-run record derived from a trimmed
// trajectory.
type Summary struct {
	// Mean and Std hold the per-dimension sample mean and population
	// standard deviation.
	Mean []float64
	Std  []float64

	// Evidence is the importance-sampled estimate of the marginal
	// likelihood p(Data). EvidenceOK is false when the sample was too
	// degenerate to moment-match (see DegeneracyError).
	Evidence   float64
	EvidenceOK bool

	// CredMass is the credibility mass the HDI was extracted at.
	CredMass float64

	// Waterline is the density threshold: the CredMass quantile of the
	// target density evaluated at every trimmed point.
	Waterline float64

	// HDIPoints are the trimmed points whose density strictly exceeds the
	// waterline. Thresholding approximates the highest-density region; the
	// set can be disconnected.
	HDIPoints [][]float64
}

// Trim drops the burn-in prefix [0, boundary) and returns the rest. The
// returned slice aliases trajectory; callers treat both as read-only.
func Trim(trajectory [][]float64, boundary int) [][]float64 {
	if boundary < 0 {
		boundary = 0
	}
	if boundary >= len(trajectory) {
		return nil
	}
	return trajectory[boundary:]
}

// Moments returns the per-dimension arithmetic mean and population standard
// deviation of the trimmed trajectory.
func Moments(trimmed [][]float64) (mean, std []float64, err error) {
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("summary: empty trajectory")
	}
	dim := len(trimmed[0])
	mean = make([]float64, dim)
	std = make([]float64, dim)
	col := make([]float64, len(trimmed))
	for d := 0; d < dim; d++ {
		for i, point := range trimmed {
			col[i] = point[d]
		}
		mean[d] = stat.Mean(col, nil)
		// Population variance: second central moment, divisor n.
		std[d] = math.Sqrt(stat.MomentAbout(2, col, mean[d], nil))
	}
	return mean, std, nil
}

// Compute assembles the full Summary from a trimmed trajectory.
//
// A degenerate moment match disables the evidence estimate (EvidenceOK
// false) but does not fail the summary; any other error does. Pass a target
// that is merely proportional via sampler.Target and Compute will skip the
// evidence estimate entirely - it is only attempted when the target is a
// sampler.NormalizedTarget.
func Compute(trimmed [][]float64, target sampler.Target, credMass float64) (*Summary, error) {
	mean, std, err := Moments(trimmed)
	if err != nil {
		return nil, err
	}

	points, waterline, err := HDIPoints(trimmed, target, credMass)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Mean:      mean,
		Std:       std,
		CredMass:  credMass,
		Waterline: waterline,
		HDIPoints: points,
	}

	if normalized, ok := target.(sampler.NormalizedTarget); ok {
		evidence, err := Evidence(trimmed, normalized, mean, std)
		switch {
		case err == nil:
			s.Evidence = evidence
			s.EvidenceOK = true
		case IsDegeneracyError(err):
			// Surfaced via EvidenceOK; moments and HDI stay valid.
		default:
			return nil, err
		}
	}

	return s, nil
}
