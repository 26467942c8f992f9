package summary

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/mcwalk/internal/sampler"
)

// Evidence estimates the marginal likelihood p(Data) from the trimmed
// trajectory by self-normalized importance sampling.
//
// Each dimension's marginal is moment-matched to a Beta(a,b) reference:
//
//	a = m * ((m(1-m)/s^2) - 1)
//	b = (1-m) * ((m(1-m)/s^2) - 1)
//
// For every trimmed point the weight is the product of reference pdfs
// divided by target.Prob(point); the estimate is 1/mean(weight). The match
// is a useful reference choice when the likelihood is binomial-like.
//
// The target must be properly normalized - a merely proportional density
// would fold its unknown constant into the estimate, which is why the
// parameter is sampler.NormalizedTarget and not sampler.Target.
//
// Returns a *DegeneracyError when a dimension has zero variance or the
// matched shape parameters are not positive (s^2 >= m(1-m)).
func Evidence(trimmed [][]float64, target sampler.NormalizedTarget, mean, std []float64) (float64, error) {
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("summary: empty trajectory")
	}
	dim := len(mean)
	if len(std) != dim {
		return 0, fmt.Errorf("summary: got %d means and %d standard deviations", dim, len(std))
	}

	reference := make([]distuv.Beta, dim)
	for d := 0; d < dim; d++ {
		m, s := mean[d], std[d]
		if s == 0 {
			return 0, &DegeneracyError{Dim: d, Mean: m, Std: s, Reason: "zero variance"}
		}
		k := m*(1-m)/(s*s) - 1
		a := m * k
		b := (1 - m) * k
		if !(a > 0) || !(b > 0) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			return 0, &DegeneracyError{
				Dim:    d,
				Mean:   m,
				Std:    s,
				Reason: fmt.Sprintf("moment-matched shape Beta(%v,%v) is not positive", a, b),
			}
		}
		reference[d] = distuv.Beta{Alpha: a, Beta: b}
	}

	var sum float64
	for _, point := range trimmed {
		p := target.Prob(point)
		if p <= 0 {
			// Chain-generated points always have positive density; anything
			// else means the caller fed a foreign trajectory.
			return 0, fmt.Errorf("summary: trimmed point %v has non-positive target density %v", point, p)
		}
		w := 1.0
		for d := 0; d < dim; d++ {
			w *= reference[d].Prob(point[d])
		}
		sum += w / p
	}

	meanWeight := sum / float64(len(trimmed))
	if !(meanWeight > 0) || math.IsInf(meanWeight, 0) {
		return 0, fmt.Errorf("summary: importance weights degenerate, mean weight %v", meanWeight)
	}
	return 1 / meanWeight, nil
}
