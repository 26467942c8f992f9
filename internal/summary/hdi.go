package summary

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/mcwalk/internal/sampler"
)

// HDIPoints approximates the credMass highest-density region of the target
// over the trimmed trajectory.
//
// The target density is evaluated at every trimmed point; the waterline is
// the credMass quantile of those values, and the returned points are those
// whose density strictly exceeds it. Raising credMass never lowers the
// waterline and never grows the point set.
//
// This is threshold-based, not contour-based: the result approximates the
// HDI and can be non-convex or disconnected. Returned point slices alias the
// trimmed trajectory.
func HDIPoints(trimmed [][]float64, target sampler.Target, credMass float64) (points [][]float64, waterline float64, err error) {
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("summary: empty trajectory")
	}
	if !(credMass > 0 && credMass < 1) {
		return nil, 0, fmt.Errorf("summary: cred mass must be in (0,1), got %v", credMass)
	}

	densities := make([]float64, len(trimmed))
	for i, point := range trimmed {
		densities[i] = target.Prob(point)
	}

	sorted := make([]float64, len(densities))
	copy(sorted, densities)
	sort.Float64s(sorted)
	waterline = stat.Quantile(credMass, stat.Empirical, sorted, nil)

	for i, point := range trimmed {
		if densities[i] > waterline {
			points = append(points, point)
		}
	}
	return points, waterline, nil
}
