package sampler

// Target is an unnormalized density over a fixed-dimension parameter space.
//
// Prob may be known only up to a multiplicative constant - the chain needs
// proportionality, nothing more. The contract that makes domain handling
// work: Prob returns exactly 0 for any point outside the target's valid
// domain. Out-of-domain proposals then have acceptance ratio 0 and invalid
// states are permanently unreachable.
type Target interface {
	// Dim returns the dimensionality of the parameter space.
	Dim() int

	// Prob returns the non-negative unnormalized density at theta.
	// Must return exactly 0 outside the valid domain.
	Prob(theta []float64) float64
}

// NormalizedTarget is a Target whose Prob is the properly normalized
// likelihood times prior, not merely proportional to it.
//
// The chain itself never needs normalization, but the evidence estimator
// does: importance weights computed against a merely proportional density
// would carry the unknown constant into the estimate. The marker method
// keeps the two capabilities distinct at the type level.
type NormalizedTarget interface {
	Target

	// Normalized marks the density as properly normalized. Implementations
	// assert, by providing this method, that Prob integrates the data
	// dimension away exactly (no dropped constants).
	Normalized()
}
