// Package summary derives point estimates, a model-evidence estimate, and a
// highest-density region from a finished sampler trajectory.
//
// All functions consume the trajectory post burn-in (see Trim) and treat it
// as read-only. A Summary is computed once from a finalized trajectory and
// never mutated.
//
// The evidence estimator is self-normalized importance sampling against a
// per-dimension moment-matched Beta reference, so it requires a properly
// normalized target (sampler.NormalizedTarget) - unlike the chain, which
// only ever needs proportionality.
//
// The HDI extraction thresholds evaluated densities at a quantile waterline.
// That approximates the highest-density region; it is not an exact HDI and
// the returned point set can be disconnected.
package summary
