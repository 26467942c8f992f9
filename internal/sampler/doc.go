// Package sampler implements a fixed-covariance Gaussian random-walk
// Metropolis chain over an arbitrary unnormalized target density.
//
// ARCHITECTURE:
//
// Single-Threaded Chain:
// The chain is serially dependent by construction - each state depends on
// the previous one - so the loop runs in a single goroutine. This ensures:
// - Bit-for-bit reproducible trajectories for a fixed seed
// - A fixed random-draw order per step (proposal vector, then uniform)
// - Simple reasoning about the stationary distribution
//
// Step Transition Flow:
// 1. Proposal drawn from a zero-mean multivariate normal (symmetric, so the
//    plain Metropolis ratio needs no Hastings correction)
// 2. ratio = min(1, target(proposed)/target(current))
// 3. Uniform u drawn; accept iff u < ratio
// 4. Rejected steps record the repeated current state - repeated states are
//    part of the sample, not a no-op
//
// Domain handling is delegated entirely to the target: a Target returns
// exactly 0 outside its valid domain, which gives out-of-domain proposals an
// acceptance ratio of 0. The chain never special-cases domain membership.
//
// All configuration problems (non-positive length, start with zero density,
// non-positive-definite covariance) are rejected at construction time, never
// mid-run.
package sampler
