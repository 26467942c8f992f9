// Package model provides concrete posterior targets for the sampler.
//
// The only model currently shipped is BetaBernoulli: independent Bernoulli
// experiments with conjugate Beta priors, one experiment per parameter
// dimension. The model doubles as a test oracle - conjugacy gives the exact
// posterior, posterior mean, and marginal likelihood in closed form.
package model
