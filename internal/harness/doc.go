// Package harness provides a scenario-driven conformance harness for the
// sampler and summary pipeline.
//
// Scenarios are YAML files pairing a resolved run spec with statistical
// expectations. The harness runs the full pipeline in-process — build the
// posterior target, run the chain, trim burn-in, compute the summary — and
// evaluates the expectations against the result.
//
// Two kinds of checks are supported:
//
//   - Statistical expectations (posterior mean, acceptance rate, evidence)
//     are tolerance-based. The chain is seeded, so a scenario that passes
//     once passes forever, but tolerances are chosen so the checks would
//     also hold for neighboring seeds.
//   - Golden files snapshot the canonical JSON of the resolved spec. They
//     pin the spec wire format and the config-hash preimage, which must not
//     drift between releases.
package harness
