// Package store provides SQLite-backed persistence for sampling runs.
//
// Three tables:
//   - runs: one row per run - resolved spec JSON, content hashes, seed,
//     counters, engine version
//   - points: the trajectory, one row per (step, dimension) coordinate
//   - summaries: the derived posterior summary for a run
//
// Determinism conventions carried throughout:
//   - Run identity is content-addressed where it matters: config_hash and
//     trajectory_hash are canonical-JSON SHA-256 digests, so replay can
//     verify reproducibility by hash comparison alone.
//   - All trajectory reads ORDER BY step ASC, dim ASC - read-back order is
//     identical across connections and replays.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: points and summaries cascade with their run
package store
