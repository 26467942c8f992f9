package store

// Run is the persisted record of one sampling run.
type Run struct {
	// ID is a UUIDv7 assigned when the run is written.
	ID string

	// CreatedAt is the unix-seconds creation time. Informational only -
	// nothing orders or hashes on wall time.
	CreatedAt int64

	// Spec is the resolved run specification as canonical JSON. Replay
	// reconstructs the model and sampler config from it.
	Spec string

	// ConfigHash is the content hash of the resolved configuration.
	ConfigHash string

	// Seed, Steps and Boundary mirror the sampler configuration for cheap
	// querying without parsing Spec.
	Seed     int64
	Steps    int
	Boundary int

	// Accepted and Rejected are the post-burn-in counters.
	Accepted int
	Rejected int

	// TrajectoryHash is the content hash of the full trajectory; replay
	// verification compares against it.
	TrajectoryHash string

	// EngineVersion records which sampler produced the run.
	EngineVersion string
}

// SummaryRecord is the persisted posterior summary for a run.
type SummaryRecord struct {
	RunID string

	// Mean and Std are per-dimension moments.
	Mean []float64
	Std  []float64

	// Evidence is nil when the moment match was degenerate and the estimate
	// could not be computed.
	Evidence *float64

	CredMass  float64
	Waterline float64
	HDICount  int
}
