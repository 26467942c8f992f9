package sampler

// EngineVersion identifies the chain implementation recorded with each
// persisted run. Bumped on any change that can alter the trajectory produced
// for a fixed seed (RNG, draw order, proposal construction).
const EngineVersion = "0.1.0"
