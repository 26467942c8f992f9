package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashes. The version suffix leaves
// room for algorithm migration without ambiguity.
const (
	DomainRunConfig  = "mcwalk/runconfig/v1"
	DomainTrajectory = "mcwalk/trajectory/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null separator prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RunConfigHash computes the content-addressed identity of a run
// configuration. Two runs with equal hashes were configured identically, so
// a deterministic sampler must reproduce their trajectories exactly.
func RunConfigHash(config map[string]any) (string, error) {
	data, err := Marshal(config)
	if err != nil {
		return "", fmt.Errorf("run config hash: %w", err)
	}
	return hashWithDomain(DomainRunConfig, data), nil
}

// TrajectoryHash computes the content-addressed identity of a full
// trajectory: every point, every coordinate, in order. Replay verification
// compares this hash between the stored run and a fresh re-run.
func TrajectoryHash(trajectory [][]float64) (string, error) {
	points := make([]any, len(trajectory))
	for i, p := range trajectory {
		points[i] = p
	}
	data, err := Marshal(points)
	if err != nil {
		return "", fmt.Errorf("trajectory hash: %w", err)
	}
	return hashWithDomain(DomainTrajectory, data), nil
}
