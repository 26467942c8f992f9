package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/mcwalk/internal/store"
	"github.com/roach88/mcwalk/internal/summary"
)

// RunReport is the caller-facing record of a completed run: identifiers,
// counters, and the posterior summary. It renders as JSON via the formatter
// envelope and as aligned text via String.
type RunReport struct {
	RunID          string    `json:"run_id"`
	Name           string    `json:"name"`
	ConfigHash     string    `json:"config_hash"`
	TrajectoryHash string    `json:"trajectory_hash"`
	Steps          int       `json:"steps"`
	Boundary       int       `json:"boundary"`
	Accepted       int       `json:"accepted"`
	Rejected       int       `json:"rejected"`
	AcceptanceRate float64   `json:"acceptance_rate"`
	Mean           []float64 `json:"mean"`
	Std            []float64 `json:"std"`
	Evidence       *float64  `json:"evidence,omitempty"`
	CredMass       float64   `json:"cred_mass"`
	Waterline      float64   `json:"waterline"`
	HDICount       int       `json:"hdi_count"`
}

// String renders the report for text output.
func (r RunReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s)\n", r.RunID, r.Name)
	fmt.Fprintf(&b, "  config hash:     %s\n", r.ConfigHash)
	fmt.Fprintf(&b, "  trajectory hash: %s\n", r.TrajectoryHash)
	fmt.Fprintf(&b, "  steps:           %d (burn-in boundary %d)\n", r.Steps, r.Boundary)
	fmt.Fprintf(&b, "  accepted/rejected: %d/%d (rate %.3f)\n", r.Accepted, r.Rejected, r.AcceptanceRate)
	fmt.Fprintf(&b, "  mean:            %v\n", r.Mean)
	fmt.Fprintf(&b, "  std:             %v\n", r.Std)
	if r.Evidence != nil {
		fmt.Fprintf(&b, "  evidence p(D):   %.6e\n", *r.Evidence)
	} else {
		fmt.Fprintf(&b, "  evidence p(D):   unavailable (degenerate sample)\n")
	}
	fmt.Fprintf(&b, "  HDI (mass %.2f): %d points above waterline %.6e", r.CredMass, r.HDICount, r.Waterline)
	return b.String()
}

// buildReport assembles a RunReport from the persisted run and a computed
// summary.
func buildReport(name string, run store.Run, s *summary.Summary) RunReport {
	report := RunReport{
		RunID:          run.ID,
		Name:           name,
		ConfigHash:     run.ConfigHash,
		TrajectoryHash: run.TrajectoryHash,
		Steps:          run.Steps,
		Boundary:       run.Boundary,
		Accepted:       run.Accepted,
		Rejected:       run.Rejected,
		Mean:           s.Mean,
		Std:            s.Std,
		CredMass:       s.CredMass,
		Waterline:      s.Waterline,
		HDICount:       len(s.HDIPoints),
	}
	if total := run.Accepted + run.Rejected; total > 0 {
		report.AcceptanceRate = float64(run.Accepted) / float64(total)
	}
	if s.EvidenceOK {
		v := s.Evidence
		report.Evidence = &v
	}
	return report
}
