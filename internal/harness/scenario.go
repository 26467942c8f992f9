package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mcwalk/internal/runspec"
)

// Scenario defines a conformance test scenario: a fully resolved run spec
// plus the statistical expectations its run must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name, so keep it filesystem-safe.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the run specification to execute, inline.
	Spec runspec.RunSpec `yaml:"spec"`

	// Expect holds the checks evaluated against the run result.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies expected run behavior. Zero-valued checks are
// skipped, so scenarios only pay for what they assert.
type ExpectClause struct {
	// Mean is the expected posterior mean per dimension.
	// Checked within MeanTolerance when non-empty.
	Mean []float64 `yaml:"mean,omitempty"`

	// MeanTolerance is the absolute tolerance for the Mean check.
	// Required when Mean is set.
	MeanTolerance float64 `yaml:"meanTolerance,omitempty"`

	// AcceptanceRate bounds the post-burn-in acceptance rate.
	AcceptanceRate *RateBounds `yaml:"acceptanceRate,omitempty"`

	// Evidence is the expected evidence estimate (typically the analytic
	// marginal likelihood). Checked within EvidenceRelTolerance relative
	// error when positive.
	Evidence float64 `yaml:"evidence,omitempty"`

	// EvidenceRelTolerance is the relative tolerance for the Evidence
	// check. Required when Evidence is set.
	EvidenceRelTolerance float64 `yaml:"evidenceRelTolerance,omitempty"`

	// HDIContains lists points that must fall inside the HDI point set,
	// per dimension within HDITolerance of some retained sample.
	HDIContains [][]float64 `yaml:"hdiContains,omitempty"`

	// HDITolerance is the per-dimension tolerance for HDIContains.
	HDITolerance float64 `yaml:"hdiTolerance,omitempty"`
}

// RateBounds is an inclusive interval check.
type RateBounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and coherent.
// Spec semantics (positive step sizes, start inside the domain, ...) are
// left to sampler.Config.Validate at run time.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Spec.Name == "" {
		return fmt.Errorf("spec.name is required")
	}

	if len(s.Spec.Model.Experiments) == 0 {
		return fmt.Errorf("spec.model.experiments is required and must be non-empty")
	}

	if len(s.Expect.Mean) > 0 && s.Expect.MeanTolerance <= 0 {
		return fmt.Errorf("expect.meanTolerance must be positive when expect.mean is set")
	}

	if len(s.Expect.Mean) > 0 && len(s.Expect.Mean) != len(s.Spec.Model.Experiments) {
		return fmt.Errorf("expect.mean has %d entries, spec has %d dimensions",
			len(s.Expect.Mean), len(s.Spec.Model.Experiments))
	}

	if b := s.Expect.AcceptanceRate; b != nil {
		if b.Min < 0 || b.Max > 1 || b.Min > b.Max {
			return fmt.Errorf("expect.acceptanceRate bounds [%v, %v] are not a sub-interval of [0, 1]", b.Min, b.Max)
		}
	}

	if s.Expect.Evidence != 0 && s.Expect.EvidenceRelTolerance <= 0 {
		return fmt.Errorf("expect.evidenceRelTolerance must be positive when expect.evidence is set")
	}

	if len(s.Expect.HDIContains) > 0 && s.Expect.HDITolerance <= 0 {
		return fmt.Errorf("expect.hdiTolerance must be positive when expect.hdiContains is set")
	}

	return nil
}
