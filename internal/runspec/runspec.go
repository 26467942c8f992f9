// Package runspec defines the resolved run specification shared by the CLI
// (which decodes it from CUE and stores it with each run) and the test
// harness (which decodes it from scenario YAML).
package runspec

import (
	"github.com/roach88/mcwalk/internal/canonical"
	"github.com/roach88/mcwalk/internal/model"
	"github.com/roach88/mcwalk/internal/sampler"
)

// RunSpec is a fully resolved run specification: the model to sample from
// and the sampler configuration. It round-trips through CUE spec files,
// scenario YAML, the canonical-JSON config hash, and the spec column of
// stored runs.
type RunSpec struct {
	Name    string      `json:"name" yaml:"name"`
	Model   ModelSpec   `json:"model" yaml:"model"`
	Sampler SamplerSpec `json:"sampler" yaml:"sampler"`
}

// ModelSpec configures a Beta-Bernoulli posterior target: one experiment and
// one prior per parameter dimension.
type ModelSpec struct {
	Experiments []ExperimentSpec `json:"experiments" yaml:"experiments"`
	Priors      []PriorSpec      `json:"priors" yaml:"priors"`
}

// ExperimentSpec is one observed Bernoulli experiment.
type ExperimentSpec struct {
	Successes int `json:"successes" yaml:"successes"`
	Trials    int `json:"trials" yaml:"trials"`
}

// PriorSpec holds Beta prior hyperparameters for one dimension.
type PriorSpec struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
}

// SamplerSpec mirrors sampler.Config field for field.
type SamplerSpec struct {
	Steps          int       `json:"steps" yaml:"steps"`
	Start          []float64 `json:"start" yaml:"start"`
	BurnInFraction float64   `json:"burnInFraction" yaml:"burnInFraction"`
	StepSD         []float64 `json:"stepSD" yaml:"stepSD"`
	Seed           int64     `json:"seed" yaml:"seed"`
	CredMass       float64   `json:"credMass" yaml:"credMass"`
}

// BuildModel constructs the posterior target described by the spec.
func (s *RunSpec) BuildModel() (*model.BetaBernoulli, error) {
	experiments := make([]model.Experiment, len(s.Model.Experiments))
	for i, e := range s.Model.Experiments {
		experiments[i] = model.Experiment{Successes: e.Successes, Trials: e.Trials}
	}
	priors := make([]model.BetaPrior, len(s.Model.Priors))
	for i, p := range s.Model.Priors {
		priors[i] = model.BetaPrior{Alpha: p.Alpha, Beta: p.Beta}
	}
	return model.NewBetaBernoulli(experiments, priors)
}

// SamplerConfig converts the spec's sampler section to a sampler.Config.
func (s *RunSpec) SamplerConfig() sampler.Config {
	return sampler.Config{
		Steps:          s.Sampler.Steps,
		Start:          s.Sampler.Start,
		BurnInFraction: s.Sampler.BurnInFraction,
		StepSD:         s.Sampler.StepSD,
		Seed:           s.Sampler.Seed,
		CredMass:       s.Sampler.CredMass,
	}
}

// CanonicalMap renders the spec as a canonical-JSON-compatible map. Field
// names match the CUE spec fields, so the spec file, the stored spec column
// and the config hash all speak one naming scheme.
func (s *RunSpec) CanonicalMap() map[string]any {
	experiments := make([]any, len(s.Model.Experiments))
	for i, e := range s.Model.Experiments {
		experiments[i] = map[string]any{
			"successes": int64(e.Successes),
			"trials":    int64(e.Trials),
		}
	}
	priors := make([]any, len(s.Model.Priors))
	for i, p := range s.Model.Priors {
		priors[i] = map[string]any{
			"alpha": p.Alpha,
			"beta":  p.Beta,
		}
	}
	return map[string]any{
		"name": s.Name,
		"model": map[string]any{
			"experiments": experiments,
			"priors":      priors,
		},
		"sampler": map[string]any{
			"steps":          int64(s.Sampler.Steps),
			"start":          s.Sampler.Start,
			"burnInFraction": s.Sampler.BurnInFraction,
			"stepSD":         s.Sampler.StepSD,
			"seed":           s.Sampler.Seed,
			"credMass":       s.Sampler.CredMass,
		},
	}
}

// CanonicalJSON renders the spec as canonical JSON bytes.
func (s *RunSpec) CanonicalJSON() ([]byte, error) {
	return canonical.Marshal(s.CanonicalMap())
}

// ConfigHash computes the content-addressed identity of the spec.
func (s *RunSpec) ConfigHash() (string, error) {
	return canonical.RunConfigHash(s.CanonicalMap())
}
