package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertSpecGolden compares the canonical JSON of a scenario's resolved
// spec against a golden file in testdata/golden/{scenario.Name}.golden.
//
// The canonical JSON is the config-hash preimage, so these golden files
// pin run identity: a diff here means previously stored runs would no
// longer replay-verify against specs loaded by the new code.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertSpecGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	specJSON, err := scenario.Spec.CanonicalJSON()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, specJSON)

	return nil
}
