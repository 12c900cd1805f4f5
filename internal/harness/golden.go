package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/photoduel/internal/battle"
)

// RunWithGolden executes a scenario and compares the final standings
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// The snapshot uses the canonical standings serialization, so the golden
// bytes are stable across runs and platforms. To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	snapshot, err := battle.MarshalStandings(scenario.Name, result.Standings)
	if err != nil {
		t.Fatalf("scenario %s: marshal standings: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)
}
