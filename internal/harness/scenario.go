package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a battle test scenario.
//
// A scenario seeds a session with named photos, drives the engine through
// a flow of votes, merges and removals, and compares the final standings
// against a golden file. Step ids reference the photo names directly, so
// scenarios and golden files stay human-readable.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the session id
	// and the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Photos lists the contestant ids seeded before the flow runs. Each
	// starts at the initial rating with zero votes.
	Photos []string `yaml:"photos"`

	// Flow contains the steps to execute in order.
	Flow []FlowStep `yaml:"flow"`
}

// FlowStep is one engine operation. Exactly one of Vote, Merge or Remove
// must be set.
type FlowStep struct {
	Vote   *VoteStep   `yaml:"vote,omitempty"`
	Merge  *MergeStep  `yaml:"merge,omitempty"`
	Remove *RemoveStep `yaml:"remove,omitempty"`

	// Expect names the error code the step must fail with
	// (e.g. "ALREADY_MERGED", "PHOTO_NOT_FOUND"). Empty means the step
	// must succeed.
	Expect string `yaml:"expect,omitempty"`
}

// VoteStep records a pairwise outcome.
type VoteStep struct {
	Winner string `yaml:"winner"`
	Loser  string `yaml:"loser"`
}

// MergeStep merges the Merged photo into Target.
type MergeStep struct {
	Target string `yaml:"target"`
	Merged string `yaml:"merged"`
}

// RemoveStep deletes a photo outright, leaving its votes dangling.
type RemoveStep struct {
	Photo string `yaml:"photo"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "photo:" vs "photos:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario under dir, sorted by filename
// for stable test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Photos) < 2 {
		return fmt.Errorf("at least two photos are required")
	}
	seen := make(map[string]bool, len(s.Photos))
	for i, p := range s.Photos {
		if p == "" {
			return fmt.Errorf("photos[%d]: id must not be empty", i)
		}
		if seen[p] {
			return fmt.Errorf("photos[%d]: duplicate id %q", i, p)
		}
		seen[p] = true
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		set := 0
		if step.Vote != nil {
			set++
			if step.Vote.Winner == "" || step.Vote.Loser == "" {
				return fmt.Errorf("flow[%d].vote: winner and loser are required", i)
			}
		}
		if step.Merge != nil {
			set++
			if step.Merge.Target == "" || step.Merge.Merged == "" {
				return fmt.Errorf("flow[%d].merge: target and merged are required", i)
			}
		}
		if step.Remove != nil {
			set++
			if step.Remove.Photo == "" {
				return fmt.Errorf("flow[%d].remove: photo is required", i)
			}
		}
		if set != 1 {
			return fmt.Errorf("flow[%d]: exactly one of vote, merge or remove is required", i)
		}
	}

	return nil
}
