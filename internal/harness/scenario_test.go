package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: demo
description: basic flow
photos: [a, b]
flow:
  - vote: {winner: a, loser: b}
  - merge: {target: a, merged: b}
    expect: ALREADY_MERGED
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	require.Len(t, s.Flow, 2)
	assert.Equal(t, "a", s.Flow[0].Vote.Winner)
	assert.Equal(t, "ALREADY_MERGED", s.Flow[1].Expect)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: demo
description: typo in field name
photos: [a, b]
flows:
  - vote: {winner: a, loser: b}
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing name",
			content: `
description: d
photos: [a, b]
flow:
  - vote: {winner: a, loser: b}
`,
		},
		{
			name: "single photo",
			content: `
name: n
description: d
photos: [a]
flow:
  - vote: {winner: a, loser: a}
`,
		},
		{
			name: "duplicate photo",
			content: `
name: n
description: d
photos: [a, a]
flow:
  - vote: {winner: a, loser: a}
`,
		},
		{
			name: "empty flow",
			content: `
name: n
description: d
photos: [a, b]
flow: []
`,
		},
		{
			name: "step with two operations",
			content: `
name: n
description: d
photos: [a, b]
flow:
  - vote: {winner: a, loser: b}
    remove: {photo: b}
`,
		},
		{
			name: "vote missing loser",
			content: `
name: n
description: d
photos: [a, b]
flow:
  - vote: {winner: a}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadScenarios_SortedByFilename(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for i := 1; i < len(scenarios); i++ {
		assert.NotEqual(t, scenarios[i-1].Name, scenarios[i].Name)
	}
}
