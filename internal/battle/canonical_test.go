package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalStandings_Empty(t *testing.T) {
	out, err := MarshalStandings("s1", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"session":"s1","standings":[]}`, string(out))
}

func TestMarshalStandings_FixedKeyOrder(t *testing.T) {
	out, err := MarshalStandings("s1", []Photo{
		{ID: "a", Rating: 1216, Wins: 1, Losses: 0, TotalVotes: 1},
		{ID: "b", Rating: 1184, Wins: 0, Losses: 1, TotalVotes: 1},
	})
	require.NoError(t, err)
	want := `{"session":"s1","standings":[` +
		`{"id":"a","losses":0,"rating":1216,"total_votes":1,"wins":1},` +
		`{"id":"b","losses":1,"rating":1184,"total_votes":1,"wins":0}]}`
	assert.Equal(t, want, string(out))
}

func TestMarshalStandings_Deterministic(t *testing.T) {
	standings := []Photo{{ID: "x", Rating: 1200}}
	first, err := MarshalStandings("s", standings)
	require.NoError(t, err)
	second, err := MarshalStandings("s", standings)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshalStandings_EscapesControlCharacters(t *testing.T) {
	out, err := MarshalStandings("s\n1", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"session":"s\n1","standings":[]}`, string(out))
}
