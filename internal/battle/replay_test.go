package battle

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photo(id string) Photo {
	return Photo{ID: id, URL: "blob://" + id, StoragePath: "photos/" + id, Rating: 1200}
}

func entry(id, winner, loser string, at int) HistoryEntry {
	return HistoryEntry{
		ID:        id,
		WinnerID:  winner,
		LoserID:   loser,
		CreatedAt: time.Unix(int64(at), 0).UTC(),
	}
}

func standingsByID(photos []Photo) map[string]Photo {
	m := make(map[string]Photo, len(photos))
	for _, p := range photos {
		m[p.ID] = p
	}
	return m
}

func TestReplay_EmptyHistory(t *testing.T) {
	live := []Photo{photo("a"), photo("b")}
	out := Replay(nil, nil, live)

	require.Len(t, out, 2)
	for _, p := range out {
		assert.Equal(t, 1200, p.Rating)
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
		assert.Zero(t, p.TotalVotes)
	}
}

func TestReplay_SeedIgnoresCurrentCounters(t *testing.T) {
	// Live photos carry their current (possibly stale) counters; replay must
	// start every one of them from scratch.
	stale := photo("a")
	stale.Rating = 1750
	stale.Wins = 9
	stale.Losses = 3
	stale.TotalVotes = 12

	out := Replay(nil, nil, []Photo{stale})
	require.Len(t, out, 1)
	assert.Equal(t, Photo{ID: "a", URL: "blob://a", StoragePath: "photos/a", Rating: 1200}, out[0])
}

func TestReplay_SingleVote(t *testing.T) {
	live := []Photo{photo("a"), photo("b")}
	history := []HistoryEntry{entry("e1", "a", "b", 1)}

	out := standingsByID(Replay(history, nil, live))

	assert.Equal(t, 1216, out["a"].Rating)
	assert.Equal(t, 1, out["a"].Wins)
	assert.Equal(t, 1, out["a"].TotalVotes)
	assert.Equal(t, 1184, out["b"].Rating)
	assert.Equal(t, 1, out["b"].Losses)
	assert.Equal(t, 1, out["b"].TotalVotes)
}

func TestReplay_MergeCollapsesSelfReferentialVotes(t *testing.T) {
	// Three photos, two votes: A beats B, then C beats B. Merging B into A
	// turns "A beat B" into a self-match (skipped) and replays "C beat B" as
	// "C beat A" from fresh 1200s.
	history := []HistoryEntry{
		entry("e1", "a", "b", 1),
		entry("e2", "c", "b", 2),
	}
	live := []Photo{photo("a"), photo("c")}
	aliases := map[string]string{"b": "a"}

	out := standingsByID(Replay(history, aliases, live))
	require.Len(t, out, 2)

	assert.Equal(t, 1184, out["a"].Rating)
	assert.Equal(t, 0, out["a"].Wins)
	assert.Equal(t, 1, out["a"].Losses)
	assert.Equal(t, 1, out["a"].TotalVotes)

	assert.Equal(t, 1216, out["c"].Rating)
	assert.Equal(t, 1, out["c"].Wins)
	assert.Equal(t, 0, out["c"].Losses)
	assert.Equal(t, 1, out["c"].TotalVotes)
}

func TestReplay_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d", "e"}
	live := make([]Photo, 0, len(ids))
	for _, id := range ids {
		live = append(live, photo(id))
	}

	var history []HistoryEntry
	for i := 0; i < 200; i++ {
		w := ids[rng.Intn(len(ids))]
		l := ids[rng.Intn(len(ids))]
		if w == l {
			continue
		}
		history = append(history, entry(fmt.Sprintf("e%03d", i), w, l, i))
	}
	aliases := map[string]string{"zz": "a"}

	first := Replay(history, aliases, live)
	second := Replay(history, aliases, live)
	assert.Equal(t, first, second)
}

func TestReplay_ChainAssociativity(t *testing.T) {
	// Merging A into B then B into C must fold the history identically to
	// an alias map that points both straight at C.
	history := []HistoryEntry{
		entry("e1", "a", "d", 1),
		entry("e2", "d", "b", 2),
		entry("e3", "c", "a", 3),
		entry("e4", "b", "d", 4),
	}
	live := []Photo{photo("c"), photo("d")}

	chained := Replay(history, map[string]string{"a": "b", "b": "c"}, live)
	direct := Replay(history, map[string]string{"a": "c", "b": "c"}, live)

	assert.Equal(t, chained, direct)
}

func TestReplay_DanglingOpponentStillScores(t *testing.T) {
	// A vote against a deleted photo (no alias entry) is still folded: the
	// survivor's rating moves, the deleted side accumulates into an
	// on-demand record that is not part of the output.
	history := []HistoryEntry{entry("e1", "a", "ghost", 1)}
	live := []Photo{photo("a")}

	out := Replay(history, nil, live)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, 1216, out[0].Rating)
	assert.Equal(t, 1, out[0].Wins)
}

func TestReplay_RetiredPhotoNeverReappears(t *testing.T) {
	history := []HistoryEntry{
		entry("e1", "ghost", "a", 1),
		entry("e2", "ghost", "a", 2),
	}
	live := []Photo{photo("a")}

	out := Replay(history, nil, live)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, 2, out[0].Losses)
}

func TestReplay_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c"}
	live := []Photo{photo("a"), photo("b"), photo("c")}

	var history []HistoryEntry
	for i := 0; i < 100; i++ {
		w := ids[rng.Intn(len(ids))]
		l := ids[rng.Intn(len(ids))]
		if w == l {
			continue
		}
		history = append(history, entry(fmt.Sprintf("e%03d", i), w, l, i))
	}

	out := Replay(history, nil, live)
	total := 0
	for _, p := range out {
		assert.GreaterOrEqual(t, p.Rating, 0, "rating must never go negative")
		assert.Equal(t, p.TotalVotes, p.Wins+p.Losses, "totalVotes must equal wins+losses")
		total += p.TotalVotes
	}
	assert.Equal(t, 2*len(history), total, "every vote touches exactly two records")
}

func TestSortStandings(t *testing.T) {
	photos := []Photo{
		{ID: "b", Rating: 1200},
		{ID: "a", Rating: 1200},
		{ID: "c", Rating: 1300},
	}
	SortStandings(photos)
	assert.Equal(t, []string{"c", "a", "b"}, []string{photos[0].ID, photos[1].ID, photos[2].ID})
}

func TestSortByCreatedAt_TieBreaksOnID(t *testing.T) {
	history := []HistoryEntry{
		entry("e2", "a", "b", 5),
		entry("e1", "b", "a", 5),
		entry("e0", "a", "b", 1),
	}
	SortByCreatedAt(history)
	assert.Equal(t, []string{"e0", "e1", "e2"}, []string{history[0].ID, history[1].ID, history[2].ID})
}
