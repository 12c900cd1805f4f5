package battle

import (
	"sort"

	"github.com/roach88/photoduel/internal/rating"
)

// Replay rebuilds the rating record for every live photo from scratch.
//
// Inputs:
//   - history: every vote ever recorded for the session, oldest first
//     (ties on CreatedAt must already be broken deterministically by the
//     store's enumeration order)
//   - aliases: the alias map to resolve raw vote ids through, including any
//     candidate merge edge being evaluated
//   - live: the current live photos, supplying the fields the log does not
//     carry (url, storage path, library id)
//
// Every live photo is seeded at rating.Initial with zero counters, then the
// shared Elo update is folded over the history in order. Votes whose two
// sides resolve to the same canonical id carry no ranking signal (they
// became self-referential after a merge) and are skipped, as are votes
// referencing an empty id.
//
// A history entry may resolve to a canonical id that is not live (the photo
// was deleted outright, leaving no alias). Such records are created on
// demand so the fold stays faithful, but they are not part of the returned
// set: only pre-seeded live photos are persisted.
//
// Replay is a pure function of its inputs. The same (history, aliases, live
// set) always reproduces the same ratings, which matters because a merge
// transaction that loses the optimistic-concurrency race reruns it.
func Replay(history []HistoryEntry, aliases map[string]string, live []Photo) []Photo {
	records := make(map[string]*Photo, len(live))
	order := make([]string, 0, len(live))
	for _, p := range live {
		seed := p
		seed.Rating = rating.Initial
		seed.Wins = 0
		seed.Losses = 0
		seed.TotalVotes = 0
		records[p.ID] = &seed
		order = append(order, p.ID)
	}

	for _, entry := range history {
		winner := Resolve(entry.WinnerID, aliases)
		loser := Resolve(entry.LoserID, aliases)
		if winner == "" || loser == "" || winner == loser {
			continue
		}

		w, ok := records[winner]
		if !ok {
			w = &Photo{ID: winner, Rating: rating.Initial}
			records[winner] = w
		}
		l, ok := records[loser]
		if !ok {
			l = &Photo{ID: loser, Rating: rating.Initial}
			records[loser] = l
		}

		w.Rating, l.Rating = rating.Update(w.Rating, l.Rating)
		w.Wins++
		w.TotalVotes++
		l.Losses++
		l.TotalVotes++
	}

	out := make([]Photo, 0, len(order))
	for _, id := range order {
		out = append(out, *records[id])
	}
	return out
}

// SortByCreatedAt orders history entries the way replay consumes them:
// ascending CreatedAt, ties broken by byte-wise id comparison. The store
// returns entries in this order already; this helper exists for callers
// that assemble histories in memory (tests, the scenario harness).
func SortByCreatedAt(history []HistoryEntry) {
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].CreatedAt.Equal(history[j].CreatedAt) {
			return history[i].CreatedAt.Before(history[j].CreatedAt)
		}
		return history[i].ID < history[j].ID
	})
}

// SortStandings orders photos for presentation: rating descending, ties
// broken by byte-wise id comparison so output is deterministic.
func SortStandings(photos []Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		if photos[i].Rating != photos[j].Rating {
			return photos[i].Rating > photos[j].Rating
		}
		return photos[i].ID < photos[j].ID
	})
}
