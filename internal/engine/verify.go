package engine

import (
	"context"

	"github.com/roach88/photoduel/internal/battle"
)

// Drift reports a photo whose stored counters disagree with a fresh replay
// of the history. Any drift means the live vote path and the replay engine
// no longer apply the same update function - a defect to investigate, not
// to auto-repair.
type Drift struct {
	PhotoID  string
	Stored   battle.Photo
	Replayed battle.Photo
}

// Verify replays the session's full history through its stored alias map
// and diffs the result against the stored rating records. An empty slice
// means the materialized view matches its event log. Owner-only: drift
// details expose internals voters never see.
func (e *Engine) Verify(ctx context.Context, ownerID, sessionID string) ([]Drift, error) {
	sess, err := e.loadOwned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := e.store.ReadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	replayed := battle.Replay(history, sess.Aliases, sess.Photos)

	byID := make(map[string]battle.Photo, len(replayed))
	for _, p := range replayed {
		byID[p.ID] = p
	}

	var drifts []Drift
	for _, stored := range sess.Photos {
		r := byID[stored.ID]
		if stored.Rating != r.Rating || stored.Wins != r.Wins ||
			stored.Losses != r.Losses || stored.TotalVotes != r.TotalVotes {
			drifts = append(drifts, Drift{PhotoID: stored.ID, Stored: stored, Replayed: r})
		}
	}
	return drifts, nil
}
