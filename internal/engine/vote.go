package engine

import (
	"context"
	"fmt"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/rating"
)

// SubmitVote records one pairwise outcome: both rating records updated
// through the shared Elo function, one immutable history entry appended,
// and the session's version token bumped - all in one transaction.
//
// Voters are anonymous; no ownership check applies. The history entry
// stores the ids exactly as cast, never pre-resolved through aliases, so a
// later merge can reinterpret the vote during replay.
//
// A lost version race (another vote, or a merge, committed in between) is
// retried from a fresh read a few times before surfacing
// ConcurrentModification.
func (e *Engine) SubmitVote(ctx context.Context, sessionID, winnerID, loserID string) error {
	if winnerID == loserID {
		return fmt.Errorf("vote needs two distinct photos, got %q twice", winnerID)
	}

	entryID := e.ids.Generate()

	err := e.retryOnConflict(func() error {
		sess, err := e.store.LoadSession(ctx, sessionID)
		if err != nil {
			return err
		}

		winner, ok := sess.Photo(winnerID)
		if !ok {
			return battle.NewPhotoNotFoundError(sessionID, winnerID)
		}
		loser, ok := sess.Photo(loserID)
		if !ok {
			return battle.NewPhotoNotFoundError(sessionID, loserID)
		}

		winner.Rating, loser.Rating = rating.Update(winner.Rating, loser.Rating)
		winner.Wins++
		winner.TotalVotes++
		loser.Losses++
		loser.TotalVotes++

		updatedAt := e.nextUpdatedAt(sess.UpdatedAt)
		entry := battle.HistoryEntry{
			ID:        entryID,
			WinnerID:  winnerID,
			LoserID:   loserID,
			CreatedAt: updatedAt,
		}

		return e.store.CommitVote(ctx, sess.ID, sess.Rev, winner, loser, entry, updatedAt)
	})
	if err != nil {
		return err
	}

	e.log.Debug("vote recorded", "session", sessionID, "winner", winnerID, "loser", loserID)
	return nil
}
