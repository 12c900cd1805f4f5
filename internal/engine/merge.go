package engine

import (
	"context"

	"github.com/roach88/photoduel/internal/battle"
)

// MergePhotos folds the mergedID photo's identity into targetID: every
// vote either photo ever received is re-attributed to the surviving
// canonical id and all ratings are recomputed by replaying the full
// history.
//
// The coordinator runs one optimistic cycle:
//
//  1. Load the session, capturing its version token. Resolve both ids
//     through the existing alias map.
//  2. AlreadyMerged if both resolve to the same canonical id (this also
//     rejects any merge that would close an alias cycle).
//  3. PhotoNotFound unless both canonicals are live.
//  4. Read the full history; build the candidate alias map; replay.
//  5. Commit atomically with a precondition on the version token.
//     ConcurrentModification on mismatch - the caller retries from
//     scratch; nothing partial was written.
//  6. Best-effort cleanup of the merged-away blob and gallery record,
//     outside the consistency boundary.
//
// The replay is deliberately evaluated off-transaction: reading and
// folding a long history inside the atomic section would stall every
// concurrent vote.
func (e *Engine) MergePhotos(ctx context.Context, ownerID, sessionID, targetID, mergedID string) (battle.Session, error) {
	sess, err := e.loadOwned(ctx, ownerID, sessionID)
	if err != nil {
		return battle.Session{}, err
	}

	target := battle.Resolve(targetID, sess.Aliases)
	merged := battle.Resolve(mergedID, sess.Aliases)
	if target == merged {
		return battle.Session{}, battle.NewAlreadyMergedError(sessionID, target)
	}
	if !sess.HasPhoto(target) {
		return battle.Session{}, battle.NewPhotoNotFoundError(sessionID, target)
	}
	if !sess.HasPhoto(merged) {
		return battle.Session{}, battle.NewPhotoNotFoundError(sessionID, merged)
	}

	history, err := e.store.ReadHistory(ctx, sessionID)
	if err != nil {
		return battle.Session{}, err
	}

	candidate := battle.WithAlias(sess.Aliases, merged, target)

	// The merged-away photo leaves the live set; survivors are replayed
	// from scratch through the candidate map. Ratings are globally coupled
	// through Elo, so any survivor's numbers may move, not just the
	// target's.
	survivors := make([]battle.Photo, 0, len(sess.Photos)-1)
	var removed battle.Photo
	for _, p := range sess.Photos {
		if p.ID == merged {
			removed = p
			continue
		}
		survivors = append(survivors, p)
	}

	replayed := battle.Replay(history, candidate, survivors)

	if e.testHookBeforeMergeCommit != nil {
		e.testHookBeforeMergeCommit()
	}

	err = e.store.CommitMerge(ctx, sessionID, sess.Rev, replayed, merged, target, e.nextUpdatedAt(sess.UpdatedAt))
	if err != nil {
		return battle.Session{}, err
	}

	e.log.Info("photos merged",
		"session", sessionID, "target", target, "merged", merged, "votes_replayed", len(history))

	e.cleanupPhoto(ctx, removed)

	return e.store.LoadSession(ctx, sessionID)
}
