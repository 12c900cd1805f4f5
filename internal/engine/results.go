package engine

import (
	"context"
	"crypto/subtle"

	"github.com/roach88/photoduel/internal/battle"
)

// Results returns the session's photos sorted by rating descending, after
// verifying the secret key and the link's expiry. Read-only; anonymous
// voters use this through a shared link.
func (e *Engine) Results(ctx context.Context, sessionID, secretKey string) ([]battle.Photo, error) {
	sess, err := e.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(secretKey), []byte(sess.SecretKey)) != 1 {
		return nil, battle.NewInvalidSecretKeyError(sessionID)
	}
	if e.now().UTC().After(sess.LinkExpiresAt) {
		return nil, battle.NewLinkExpiredError(sessionID)
	}

	standings := make([]battle.Photo, len(sess.Photos))
	copy(standings, sess.Photos)
	battle.SortStandings(standings)
	return standings, nil
}

// RotateLink mints a fresh secret key, archives the old one in the link
// history (revoking it), and resets the expiry window. Owner-only.
func (e *Engine) RotateLink(ctx context.Context, ownerID, sessionID string) (battle.Session, error) {
	newKey := e.ids.Generate()

	err := e.retryOnConflict(func() error {
		sess, err := e.loadOwned(ctx, ownerID, sessionID)
		if err != nil {
			return err
		}
		linkHistory := append(append([]string{}, sess.LinkHistory...), sess.SecretKey)
		updatedAt := e.nextUpdatedAt(sess.UpdatedAt)
		return e.store.CommitLinkRotation(ctx, sess.ID, sess.Rev, newKey, updatedAt.Add(e.linkTTL), linkHistory, updatedAt)
	})
	if err != nil {
		return battle.Session{}, err
	}

	e.log.Info("results link rotated", "session", sessionID)
	return e.store.LoadSession(ctx, sessionID)
}
