package engine

import (
	"context"
	"fmt"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/rating"
)

// AddPhotoParams carries the caller-supplied fields of a new contestant.
type AddPhotoParams struct {
	URL         string
	StoragePath string
	LibraryID   string
}

// CreateBattle creates the owner's battle session with a fresh secret key.
// One session per owner; creating a second one fails on the store's
// uniqueness constraint.
func (e *Engine) CreateBattle(ctx context.Context, ownerID string) (battle.Session, error) {
	now := e.now().UTC()
	sess := battle.Session{
		ID:            e.ids.Generate(),
		OwnerID:       ownerID,
		Photos:        []battle.Photo{},
		SecretKey:     e.ids.Generate(),
		LinkExpiresAt: now.Add(e.linkTTL),
		LinkHistory:   []string{},
		UpdatedAt:     now,
	}
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return battle.Session{}, fmt.Errorf("create battle: %w", err)
	}

	e.log.Info("battle created", "session", sess.ID, "owner", ownerID)
	return sess, nil
}

// AddPhoto adds a contestant at the initial rating with zero counters. It
// does not matter how many votes already exist; new photos always start
// from the same baseline.
func (e *Engine) AddPhoto(ctx context.Context, ownerID, sessionID string, params AddPhotoParams) (battle.Photo, error) {
	photo := battle.Photo{
		ID:          e.ids.Generate(),
		URL:         params.URL,
		StoragePath: params.StoragePath,
		LibraryID:   params.LibraryID,
		Rating:      rating.Initial,
	}

	err := e.retryOnConflict(func() error {
		sess, err := e.loadOwned(ctx, ownerID, sessionID)
		if err != nil {
			return err
		}
		return e.store.CommitAddPhoto(ctx, sess.ID, sess.Rev, photo, e.nextUpdatedAt(sess.UpdatedAt))
	})
	if err != nil {
		return battle.Photo{}, err
	}

	e.log.Info("photo added", "session", sessionID, "photo", photo.ID)
	return photo, nil
}

// DeletePhoto retires a photo outright: it is removed from the live set
// with no alias entry, its history entries dangle, and no replay runs.
// Blob and gallery cleanup happen after the commit, best-effort.
func (e *Engine) DeletePhoto(ctx context.Context, ownerID, sessionID, photoID string) error {
	var removed battle.Photo

	err := e.retryOnConflict(func() error {
		sess, err := e.loadOwned(ctx, ownerID, sessionID)
		if err != nil {
			return err
		}
		p, ok := sess.Photo(photoID)
		if !ok {
			return battle.NewPhotoNotFoundError(sessionID, photoID)
		}
		removed = p
		return e.store.CommitDeletePhoto(ctx, sess.ID, sess.Rev, photoID, e.nextUpdatedAt(sess.UpdatedAt))
	})
	if err != nil {
		return err
	}

	e.log.Info("photo deleted", "session", sessionID, "photo", photoID)
	e.cleanupPhoto(ctx, removed)
	return nil
}

// loadOwned loads a session and verifies the caller owns it.
func (e *Engine) loadOwned(ctx context.Context, ownerID, sessionID string) (battle.Session, error) {
	sess, err := e.store.LoadSession(ctx, sessionID)
	if err != nil {
		return battle.Session{}, err
	}
	if sess.OwnerID != ownerID {
		return battle.Session{}, battle.NewPermissionDeniedError(sessionID)
	}
	return sess, nil
}

// retryOnConflict re-runs a read-compute-write cycle after a lost version
// race, up to the engine's retry budget. Any other error aborts
// immediately.
func (e *Engine) retryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt <= e.retries; attempt++ {
		err = fn()
		if !battle.IsConflict(err) {
			return err
		}
	}
	return err
}

// cleanupPhoto deletes a retired photo's blob object and gallery record.
// Advisory only: failures are logged, never retried, and never surface to
// the caller - the ranking mutation already committed.
func (e *Engine) cleanupPhoto(ctx context.Context, p battle.Photo) {
	if p.StoragePath != "" && e.blobs != nil {
		if err := e.blobs.Delete(ctx, p.StoragePath); err != nil {
			e.log.Warn("blob cleanup failed", "photo", p.ID, "path", p.StoragePath, "error", err)
		}
	}
	if p.LibraryID != "" {
		if err := e.store.DeleteGalleryItem(ctx, p.LibraryID); err != nil {
			e.log.Warn("gallery cleanup failed", "photo", p.ID, "library", p.LibraryID, "error", err)
		}
	}
}
