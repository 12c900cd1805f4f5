package engine

import (
	"context"
	"fmt"

	"github.com/roach88/photoduel/internal/battle"
)

// NextPair picks the two photos to show a voter next. The selection
// strategy is deliberately simple - uniform random over distinct live
// photos - and intentionally decoupled from the ranking core: any smarter
// sampling (uncertainty-weighted, least-voted-first) can replace this
// without touching vote or replay semantics.
func (e *Engine) NextPair(ctx context.Context, sessionID string) (battle.Photo, battle.Photo, error) {
	sess, err := e.store.LoadSession(ctx, sessionID)
	if err != nil {
		return battle.Photo{}, battle.Photo{}, err
	}
	if len(sess.Photos) < 2 {
		return battle.Photo{}, battle.Photo{}, fmt.Errorf("session %s needs at least two photos to pair", sessionID)
	}

	i := e.intn(len(sess.Photos))
	j := e.intn(len(sess.Photos) - 1)
	if j >= i {
		j++
	}
	return sess.Photos[i], sess.Photos[j], nil
}
