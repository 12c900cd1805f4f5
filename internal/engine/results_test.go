package engine

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/store"
	"github.com/roach88/photoduel/internal/testutil"
)

func TestResults_SortedByRatingDescending(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	sess := newTestBattle(t, eng, 3)
	a, b, c := sess.Photos[0], sess.Photos[1], sess.Photos[2]

	require.NoError(t, eng.SubmitVote(ctx, sess.ID, a.ID, b.ID))
	require.NoError(t, eng.SubmitVote(ctx, sess.ID, a.ID, c.ID))

	standings, err := eng.Results(ctx, sess.ID, sess.SecretKey)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	require.Equal(t, a.ID, standings[0].ID)
	for i := 1; i < len(standings); i++ {
		require.GreaterOrEqual(t, standings[i-1].Rating, standings[i].Rating)
	}
}

func TestResults_InvalidSecretKey(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 2)

	_, err := eng.Results(context.Background(), sess.ID, "wrong-key")
	require.Equal(t, battle.ErrCodeInvalidSecretKey, battle.CodeOf(err))
}

func TestResults_LinkExpired(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	// A TTL shorter than the clock step: the link is already past expiry on
	// the very next tick.
	clock := testutil.NewClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Second)
	eng := New(st, &fakeBlobStore{},
		WithIDGenerator(NewSequenceGenerator("id")),
		WithClock(clock.Now),
		WithRandSource(rand.NewSource(1)),
		WithLinkTTL(time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx := context.Background()
	sess, err := eng.CreateBattle(ctx, "owner-1")
	require.NoError(t, err)

	_, err = eng.Results(ctx, sess.ID, sess.SecretKey)
	require.Equal(t, battle.ErrCodeLinkExpired, battle.CodeOf(err))
}

func TestRotateLink_RevokesOldKey(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	sess := newTestBattle(t, eng, 2)
	oldKey := sess.SecretKey

	rotated, err := eng.RotateLink(ctx, "owner-1", sess.ID)
	require.NoError(t, err)
	require.NotEqual(t, oldKey, rotated.SecretKey)
	require.Contains(t, rotated.LinkHistory, oldKey)
	require.True(t, rotated.LinkExpiresAt.After(rotated.UpdatedAt))

	_, err = eng.Results(ctx, sess.ID, oldKey)
	require.Equal(t, battle.ErrCodeInvalidSecretKey, battle.CodeOf(err))

	standings, err := eng.Results(ctx, sess.ID, rotated.SecretKey)
	require.NoError(t, err)
	require.Len(t, standings, 2)
}

func TestRotateLink_RequiresOwnership(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 0)

	_, err := eng.RotateLink(context.Background(), "intruder", sess.ID)
	require.Equal(t, battle.ErrCodePermissionDenied, battle.CodeOf(err))
}
