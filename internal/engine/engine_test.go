package engine

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/store"
	"github.com/roach88/photoduel/internal/testutil"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeBlobStore) Delete(_ context.Context, storagePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, storagePath)
	return nil
}

func (f *fakeBlobStore) deletedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *fakeBlobStore) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	blobs := &fakeBlobStore{}
	clock := testutil.NewClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Second)
	eng := New(st, blobs,
		WithIDGenerator(NewSequenceGenerator("id")),
		WithClock(clock.Now),
		WithRandSource(rand.NewSource(1)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return eng, st, blobs
}

// newTestBattle creates a session with n photos and returns it freshly
// loaded. Photo ids follow the sequence generator (id-0003 onward; the
// session id and secret key consume the first two).
func newTestBattle(t *testing.T, eng *Engine, n int) battle.Session {
	t.Helper()
	ctx := context.Background()

	sess, err := eng.CreateBattle(ctx, "owner-1")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := eng.AddPhoto(ctx, "owner-1", sess.ID, AddPhotoParams{
			URL:         "blob://p",
			StoragePath: "photos/p",
			LibraryID:   "",
		})
		require.NoError(t, err)
	}

	loaded, err := eng.store.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	return loaded
}

func TestCreateBattle(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := eng.CreateBattle(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, "owner-1", sess.OwnerID)
	require.NotEmpty(t, sess.SecretKey)
	require.True(t, sess.LinkExpiresAt.After(sess.UpdatedAt))

	// One session per owner.
	_, err = eng.CreateBattle(ctx, "owner-1")
	require.Error(t, err)
}

func TestAddPhoto_StartsAtInitialRating(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 2)

	require.Len(t, sess.Photos, 2)
	for _, p := range sess.Photos {
		require.Equal(t, 1200, p.Rating)
		require.Zero(t, p.TotalVotes)
	}
	require.Equal(t, int64(2), sess.Rev, "each photo add bumps the version token")
}

func TestAddPhoto_RequiresOwnership(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 0)

	_, err := eng.AddPhoto(context.Background(), "intruder", sess.ID, AddPhotoParams{URL: "u"})
	require.Equal(t, battle.ErrCodePermissionDenied, battle.CodeOf(err))
}

func TestDeletePhoto_RemovesAndCleansUp(t *testing.T) {
	eng, st, blobs := newTestEngine(t)
	ctx := context.Background()
	sess := newTestBattle(t, eng, 2)

	p, err := eng.AddPhoto(ctx, "owner-1", sess.ID, AddPhotoParams{
		URL: "blob://g", StoragePath: "photos/g", LibraryID: "lib-x",
	})
	require.NoError(t, err)
	require.NoError(t, st.PutGalleryItem(ctx, store.GalleryItem{
		LibraryID: "lib-x", OwnerID: "owner-1", URL: p.URL, StoragePath: p.StoragePath,
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, eng.DeletePhoto(ctx, "owner-1", sess.ID, p.ID))

	loaded, err := st.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	require.False(t, loaded.HasPhoto(p.ID))
	require.Empty(t, loaded.Aliases, "delete must not write an alias")
	require.Contains(t, blobs.deletedPaths(), "photos/g")

	ok, err := st.HasGalleryItem(ctx, "lib-x")
	require.NoError(t, err)
	require.False(t, ok, "gallery record should be cleaned up")
}

func TestDeletePhoto_CleanupFailureIsSwallowed(t *testing.T) {
	eng, st, blobs := newTestEngine(t)
	ctx := context.Background()
	sess := newTestBattle(t, eng, 2)
	blobs.err = context.DeadlineExceeded

	err := eng.DeletePhoto(ctx, "owner-1", sess.ID, sess.Photos[0].ID)
	require.NoError(t, err, "cleanup failure must not fail the committed delete")

	loaded, err := st.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	require.False(t, loaded.HasPhoto(sess.Photos[0].ID))
}

func TestDeletePhoto_NotFound(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 1)

	err := eng.DeletePhoto(context.Background(), "owner-1", sess.ID, "nope")
	require.Equal(t, battle.ErrCodePhotoNotFound, battle.CodeOf(err))
}

func TestNextPair_DistinctPhotos(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 3)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		left, right, err := eng.NextPair(ctx, sess.ID)
		require.NoError(t, err)
		require.NotEqual(t, left.ID, right.ID)
		require.True(t, sess.HasPhoto(left.ID))
		require.True(t, sess.HasPhoto(right.ID))
	}
}

func TestNextPair_NeedsTwoPhotos(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 1)

	_, _, err := eng.NextPair(context.Background(), sess.ID)
	require.Error(t, err)
}

func TestVerify_CleanSession(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 3)
	ctx := context.Background()

	require.NoError(t, eng.SubmitVote(ctx, sess.ID, sess.Photos[0].ID, sess.Photos[1].ID))
	require.NoError(t, eng.SubmitVote(ctx, sess.ID, sess.Photos[2].ID, sess.Photos[1].ID))

	drifts, err := eng.Verify(ctx, "owner-1", sess.ID)
	require.NoError(t, err)
	require.Empty(t, drifts, "incremental vote path and replay must agree")
}

func TestVerify_DetectsDrift(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	sess := newTestBattle(t, eng, 2)
	ctx := context.Background()

	require.NoError(t, eng.SubmitVote(ctx, sess.ID, sess.Photos[0].ID, sess.Photos[1].ID))

	// Corrupt a stored counter behind the engine's back.
	_, err := st.DB().ExecContext(ctx,
		`UPDATE photos SET rating = 9999 WHERE session_id = ? AND id = ?`,
		sess.ID, sess.Photos[0].ID)
	require.NoError(t, err)

	drifts, err := eng.Verify(ctx, "owner-1", sess.ID)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, sess.Photos[0].ID, drifts[0].PhotoID)
	require.Equal(t, 9999, drifts[0].Stored.Rating)
	require.Equal(t, 1216, drifts[0].Replayed.Rating)
}
