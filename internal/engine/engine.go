package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/roach88/photoduel/internal/store"
)

// BlobStore abstracts the external blob storage holding photo files. The
// engine only ever deletes objects, during best-effort cleanup.
type BlobStore interface {
	Delete(ctx context.Context, storagePath string) error
}

// DefaultLinkTTL is how long a freshly minted results link stays valid.
const DefaultLinkTTL = 30 * 24 * time.Hour

// defaultConflictRetries bounds how often the short write paths (votes,
// photo adds) re-run their read-compute-write cycle after losing a version
// race before giving up.
const defaultConflictRetries = 3

// Engine coordinates all battle session operations against the store.
type Engine struct {
	store *store.Store
	blobs BlobStore
	log   *slog.Logger
	ids   IDGenerator
	now   func() time.Time

	linkTTL time.Duration
	retries int

	mu  sync.Mutex
	rng *rand.Rand

	// testHookBeforeMergeCommit, when set, runs after the merge coordinator
	// finished replay but before its commit. Lets tests interleave a
	// conflicting write at the exact hazard window.
	testHookBeforeMergeCommit func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithIDGenerator overrides the id generator (for deterministic tests).
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.ids = gen }
}

// WithClock overrides the time source (for deterministic tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLinkTTL sets the validity window for results links.
func WithLinkTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.linkTTL = ttl }
}

// WithRandSource seeds pair selection (for deterministic tests).
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = rand.New(src) }
}

// New creates an Engine over the given store and blob store.
func New(s *store.Store, blobs BlobStore, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		blobs:   blobs,
		log:     slog.Default(),
		ids:     UUIDv7Generator{},
		now:     time.Now,
		linkTTL: DefaultLinkTTL,
		retries: defaultConflictRetries,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// nextUpdatedAt produces the session's new version timestamp. It advances
// monotonically even if the wall clock went backwards since the previous
// commit.
func (e *Engine) nextUpdatedAt(prev time.Time) time.Time {
	now := e.now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}

// intn returns a random int in [0, n). Safe for concurrent callers.
func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}
