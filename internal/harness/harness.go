// Package harness runs YAML battle scenarios against the real engine and
// compares the final standings against golden files.
//
// Scenarios exercise the full vote/merge/remove path: every step goes
// through the engine's public operations and every rating in the golden
// file comes out of the same Elo and replay code production uses. Photo
// ids are seeded verbatim from the scenario so golden files stay readable
// and stable without depending on generated ids.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/engine"
	"github.com/roach88/photoduel/internal/store"
	"github.com/roach88/photoduel/internal/testutil"
)

// ownerID is the fixed owner for scenario sessions.
const ownerID = "harness-owner"

// secretKey is the fixed results key for scenario sessions.
const secretKey = "harness-secret"

// Result holds the outcome of a scenario run.
type Result struct {
	// Standings is the final photo list, sorted best rating first.
	Standings []battle.Photo

	// Errors collects step failures: a step that failed without a matching
	// expect clause, or an expect clause the step did not honor.
	Errors []string
}

// Passed reports whether every step behaved as the scenario expected.
func (r *Result) Passed() bool { return len(r.Errors) == 0 }

// Run executes a scenario in a fresh in-memory database and returns the
// final standings. A deterministic clock drives all timestamps, so the
// history order and therefore the replayed ratings are reproducible.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	clock := testutil.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	if err := seedSession(ctx, st, scenario, clock); err != nil {
		return nil, err
	}

	eng := engine.New(st, nil,
		engine.WithClock(clock.Now),
		engine.WithIDGenerator(engine.NewSequenceGenerator("vote")),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	result := &Result{}
	for i, step := range scenario.Flow {
		var stepErr error
		switch {
		case step.Vote != nil:
			stepErr = eng.SubmitVote(ctx, scenario.Name, step.Vote.Winner, step.Vote.Loser)
		case step.Merge != nil:
			_, stepErr = eng.MergePhotos(ctx, ownerID, scenario.Name, step.Merge.Target, step.Merge.Merged)
		case step.Remove != nil:
			stepErr = eng.DeletePhoto(ctx, ownerID, scenario.Name, step.Remove.Photo)
		}
		checkStep(result, i, step, stepErr)
	}

	standings, err := eng.Results(ctx, scenario.Name, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read final standings: %w", err)
	}
	result.Standings = standings
	return result, nil
}

// seedSession creates the scenario's session and photos directly in the
// store, using the scenario's photo names as ids.
func seedSession(ctx context.Context, st *store.Store, scenario *Scenario, clock *testutil.Clock) error {
	sess := battle.Session{
		ID:            scenario.Name,
		OwnerID:       ownerID,
		Photos:        []battle.Photo{},
		SecretKey:     secretKey,
		LinkExpiresAt: clock.Current().Add(365 * 24 * time.Hour),
		LinkHistory:   []string{},
		UpdatedAt:     clock.Now(),
	}
	if err := st.CreateSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to create scenario session: %w", err)
	}

	for i, id := range scenario.Photos {
		photo := battle.Photo{
			ID:     id,
			URL:    "https://photos.example/" + id + ".jpg",
			Rating: 1200,
		}
		if err := st.CommitAddPhoto(ctx, scenario.Name, int64(i), photo, clock.Now()); err != nil {
			return fmt.Errorf("failed to seed photo %s: %w", id, err)
		}
	}
	return nil
}

// checkStep records a result error when the step's outcome disagrees with
// its expect clause.
func checkStep(result *Result, i int, step FlowStep, err error) {
	code := string(battle.CodeOf(err))

	switch {
	case step.Expect == "" && err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("flow[%d]: unexpected error: %v", i, err))
	case step.Expect != "" && err == nil:
		result.Errors = append(result.Errors, fmt.Sprintf("flow[%d]: expected %s, step succeeded", i, step.Expect))
	case step.Expect != "" && code != step.Expect:
		result.Errors = append(result.Errors, fmt.Sprintf("flow[%d]: expected %s, got %s (%v)", i, step.Expect, code, err))
	}
}
