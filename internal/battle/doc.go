// Package battle defines the photo battle domain model and the pure
// algorithms over it: alias resolution and history replay.
//
// # Source of truth
//
// The per-photo counters (rating, wins, losses, totalVotes) are a
// materialized view. The authoritative record is the append-only vote
// history: every pairwise outcome ever recorded for a session, ordered by
// creation time. The live vote path updates the view incrementally; any
// change to the alias topology (a merge) rebuilds the view from scratch by
// replaying the full history through the alias map.
//
// # Why replay instead of counter surgery
//
// Elo is path-dependent: each outcome is scored against the opponent's
// rating at the time of the match. When two photo identities are merged
// there is no way to "subtract" one history from the other - the only
// correct combined state is the one obtained by replaying the whole
// timeline as if the two photos had always been one contestant. Replay is a
// pure function of (history, alias map, live id set), so a retried merge
// transaction recomputes identical ratings.
//
// Everything in this package is side-effect free. Persistence lives in
// internal/store, orchestration in internal/engine.
package battle
