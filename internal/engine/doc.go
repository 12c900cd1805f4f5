// Package engine orchestrates battle session mutations.
//
// # Write protocol
//
// Every mutation follows the same optimistic-concurrency cycle: read the
// session (capturing its rev token), compute the new state off-transaction,
// then commit through the store with a write-if-rev-unchanged precondition.
// A rev mismatch means another writer - usually a vote - committed in
// between; the operation retries from a fresh read (votes, photo adds) or
// surfaces the conflict to the caller (merges: the caller decides whether
// to retry).
//
// The merge coordinator is the expensive path: it reads the full vote
// history and folds the shared Elo function over it with the candidate
// alias map before attempting its single atomic commit. Holding that
// computation inside a transaction would serialize votes behind it, which
// is exactly what the version token exists to avoid.
//
// # Cleanup
//
// Blob and gallery deletion after a committed merge or delete is advisory.
// It runs outside the consistency boundary, failures are logged and
// swallowed, and the ranking state is correct whether or not it succeeds.
package engine
