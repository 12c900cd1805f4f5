// Package store persists battle sessions in SQLite.
//
// Two kinds of state live here with very different disciplines:
//
//   - The session document (sessions + photos + photo_aliases rows): the
//     mutable projection. Every mutation goes through a compare-and-swap on
//     the session's rev column inside a single transaction, so concurrent
//     writers (the vote path and the merge coordinator) cannot interleave
//     silently - the loser gets a conflict error and retries from a fresh
//     read.
//
//   - The vote history (history rows): append-only, never updated or
//     deleted, the sole ground truth for recomputing ratings. Reads order
//     by created_at with a byte-wise id tie-break so replay consumes a
//     deterministic sequence.
//
// The expensive part of a merge (reading the full history and folding the
// rating function over it) happens outside any transaction; only the final
// write-if-rev-unchanged is atomic.
package store
