package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/photoduel/internal/battle"
)

// ReadHistory returns every vote ever recorded for a session, in the order
// replay consumes it: created_at ascending, ties broken by byte-wise id
// comparison. The log carries no separate sequence counter, so the id
// tie-break IS the store's enumeration order - it keeps replay
// deterministic when wall clocks collide.
//
// Returns an empty slice (not nil) if the session has no votes.
func (s *Store) ReadHistory(ctx context.Context, sessionID string) ([]battle.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, winner_id, loser_id, created_at
		FROM history
		WHERE session_id = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []battle.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []battle.HistoryEntry{}
	}
	return entries, nil
}

// CountHistory returns the number of recorded votes for a session.
func (s *Store) CountHistory(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM history WHERE session_id = ?
	`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// InsertHistoryEntry appends a single entry outside any session mutation.
// The vote path never uses this - CommitVote writes the entry in the same
// transaction as the counter updates. This exists for backfill tooling and
// tests that need a log in a known shape.
func (s *Store) InsertHistoryEntry(ctx context.Context, sessionID string, entry battle.HistoryEntry) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("insert history entry: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertHistoryEntry(ctx, tx, sessionID, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert history entry: commit: %w", err)
	}
	return nil
}

func insertHistoryEntry(ctx context.Context, tx *sql.Tx, sessionID string, entry battle.HistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO history (id, session_id, winner_id, loser_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, sessionID, entry.WinnerID, entry.LoserID, entry.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func scanHistoryEntry(rows *sql.Rows) (battle.HistoryEntry, error) {
	var (
		entry battle.HistoryEntry
		nanos int64
	)
	if err := rows.Scan(&entry.ID, &entry.WinnerID, &entry.LoserID, &nanos); err != nil {
		return battle.HistoryEntry{}, fmt.Errorf("scan history entry: %w", err)
	}
	entry.CreatedAt = time.Unix(0, nanos).UTC()
	return entry, nil
}
