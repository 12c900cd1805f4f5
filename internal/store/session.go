package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/photoduel/internal/battle"
)

// CreateSession inserts a new session document with its initial photos.
// The owner_id UNIQUE constraint enforces one session per owner.
func (s *Store) CreateSession(ctx context.Context, sess battle.Session) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("create session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	historyJSON, err := marshalLinkHistory(sess.LinkHistory)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, owner_id, secret_key, link_expires_at, link_history, rev, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.OwnerID,
		sess.SecretKey,
		sess.LinkExpiresAt.UnixNano(),
		historyJSON,
		sess.Rev,
		sess.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	for _, p := range sess.Photos {
		if err := insertPhoto(ctx, tx, sess.ID, p); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create session: commit: %w", err)
	}
	return nil
}

// LoadSession reads the full session document: the session row plus its
// live photos and alias map. Photos are ordered by id for determinism.
func (s *Store) LoadSession(ctx context.Context, id string) (battle.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, secret_key, link_expires_at, link_history, rev, updated_at
		FROM sessions
		WHERE id = ?
	`, id)
	return s.scanFullSession(ctx, row, id)
}

// LoadSessionByOwner reads the session document belonging to an owner.
func (s *Store) LoadSessionByOwner(ctx context.Context, ownerID string) (battle.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, secret_key, link_expires_at, link_history, rev, updated_at
		FROM sessions
		WHERE owner_id = ?
	`, ownerID)
	return s.scanFullSession(ctx, row, ownerID)
}

func (s *Store) scanFullSession(ctx context.Context, row *sql.Row, ref string) (battle.Session, error) {
	var (
		sess         battle.Session
		expiresNanos int64
		updatedNanos int64
		historyJSON  string
	)
	err := row.Scan(
		&sess.ID, &sess.OwnerID, &sess.SecretKey,
		&expiresNanos, &historyJSON, &sess.Rev, &updatedNanos,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return battle.Session{}, battle.NewSessionNotFoundError(ref)
	}
	if err != nil {
		return battle.Session{}, fmt.Errorf("scan session: %w", err)
	}

	sess.LinkExpiresAt = time.Unix(0, expiresNanos).UTC()
	sess.UpdatedAt = time.Unix(0, updatedNanos).UTC()
	if sess.LinkHistory, err = unmarshalLinkHistory(historyJSON); err != nil {
		return battle.Session{}, err
	}

	if sess.Photos, err = s.loadPhotos(ctx, sess.ID); err != nil {
		return battle.Session{}, err
	}
	if sess.Aliases, err = s.loadAliases(ctx, sess.ID); err != nil {
		return battle.Session{}, err
	}

	return sess, nil
}

func (s *Store) loadPhotos(ctx context.Context, sessionID string) ([]battle.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, storage_path, library_id, rating, wins, losses, total_votes
		FROM photos
		WHERE session_id = ?
		ORDER BY id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []battle.Photo
	for rows.Next() {
		var p battle.Photo
		if err := rows.Scan(
			&p.ID, &p.URL, &p.StoragePath, &p.LibraryID,
			&p.Rating, &p.Wins, &p.Losses, &p.TotalVotes,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	// Return empty slice instead of nil
	if photos == nil {
		photos = []battle.Photo{}
	}
	return photos, nil
}

func (s *Store) loadAliases(ctx context.Context, sessionID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT merged_id, target_id
		FROM photo_aliases
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var merged, target string
		if err := rows.Scan(&merged, &target); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases[merged] = target
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}
	return aliases, nil
}

// bumpSession performs the optimistic-concurrency check-and-advance on the
// session's version token. It succeeds only if the stored rev still equals
// expectedRev; zero rows affected means another writer committed since the
// caller's read, and the whole operation must abort.
func bumpSession(ctx context.Context, tx *sql.Tx, sessionID string, expectedRev int64, updatedAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET rev = rev + 1, updated_at = ?
		WHERE id = ? AND rev = ?
	`, updatedAt.UnixNano(), sessionID, expectedRev)
	if err != nil {
		return fmt.Errorf("bump session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump session: rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a lost race from a missing session.
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return battle.NewSessionNotFoundError(sessionID)
		}
		if err != nil {
			return fmt.Errorf("bump session: check existence: %w", err)
		}
		return battle.NewConflictError(sessionID)
	}
	return nil
}

func insertPhoto(ctx context.Context, tx *sql.Tx, sessionID string, p battle.Photo) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO photos
		(session_id, id, url, storage_path, library_id, rating, wins, losses, total_votes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, p.ID, p.URL, p.StoragePath, p.LibraryID, p.Rating, p.Wins, p.Losses, p.TotalVotes)
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

func updatePhoto(ctx context.Context, tx *sql.Tx, sessionID string, p battle.Photo) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE photos
		SET rating = ?, wins = ?, losses = ?, total_votes = ?
		WHERE session_id = ? AND id = ?
	`, p.Rating, p.Wins, p.Losses, p.TotalVotes, sessionID, p.ID)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

// CommitAddPhoto adds a photo to the live set under the version-token
// precondition.
func (s *Store) CommitAddPhoto(ctx context.Context, sessionID string, expectedRev int64, p battle.Photo, updatedAt time.Time) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("add photo: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := bumpSession(ctx, tx, sessionID, expectedRev, updatedAt); err != nil {
		return err
	}
	if err := insertPhoto(ctx, tx, sessionID, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add photo: commit: %w", err)
	}
	return nil
}

// CommitVote atomically applies one pairwise outcome: both updated rating
// records, the appended history entry, and the version-token bump. The
// entry is the immutable event; it stores the raw ids as cast.
func (s *Store) CommitVote(ctx context.Context, sessionID string, expectedRev int64, winner, loser battle.Photo, entry battle.HistoryEntry, updatedAt time.Time) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("commit vote: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := bumpSession(ctx, tx, sessionID, expectedRev, updatedAt); err != nil {
		return err
	}
	if err := updatePhoto(ctx, tx, sessionID, winner); err != nil {
		return err
	}
	if err := updatePhoto(ctx, tx, sessionID, loser); err != nil {
		return err
	}
	if err := insertHistoryEntry(ctx, tx, sessionID, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vote: commit: %w", err)
	}
	return nil
}

// CommitMerge atomically applies a merge result: the merged-away photo row
// removed, every survivor rewritten with its replayed counters, the new
// alias edge recorded, and the version token bumped. The history log is
// untouched.
func (s *Store) CommitMerge(ctx context.Context, sessionID string, expectedRev int64, survivors []battle.Photo, mergedID, targetID string, updatedAt time.Time) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("commit merge: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := bumpSession(ctx, tx, sessionID, expectedRev, updatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM photos WHERE session_id = ? AND id = ?
	`, sessionID, mergedID); err != nil {
		return fmt.Errorf("commit merge: remove merged photo: %w", err)
	}

	for _, p := range survivors {
		if err := updatePhoto(ctx, tx, sessionID, p); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO photo_aliases (session_id, merged_id, target_id)
		VALUES (?, ?, ?)
	`, sessionID, mergedID, targetID); err != nil {
		return fmt.Errorf("commit merge: insert alias: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: commit: %w", err)
	}
	return nil
}

// CommitDeletePhoto removes a photo from the live set under the
// version-token precondition. No alias entry is written: history entries
// referencing the id become dangling and replay treats them accordingly.
func (s *Store) CommitDeletePhoto(ctx context.Context, sessionID string, expectedRev int64, photoID string, updatedAt time.Time) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete photo: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := bumpSession(ctx, tx, sessionID, expectedRev, updatedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM photos WHERE session_id = ? AND id = ?
	`, sessionID, photoID); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete photo: commit: %w", err)
	}
	return nil
}

// CommitLinkRotation replaces the results secret key, archiving the old
// one, under the version-token precondition.
func (s *Store) CommitLinkRotation(ctx context.Context, sessionID string, expectedRev int64, newKey string, expiresAt time.Time, linkHistory []string, updatedAt time.Time) error {
	historyJSON, err := marshalLinkHistory(linkHistory)
	if err != nil {
		return fmt.Errorf("rotate link: %w", err)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("rotate link: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := bumpSession(ctx, tx, sessionID, expectedRev, updatedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET secret_key = ?, link_expires_at = ?, link_history = ?
		WHERE id = ?
	`, newKey, expiresAt.UnixNano(), historyJSON, sessionID); err != nil {
		return fmt.Errorf("rotate link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rotate link: commit: %w", err)
	}
	return nil
}

func marshalLinkHistory(history []string) (string, error) {
	if history == nil {
		history = []string{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("marshal link history: %w", err)
	}
	return string(data), nil
}

func unmarshalLinkHistory(data string) ([]string, error) {
	var history []string
	if err := json.Unmarshal([]byte(data), &history); err != nil {
		return nil, fmt.Errorf("unmarshal link history: %w", err)
	}
	if history == nil {
		history = []string{}
	}
	return history, nil
}
