package store

import (
	"context"
	"fmt"
	"time"
)

// GalleryItem is a record in the owner's personal photo library. Battle
// photos optionally back-reference one via LibraryID; the ranking core only
// ever deletes these, during post-merge or post-delete cleanup.
type GalleryItem struct {
	LibraryID   string
	OwnerID     string
	URL         string
	StoragePath string
	CreatedAt   time.Time
}

// PutGalleryItem inserts or replaces a gallery record.
func (s *Store) PutGalleryItem(ctx context.Context, item GalleryItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gallery (library_id, owner_id, url, storage_path, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(library_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			url = excluded.url,
			storage_path = excluded.storage_path
	`, item.LibraryID, item.OwnerID, item.URL, item.StoragePath, item.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("put gallery item: %w", err)
	}
	return nil
}

// DeleteGalleryItem removes a gallery record. Deleting a missing record is
// not an error - cleanup may run more than once.
func (s *Store) DeleteGalleryItem(ctx context.Context, libraryID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM gallery WHERE library_id = ?
	`, libraryID)
	if err != nil {
		return fmt.Errorf("delete gallery item: %w", err)
	}
	return nil
}

// HasGalleryItem reports whether a gallery record exists. Used by cleanup
// tests.
func (s *Store) HasGalleryItem(ctx context.Context, libraryID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM gallery WHERE library_id = ?
	`, libraryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check gallery item: %w", err)
	}
	return count > 0, nil
}
