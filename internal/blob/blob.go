// Package blob stores photo files on the local filesystem.
//
// The ranking core never reads blobs; it only deletes them during
// post-merge cleanup. The API layer writes them on upload. Paths handed
// back by Store are relative to the root and safe to persist.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirStore keeps blobs under a single root directory, fanned out by the
// first two hex chars of the content hash to keep directories small.
type DirStore struct {
	root string
}

// NewDirStore creates the root directory if needed.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Store writes the content to disk and returns its storage path. The path
// is content-addressed, so storing the same bytes twice is idempotent and
// two photos sharing a file share one blob.
func (d *DirStore) Store(_ context.Context, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(d.root, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}

	sum := hex.EncodeToString(h.Sum(nil))
	rel := filepath.Join(sum[:2], sum)
	dst := filepath.Join(d.root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("place blob: %w", err)
	}
	return rel, nil
}

// Open returns a reader over a stored blob.
func (d *DirStore) Open(_ context.Context, storagePath string) (io.ReadCloser, error) {
	abs, err := d.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", storagePath, err)
	}
	return f, nil
}

// Delete removes a stored blob. Deleting a missing blob is not an error -
// cleanup may run more than once.
func (d *DirStore) Delete(_ context.Context, storagePath string) error {
	abs, err := d.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", storagePath, err)
	}
	return nil
}

// resolve maps a stored path back under the root, rejecting anything that
// would escape it.
func (d *DirStore) resolve(storagePath string) (string, error) {
	if storagePath == "" {
		return "", fmt.Errorf("empty storage path")
	}
	clean := filepath.Clean(storagePath)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("storage path %q escapes blob root", storagePath)
	}
	return filepath.Join(d.root, clean), nil
}
