// Package blob stores upload bytes on the local filesystem.
//
// Files are keyed by the UUID storage id the upload store issues; the
// id doubles as the filename, so the key space can never escape the
// root directory.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("blob not found")
	// ErrBadKey is returned for keys that are not UUIDs this service
	// issued.
	ErrBadKey = errors.New("malformed storage id")
)

type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

func (d *DiskStore) path(storageID string) (string, error) {
	if _, err := uuid.Parse(storageID); err != nil {
		return "", ErrBadKey
	}
	return filepath.Join(d.root, storageID), nil
}

// Put writes the blob, replacing any earlier content, and returns the
// byte count. The write goes to a temp file first so a failed upload
// never leaves a truncated blob behind.
func (d *DiskStore) Put(storageID string, r io.Reader) (int64, error) {
	dst, err := d.path(storageID)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(d.root, storageID+".*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, err
	}
	return n, nil
}

// Open returns a reader over a stored blob.
func (d *DiskStore) Open(storageID string) (io.ReadCloser, error) {
	p, err := d.path(storageID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored blob. Missing blobs are not an error.
func (d *DiskStore) Delete(storageID string) error {
	p, err := d.path(storageID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
