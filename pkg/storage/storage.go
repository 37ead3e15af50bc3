// Package storage defines the FileStore interface the splicer reads fragment
// libraries from and writes word files to. A store is either a local
// directory or an S3 bucket prefix; callers address files by forward-slash
// paths relative to the store root.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrReadOnly is returned by Write and Delete on a store opened read-only.
	ErrReadOnly = errors.New("storage: read-only store")

	// ErrInvalidPath rejects paths that are absolute or leave the store root.
	ErrInvalidPath = errors.New("storage: invalid path")
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing.
	// If the file already exists it is truncated.
	// Parent directories are created automatically.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file.
	// If the file does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// String identifies the store root, e.g. "/data/vowels" or
	// "s3://bucket/vowels". It is stable across runs and used in cache keys.
	String() string
}

// Versioner is implemented by stores that can fingerprint a file's current
// contents without reading it: size and modification time, or an ETag.
type Versioner interface {
	Version(ctx context.Context, path string) (string, error)
}

// Version returns fs's fingerprint of path, or "" when fs cannot tell. A
// missing file yields an error wrapping os.ErrNotExist.
func Version(ctx context.Context, fs FileStore, path string) (string, error) {
	if v, ok := fs.(Versioner); ok {
		return v.Version(ctx, path)
	}
	return "", nil
}

// discarder is implemented by writers that stage data until Close and can
// drop it instead.
type discarder interface {
	Discard() error
}

// Put copies r into path. When the copy fails nothing is committed: staged
// writers are discarded and others are closed and deleted.
func Put(ctx context.Context, fs FileStore, path string, r io.Reader) (int64, error) {
	w, err := fs.Write(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("storage: open %s: %w", path, err)
	}
	n, err := io.Copy(w, r)
	if err != nil {
		if d, ok := w.(discarder); ok {
			_ = d.Discard()
		} else {
			w.Close()
			_ = fs.Delete(ctx, path)
		}
		return n, fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("storage: close %s: %w", path, err)
	}
	return n, nil
}

// ReadOnly wraps fs so that Write and Delete fail with ErrReadOnly.
// Fragment libraries are opened this way.
func ReadOnly(fs FileStore) FileStore {
	return readOnly{fs}
}

type readOnly struct {
	FileStore
}

func (readOnly) Write(_ context.Context, path string) (io.WriteCloser, error) {
	return nil, fmt.Errorf("storage: write %s: %w", path, ErrReadOnly)
}

func (readOnly) Delete(_ context.Context, path string) error {
	return fmt.Errorf("storage: delete %s: %w", path, ErrReadOnly)
}

func (r readOnly) Version(ctx context.Context, path string) (string, error) {
	return Version(ctx, r.FileStore, path)
}
