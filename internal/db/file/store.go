// Package file implements db.Store on a local directory, one file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/kailas-cloud/dataextract/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.:\-]*$`)

// Store keeps values as files under dir. Writes are atomic (temp file + rename).
type Store struct {
	dir string
}

// NewStore creates dir if needed and returns a store rooted at it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", fmt.Errorf("%q: %w", key, db.ErrInvalidKey)
	}
	return filepath.Join(s.dir, key), nil
}

// Get reads the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set writes value at key, replacing any previous value atomically.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+key+"-*")
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := os.Rename(tmpName, p); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes key. Removing a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists reports whether key has a value.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
}

// Ping checks that the directory is still present.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if !info.IsDir() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%s is not a directory", s.dir)}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately; a local directory is ready once created.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}
