// Package fs adapts a local directory tree to the storage.Provider
// interface (C1), grounded on the teacher's filesystem-backed payload
// store: object keys map to nested paths under a root directory, writes
// are positional (Seek to the range offset, then copy), and reads are served with io.NewSectionReader-style
// range limiting.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/filez-project/filez/pkg/storage"
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *Store) OpenForWrite(ctx context.Context, key string) (int64, error) {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, storage.Unavailable("creating object directory", err)
	}
	fi, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		f, createErr := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
		if createErr != nil {
			return 0, storage.Unavailable("creating object", createErr)
		}
		_ = f.Close()
		return 0, nil
	}
	if err != nil {
		return 0, storage.Unavailable("stat object", err)
	}
	return fi.Size(), nil
}

func (s *Store) AppendRange(ctx context.Context, key string, offset int64, length int64, r io.Reader) error {
	p := s.path(key)
	f, err := os.OpenFile(p, os.O_WRONLY, 0o644)
	if err != nil {
		return storage.Unavailable("opening object for append", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return storage.Unavailable("seeking to append offset", err)
	}
	if _, err := io.CopyN(f, r, length); err != nil {
		return fmt.Errorf("writing %d bytes at offset %d: %w", length, offset, err)
	}
	return nil
}

func (s *Store) ReadRange(ctx context.Context, key string, offset int64, length int64) (io.ReadCloser, error) {
	p := s.path(key)
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.NotFound(key)
	}
	if err != nil {
		return nil, storage.Unavailable("opening object for read", err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, storage.Unavailable("seeking to read offset", err)
	}
	if length < 0 {
		return f, nil
	}
	return &limitedReadCloser{r: io.LimitReader(f, length), c: f}, nil
}

func (s *Store) Stat(ctx context.Context, key string) (int64, error) {
	fi, err := os.Stat(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return 0, storage.NotFound(key)
	}
	if err != nil {
		return 0, storage.Unavailable("stat object", err)
	}
	return fi.Size(), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return storage.Unavailable("deleting object", err)
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return storage.Unavailable("storage root unreachable", err)
	}
	return nil
}

type limitedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (l *limitedReadCloser) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedReadCloser) Close() error                { return l.c.Close() }
