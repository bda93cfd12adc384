// Package badgerkv adapts an embedded dgraph-io/badger/v4 KV store to the
// storage.Provider interface (C1). It exists as a third storage backend
// kind (alongside s3 and fs), for small deployments that want content-addressed local storage
// without a filesystem or S3 dependency; object keys are badger keys and
// values are the whole object, read back with an in-memory byte-range slice
// (badger does not support partial-value reads).
package badgerkv

import (
	"context"
	"io"

	"github.com/dgraph-io/badger/v4"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/storage"
)

type Store struct {
	db *badger.DB
}

func Open(dataDir string) (*Store, error) {
	opts := badger.DefaultOptions(dataDir)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, storage.Unavailable("opening badger store", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) OpenForWrite(ctx context.Context, key string) (int64, error) {
	size, err := s.Stat(ctx, key)
	if err != nil {
		if apierr.Is(err, apierr.KindResourceNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return size, nil
}

func (s *Store) AppendRange(ctx context.Context, key string, offset int64, length int64, r io.Reader) error {
	var existing []byte
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			existing = append(existing, val...)
			return nil
		})
	})

	appended := make([]byte, length)
	if _, err := io.ReadFull(r, appended); err != nil {
		return err
	}

	if int64(len(existing)) < offset {
		padded := make([]byte, offset)
		copy(padded, existing)
		existing = padded
	}
	body := append(existing[:offset], appended...)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), body)
	})
}

func (s *Store) ReadRange(ctx context.Context, key string, offset int64, length int64) (io.ReadCloser, error) {
	var body []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return storage.NotFound(key)
		}
		if err != nil {
			return storage.Unavailable("reading badger object", err)
		}
		return item.Value(func(val []byte) error {
			body = append(body, val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	end := int64(len(body))
	if length >= 0 && offset+length < end {
		end = offset + length
	}
	if offset > int64(len(body)) {
		offset = int64(len(body))
	}
	return io.NopCloser(newByteReader(body[offset:end])), nil
}

func (s *Store) Stat(ctx context.Context, key string) (int64, error) {
	var size int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return storage.NotFound(key)
		}
		if err != nil {
			return storage.Unavailable("stat badger object", err)
		}
		size = item.ValueSize()
		return nil
	})
	return size, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *Store) Health(ctx context.Context) error {
	return nil
}

func newByteReader(b []byte) io.Reader {
	return &sliceReader{b: b}
}

type sliceReader struct {
	b []byte
	i int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}
