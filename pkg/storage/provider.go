// Package storage defines the object-storage backend abstraction (C1) and
// its registry. Every FileVersion's bytes live behind a Provider, keyed by
// the StorageLocation the version was written to.
package storage

import (
	"context"
	"io"

	"github.com/filez-project/filez/pkg/apierr"
)

// Provider is the capability every storage backend (S3, local filesystem,
// embedded badger KV) implements. Ranges are half-open [offset, offset+length)
// byte ranges, matching the tus-like PATCH semantics of C5.
type Provider interface {
	// OpenForWrite prepares key for an append-only write sequence, returning
	// the number of bytes already committed (0 for a brand-new object).
	OpenForWrite(ctx context.Context, key string) (committed int64, err error)

	// AppendRange appends length bytes read from r to key at the given
	// offset, which must equal the provider's current committed size for
	// that key (enforced by the caller via FileVersion.ContentCommittedSize).
	AppendRange(ctx context.Context, key string, offset int64, length int64, r io.Reader) error

	// ReadRange returns a reader over [offset, offset+length) of key. A
	// length of -1 means "to the end".
	ReadRange(ctx context.Context, key string, offset int64, length int64) (io.ReadCloser, error)

	// Stat returns the current committed size of key.
	Stat(ctx context.Context, key string) (size int64, err error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Health reports whether the backend is currently reachable.
	Health(ctx context.Context) error
}

// NotFound is returned by ReadRange/Stat when key does not exist. The s3
// provider's Stat returns its own not-found sentinel instead.
func NotFound(key string) error {
	return apierr.NotFound("storage object " + key)
}

// Unavailable wraps a backend connectivity failure.
func Unavailable(message string, cause error) error {
	return apierr.Wrap(apierr.KindStorageBackendErr, message, cause)
}
