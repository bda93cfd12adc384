// Package s3 adapts an AWS S3-compatible bucket to the storage.Provider
// interface (C1). Retry and error-classification logic is grounded on the
// teacher's S3 content-store backend: a small fixed retry budget with
// exponential backoff on transient errors, immediate failure on anything
// classified as permanent (access denied, no such bucket).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/pkg/storage"
)

const (
	maxRetries     = 5
	baseRetryDelay = 100 * time.Millisecond
)

// Config configures one bucket-backed Store.
type Config struct {
	Bucket string
}

// Store implements storage.Provider over a single S3 bucket. Each object
// key maps 1:1 to an S3 object; append semantics are emulated with
// read-modify-write since S3 itself has no native append, matching how the
// teacher's content store handles its equivalent immutable-object backend.
type Store struct {
	client *s3.Client
	bucket string
}

func New(client *s3.Client, cfg Config) *Store {
	return &Store{client: client, bucket: cfg.Bucket}
}

func (s *Store) OpenForWrite(ctx context.Context, key string) (int64, error) {
	size, err := s.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, errObjectNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return size, nil
}

func (s *Store) AppendRange(ctx context.Context, key string, offset int64, length int64, r io.Reader) error {
	var existing []byte
	if offset > 0 {
		rc, err := s.ReadRange(ctx, key, 0, offset)
		if err != nil {
			return err
		}
		defer rc.Close()
		existing, err = io.ReadAll(rc)
		if err != nil {
			return storage.Unavailable("reading existing object for append", err)
		}
	}

	appended := make([]byte, length)
	if _, err := io.ReadFull(r, appended); err != nil {
		return fmt.Errorf("reading %d bytes to append: %w", length, err)
	}

	body := append(existing, appended...)
	return s.withRetry(ctx, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(body),
		})
		return err
	})
}

func (s *Store) ReadRange(ctx context.Context, key string, offset int64, length int64) (io.ReadCloser, error) {
	rangeHeader := formatRange(offset, length)

	var out *s3.GetObjectOutput
	err := s.withRetry(ctx, func() error {
		var getErr error
		out, getErr = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Range:  rangeHeader,
		})
		return getErr
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, storage.NotFound(key)
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *Store) Stat(ctx context.Context, key string) (int64, error) {
	var out *s3.HeadObjectOutput
	err := s.withRetry(ctx, func() error {
		var headErr error
		out, headErr = s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return headErr
	})
	if err != nil {
		if isNoSuchKey(err) {
			return 0, errObjectNotFound
		}
		return 0, err
	}
	return aws.ToInt64(out.ContentLength), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.withRetry(ctx, func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
}

func (s *Store) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return storage.Unavailable("s3 bucket unreachable", err)
	}
	return nil
}

var errObjectNotFound = errors.New("s3: object not found")

func formatRange(offset, length int64) *string {
	if length < 0 {
		return aws.String(fmt.Sprintf("bytes=%d-", offset))
	}
	return aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}

// withRetry retries transient failures (throttling, 5xx, connection resets)
// up to maxRetries times with exponential backoff, mirroring the teacher's
// S3 read-path retry loop. Permanent failures (access denied, no such
// bucket, no such key) return immediately.
func (s *Store) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
		logger.WarnCtx(ctx, "s3 request failed, retrying",
			logger.StoreType("s3"), logger.Bucket(s.bucket),
			logger.Attempt(attempt+1), logger.MaxRetries(maxRetries), logger.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseRetryDelay * time.Duration(1<<attempt)):
		}
	}
	logger.ErrorCtx(ctx, "s3 request exhausted retries",
		logger.StoreType("s3"), logger.Bucket(s.bucket), logger.MaxRetries(maxRetries), logger.Err(lastErr))
	return storage.Unavailable("s3 request failed after retries", lastErr)
}

func isRetryable(err error) bool {
	if isNoSuchKey(err) {
		return false
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "AccessDenied", "NoSuchBucket", "InvalidAccessKeyId":
			return false
		case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable":
			return true
		}
	}
	var re *http.ProtocolError
	if errors.As(err, &re) {
		return true
	}
	return true
}
