package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/jackc/pgx/v5"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/internal/telemetry"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/models"
	"go.opentelemetry.io/otel/trace"
)

// CreateVersionParams is the request shape for opening a new upload.
type CreateVersionParams struct {
	FileID                FileIDOwner
	AppID                 models.ApplicationID
	AppPath               string
	StorageLocationID     models.StorageLocID
	ContentExpectedSize   int64
	ContentExpectedSHA256 string
}

// FileIDOwner bundles the target file's ID and owner so CreateVersion can
// reserve quota against the right user without a second round-trip.
type FileIDOwner struct {
	ID      models.FileID
	OwnerID models.UserID
}

// CreateVersion allocates the next version Number for a file and reserves
// quota for its declared size, but performs no content I/O: the caller
// uploads bytes afterward via PATCH (§4.6's "create-then-upload" two-step).
func (s *Service) CreateVersion(ctx context.Context, params CreateVersionParams) (models.FileVersion, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanVersionCreate, trace.WithAttributes(telemetry.FileID(params.FileID.ID.String())))
	defer span.End()

	quotaID, err := s.quotas.Reserve(ctx, params.FileID.OwnerID, params.StorageLocationID, params.ContentExpectedSize)
	if err != nil {
		return models.FileVersion{}, err
	}

	v := models.FileVersion{
		FileID:                params.FileID.ID,
		ID:                    models.FileVersionID(models.NewID()),
		AppID:                 params.AppID,
		AppPath:               params.AppPath,
		StorageLocationID:     params.StorageLocationID,
		StorageQuotaID:        quotaID,
		ContentExpectedSize:   params.ContentExpectedSize,
		ContentExpectedSHA256: params.ContentExpectedSHA256,
		CreatedTime:           nowFn(),
		ModifiedTime:          nowFn(),
	}

	err = s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// version Number races under concurrent creation on the same file;
		// serialize via a per-file advisory lock rather than retrying the
		// unique-constraint violation, matching the teacher's advisory-lock
		// pattern for its analogous sequence allocation.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, params.FileID.ID.String()); err != nil {
			return apierr.Internal("acquiring version sequence lock", err)
		}

		var nextNumber int64
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(number), 0) + 1 FROM file_versions WHERE file_id = $1`, params.FileID.ID).
			Scan(&nextNumber)
		if err != nil {
			return apierr.Internal("allocating version number", err)
		}
		v.Number = nextNumber

		object, err := tx.Exec(ctx,
			`INSERT INTO file_versions
			   (file_id, number, id, app_id, app_path, storage_location_id, storage_quota_id,
			    content_expected_size, content_committed_size, content_expected_sha256,
			    content_valid, created_time, modified_time)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,false,$10,$11)`,
			v.FileID, v.Number, v.ID, v.AppID, v.AppPath, v.StorageLocationID, v.StorageQuotaID,
			v.ContentExpectedSize, v.ContentExpectedSHA256, v.CreatedTime, v.ModifiedTime)
		if err != nil {
			return apierr.Internal("creating file version", err)
		}
		_ = object
		return nil
	})
	if err != nil {
		_ = s.quotas.Release(ctx, quotaID, params.ContentExpectedSize)
		return models.FileVersion{}, err
	}

	s.events.Emit(ctx, models.EventFileVersionCreated, nil, &params.AppID, "FileVersion", idPtr(models.ID(v.ID)), nil)
	return v, nil
}

// objectKey is the storage key a FileVersion's bytes live under. Grounded
// on the teacher's content-addressable layout: a flat hierarchy keyed by
// the version's own ID, immune to file renames.
func objectKey(v models.FileVersion) string {
	return "versions/" + v.ID.String()
}

// Head reports the upload's current committed offset, mirroring a tus HEAD
// response (§4.6).
func (s *Service) Head(ctx context.Context, fileID models.FileID, versionNumber int64) (models.FileVersion, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanUploadHead)
	defer span.End()
	return s.getVersion(ctx, fileID, versionNumber)
}

func (s *Service) getVersion(ctx context.Context, fileID models.FileID, versionNumber int64) (models.FileVersion, error) {
	var v models.FileVersion
	row := s.gw.Pool().QueryRow(ctx,
		`SELECT file_id, number, id, app_id, app_path, storage_location_id, storage_quota_id,
		        object_key, content_expected_size, content_committed_size,
		        content_expected_sha256, content_actual_sha256, content_valid,
		        created_time, modified_time
		 FROM file_versions WHERE file_id = $1 AND number = $2`, fileID, versionNumber)
	err := row.Scan(&v.FileID, &v.Number, &v.ID, &v.AppID, &v.AppPath, &v.StorageLocationID, &v.StorageQuotaID,
		&v.ObjectKey, &v.ContentExpectedSize, &v.ContentCommittedSize,
		&v.ContentExpectedSHA256, &v.ContentActualSHA256, &v.ContentValid,
		&v.CreatedTime, &v.ModifiedTime)
	if err != nil {
		return models.FileVersion{}, apierr.NotFound("FileVersion")
	}
	return v, nil
}

// Patch appends length bytes at offset to an in-progress upload. offset
// must equal the version's current ContentCommittedSize (tus's
// Upload-Offset precondition); any mismatch is a PreconditionFailed error so
// the client can recover by re-issuing HEAD. Once the committed size
// reaches ContentExpectedSize, the digest is verified and the version is
// flipped to ContentValid, folding its reservation into used quota.
func (s *Service) Patch(ctx context.Context, fileID models.FileID, versionNumber int64, offset int64, length int64, r io.Reader) (models.FileVersion, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanUploadPatch)
	defer span.End()

	v, err := s.getVersion(ctx, fileID, versionNumber)
	if err != nil {
		return models.FileVersion{}, err
	}
	if v.ContentValid {
		return models.FileVersion{}, apierr.Conflict("file version content already committed")
	}
	if offset != v.ContentCommittedSize {
		return models.FileVersion{}, apierr.PreconditionFailed("upload offset mismatch")
	}
	if offset+length > v.ContentExpectedSize {
		return models.FileVersion{}, apierr.InvalidRequest("write exceeds declared content size")
	}

	provider, err := s.registry.Get(v.StorageLocationID)
	if err != nil {
		return models.FileVersion{}, apierr.Wrap(apierr.KindStorageBackendErr, "storage location unavailable", err)
	}

	key := v.ObjectKey
	if key == "" {
		key = objectKey(v)
	}
	if _, err := provider.OpenForWrite(ctx, key); err != nil {
		return models.FileVersion{}, err
	}

	// The appended bytes pass through a digest of this range only; when the
	// final range commits, the whole object is read back and hashed below.
	hasher := sha256.New()
	tee := io.TeeReader(r, hasher)
	if err := provider.AppendRange(ctx, key, offset, length, tee); err != nil {
		return models.FileVersion{}, err
	}
	logger.InfoCtx(ctx, "appended upload range",
		logger.FileID(fileID.String()), logger.VersionID(v.ID.String()),
		logger.Offset(offset), logger.BytesWritten(length))

	newCommitted := offset + length
	becomingValid := newCommitted == v.ContentExpectedSize

	var actualDigest string
	if becomingValid {
		full, err := provider.ReadRange(ctx, key, 0, -1)
		if err != nil {
			return models.FileVersion{}, err
		}
		defer full.Close()
		sum := sha256.New()
		if _, err := io.Copy(sum, full); err != nil {
			return models.FileVersion{}, apierr.Internal("hashing committed content", err)
		}
		actualDigest = hex.EncodeToString(sum.Sum(nil))
		if v.ContentExpectedSHA256 != "" && actualDigest != v.ContentExpectedSHA256 {
			return models.FileVersion{}, apierr.New(apierr.KindConflict, "content digest mismatch")
		}
	}

	err = s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE file_versions
			 SET content_committed_size = $3, object_key = $4, content_actual_sha256 = $5,
			     content_valid = $6, modified_time = $7
			 WHERE file_id = $1 AND number = $2`,
			fileID, versionNumber, newCommitted, key, actualDigest, becomingValid, nowFn())
		if err != nil {
			return apierr.Internal("updating file version", err)
		}
		return nil
	})
	if err != nil {
		return models.FileVersion{}, err
	}

	if becomingValid {
		if err := s.quotas.Finalize(ctx, v.StorageQuotaID, v.ContentExpectedSize); err != nil {
			return models.FileVersion{}, err
		}
		s.events.Emit(ctx, models.EventFileVersionContentCommitted, nil, &v.AppID, "FileVersion", idPtr(models.ID(v.ID)), nil)
	}

	v.ContentCommittedSize = newCommitted
	v.ObjectKey = key
	v.ContentActualSHA256 = actualDigest
	v.ContentValid = becomingValid
	return v, nil
}

// ReadContent opens a range read over a committed version's content for the
// C8 content-GET endpoint.
func (s *Service) ReadContent(ctx context.Context, fileID models.FileID, versionNumber int64, offset, length int64) (io.ReadCloser, models.FileVersion, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanContentRead)
	defer span.End()

	v, err := s.getVersion(ctx, fileID, versionNumber)
	if err != nil {
		return nil, models.FileVersion{}, err
	}
	if !v.ContentValid {
		return nil, models.FileVersion{}, apierr.Conflict("file version content not yet committed")
	}
	provider, err := s.registry.Get(v.StorageLocationID)
	if err != nil {
		return nil, models.FileVersion{}, apierr.Wrap(apierr.KindStorageBackendErr, "storage location unavailable", err)
	}
	rc, err := provider.ReadRange(ctx, v.ObjectKey, offset, length)
	if err != nil {
		return nil, models.FileVersion{}, err
	}
	return rc, v, nil
}
