package files

import (
	"context"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/models"
)

// PurgeStorage removes the backing object for every version of a
// soft-deleted File. It is the handler the purge worker runs for
// JobKindPurgeStorage jobs enqueued by DeleteFile; it is idempotent
// (a provider Delete on an already-absent key is not an error) so a job
// retried after a crash mid-purge is safe to run again.
func (s *Service) PurgeStorage(ctx context.Context, fileID models.FileID) error {
	rows, err := s.gw.Pool().Query(ctx,
		`SELECT storage_location_id, object_key FROM file_versions WHERE file_id = $1 AND object_key != ''`,
		fileID)
	if err != nil {
		return apierr.Internal("listing file versions to purge", err)
	}
	defer rows.Close()

	var purged int
	for rows.Next() {
		var locID models.StorageLocID
		var key string
		if err := rows.Scan(&locID, &key); err != nil {
			return apierr.Internal("scanning file version to purge", err)
		}

		provider, err := s.registry.Get(locID)
		if err != nil {
			logger.WarnCtx(ctx, "purge skipped version: storage location unavailable",
				logger.FileID(fileID.String()), logger.StorageLocationID(locID.String()), logger.Err(err))
			continue
		}
		if err := provider.Delete(ctx, key); err != nil {
			return apierr.Wrap(apierr.KindStorageBackendErr, "deleting purged object", err)
		}
		purged++
	}
	if err := rows.Err(); err != nil {
		return apierr.Internal("iterating file versions to purge", err)
	}

	logger.InfoCtx(ctx, "purged file storage", logger.FileID(fileID.String()), "objects_purged", purged)
	return nil
}
