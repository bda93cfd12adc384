// Package files implements the File/FileVersion lifecycle (C5): file
// creation and metadata partitioning, version creation and numbering, and
// the tus-like resumable upload state machine (HEAD/PATCH/commit) with
// SHA-256 digest verification.
package files

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/events"
	"github.com/filez-project/filez/pkg/jobs"
	"github.com/filez-project/filez/pkg/models"
	"github.com/filez-project/filez/pkg/quota"
	"github.com/filez-project/filez/pkg/storage"
)

// JobKindPurgeStorage is the job kind enqueued by DeleteFile: it carries a
// "file_id" payload and is picked up by the purge worker (see
// cmd/filez's runStoragePurgeWorker), which removes every version's
// backing object from its storage provider once the soft-deleted File row
// is no longer reachable through the API.
const JobKindPurgeStorage = "file.purge_storage"

type Service struct {
	gw       *dbgateway.Gateway
	registry *storage.Registry
	quotas   *quota.Service
	events   *events.Log
	jobs     *jobs.Coordinator
}

func NewService(gw *dbgateway.Gateway, registry *storage.Registry, quotas *quota.Service, eventLog *events.Log, jobCoordinator *jobs.Coordinator) *Service {
	return &Service{gw: gw, registry: registry, quotas: quotas, events: eventLog, jobs: jobCoordinator}
}

// CreateFileParams is the request shape for creating a new File row.
type CreateFileParams struct {
	OwnerID  models.UserID
	Name     string
	MimeType string
}

func (s *Service) CreateFile(ctx context.Context, params CreateFileParams) (models.File, error) {
	if params.Name == "" {
		return models.File{}, apierr.InvalidRequest("name is required")
	}

	f := models.File{
		ID:           models.FileID(models.NewID()),
		OwnerID:      params.OwnerID,
		Name:         params.Name,
		MimeType:     params.MimeType,
		CreatedTime:  nowFn(),
		ModifiedTime: nowFn(),
	}

	err := s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO files (id, owner_id, name, mime_type, created_time, modified_time)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			f.ID, f.OwnerID, f.Name, f.MimeType, f.CreatedTime, f.ModifiedTime)
		if err != nil {
			return apierr.Internal("creating file", err)
		}
		return nil
	})
	if err != nil {
		return models.File{}, err
	}

	s.events.Emit(ctx, models.EventFileCreated, &f.OwnerID, nil, "File", idPtr(models.ID(f.ID)), nil)
	return f, nil
}

func (s *Service) GetFile(ctx context.Context, id models.FileID) (models.File, error) {
	var f models.File
	row := s.gw.Pool().QueryRow(ctx,
		`SELECT id, owner_id, name, mime_type, private_app_data, shared_app_data, extracted_data,
		        created_time, modified_time, deleted_time
		 FROM files WHERE id = $1 AND deleted_time IS NULL`, id)
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.MimeType, &f.PrivateAppData, &f.SharedAppData,
		&f.ExtractedData, &f.CreatedTime, &f.ModifiedTime, &f.DeletedTime)
	if err != nil {
		return models.File{}, apierr.NotFound("File")
	}
	return f, nil
}

func (s *Service) DeleteFile(ctx context.Context, id models.FileID, actor models.UserID) error {
	err := s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE files SET deleted_time = $2 WHERE id = $1 AND deleted_time IS NULL`, id, nowFn())
		if err != nil {
			return apierr.Internal("deleting file", err)
		}
		if tag.RowsAffected() == 0 {
			return apierr.NotFound("File")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.Emit(ctx, models.EventFileDeleted, &actor, nil, "File", idPtr(models.ID(id)), nil)

	if _, err := s.jobs.Enqueue(ctx, JobKindPurgeStorage, map[string]any{"file_id": id.String()}); err != nil {
		// The file is already soft-deleted and invisible through the API;
		// a failed enqueue only delays physical cleanup, so log and move on
		// rather than fail the caller's delete.
		logger.ErrorCtx(ctx, "enqueuing storage purge job failed", logger.FileID(id.String()), logger.Err(err))
	}
	return nil
}

// WriteSharedAppData merges updates into a File's SharedAppData. If any
// top-level key in updates was first written by an app other than writerID,
// the write still succeeds but is logged as FileSharedDataWrittenByForeignApp
// (§4.5 decided open question: foreign-app shared writes are permitted, not
// blocked, but always audited).
func (s *Service) WriteSharedAppData(ctx context.Context, fileID models.FileID, writerID models.ApplicationID, updates map[string]any) error {
	foreign := false
	err := s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var existing map[string]any
		row := tx.QueryRow(ctx, `SELECT shared_app_data FROM files WHERE id = $1 FOR UPDATE`, fileID)
		if err := row.Scan(&existing); err != nil {
			return apierr.NotFound("File")
		}
		if existing == nil {
			existing = map[string]any{}
		}
		for k, v := range updates {
			if ownerTag, ok := existing["_owner:"+k]; ok {
				if ownerTag != writerID.String() {
					foreign = true
				}
			} else {
				existing["_owner:"+k] = writerID.String()
			}
			existing[k] = v
		}
		_, err := tx.Exec(ctx, `UPDATE files SET shared_app_data = $2, modified_time = $3 WHERE id = $1`,
			fileID, existing, nowFn())
		if err != nil {
			return apierr.Internal("writing shared app data", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if foreign {
		s.events.Emit(ctx, models.EventFileSharedDataWrittenByForeignApp, nil, &writerID, "File", idPtr(models.ID(fileID)), nil)
	}
	return nil
}

func idPtr(id models.ID) *models.ID { return &id }

// nowFn is a package-level var so tests can override it; production code
// always calls time.Now.
var nowFn = time.Now
