package tags

import (
	"context"
	"sync"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/models"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// ListFilesParams is the shared pagination request shape for every
// files-by-tag / files-by-group listing endpoint (§4.4).
type ListFilesParams struct {
	Tag     string
	GroupID *models.FileGroupID
	Limit   int
	Offset  int
}

// ListFilesResult carries a page of file IDs plus the total matching count,
// fetched concurrently with the page query so large tables don't double the
// request's wall-clock latency.
type ListFilesResult struct {
	FileIDs []models.FileID
	Total   int64
}

// ListFiles runs the page query and the count query concurrently, ordering
// tag results by (modified_time DESC, id) and group results in the group's
// member order (by file id), and clamping Limit into [1, maxPageSize].
func (s *Service) ListFiles(ctx context.Context, params ListFilesParams) (ListFilesResult, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var (
		wg        sync.WaitGroup
		pageErr   error
		countErr  error
		ids       []models.FileID
		total     int64
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ids, pageErr = s.fileIDsPage(ctx, params, limit)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.fileIDsCount(ctx, params)
	}()
	wg.Wait()

	if pageErr != nil {
		return ListFilesResult{}, pageErr
	}
	if countErr != nil {
		return ListFilesResult{}, countErr
	}
	return ListFilesResult{FileIDs: ids, Total: total}, nil
}

func (s *Service) fileIDsPage(ctx context.Context, params ListFilesParams, limit int) ([]models.FileID, error) {
	var (
		rows interface {
			Next() bool
			Scan(...any) error
			Err() error
			Close()
		}
		err error
	)
	switch {
	case params.Tag != "":
		rows, err = s.gw.Pool().Query(ctx,
			`SELECT f.id FROM files f JOIN tag_members t ON t.file_id = f.id
			 WHERE t.tag = $1 AND f.deleted_time IS NULL
			 ORDER BY f.modified_time DESC, f.id OFFSET $2 LIMIT $3`,
			params.Tag, params.Offset, limit)
	case params.GroupID != nil:
		return s.groupFileIDsPage(ctx, *params.GroupID, params.Offset, limit)
	default:
		return nil, apierr.InvalidRequest("ListFiles requires a Tag or GroupID filter")
	}
	if err != nil {
		return nil, apierr.Internal("listing files", err)
	}
	defer rows.Close()

	var ids []models.FileID
	for rows.Next() {
		var id models.FileID
		if err := rows.Scan(&id); err != nil {
			return nil, apierr.Internal("scanning file id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Service) groupFileIDsPage(ctx context.Context, groupID models.FileGroupID, offset, limit int) ([]models.FileID, error) {
	members, err := s.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if offset >= len(members) {
		return nil, nil
	}
	end := offset + limit
	if end > len(members) {
		end = len(members)
	}
	return members[offset:end], nil
}

func (s *Service) fileIDsCount(ctx context.Context, params ListFilesParams) (int64, error) {
	if params.GroupID != nil {
		members, err := s.ListMembers(ctx, *params.GroupID)
		if err != nil {
			return 0, err
		}
		return int64(len(members)), nil
	}

	var count int64
	err := s.gw.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM files f JOIN tag_members t ON t.file_id = f.id
		 WHERE t.tag = $1 AND f.deleted_time IS NULL`, params.Tag).Scan(&count)
	if err != nil {
		return 0, apierr.Internal("counting files", err)
	}
	return count, nil
}
