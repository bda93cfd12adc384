// Package tags implements file tagging and group membership (C4): tag
// mutation, manual group membership management, dynamic group evaluation,
// and the shared ListFiles pagination helper used by both tag and group
// listing endpoints.
package tags

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

type Service struct {
	gw *dbgateway.Gateway
}

func NewService(gw *dbgateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Add attaches tag to fileID; attaching an already-present tag is a no-op.
func (s *Service) Add(ctx context.Context, fileID models.FileID, tag string) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO tag_members (file_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			fileID, tag)
		if err != nil {
			return apierr.Internal("adding tag", err)
		}
		return nil
	})
}

// Remove detaches tag from fileID; removing an absent tag is a no-op.
func (s *Service) Remove(ctx context.Context, fileID models.FileID, tag string) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM tag_members WHERE file_id = $1 AND tag = $2`, fileID, tag)
		if err != nil {
			return apierr.Internal("removing tag", err)
		}
		return nil
	})
}

// Set replaces fileID's entire tag set with tags, atomically.
func (s *Service) Set(ctx context.Context, fileID models.FileID, newTags []string) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tag_members WHERE file_id = $1`, fileID); err != nil {
			return apierr.Internal("clearing tags", err)
		}
		for _, tag := range newTags {
			if _, err := tx.Exec(ctx,
				`INSERT INTO tag_members (file_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				fileID, tag); err != nil {
				return apierr.Internal("setting tag", err)
			}
		}
		return nil
	})
}

// Clear removes every tag from fileID.
func (s *Service) Clear(ctx context.Context, fileID models.FileID) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM tag_members WHERE file_id = $1`, fileID)
		if err != nil {
			return apierr.Internal("clearing tags", err)
		}
		return nil
	})
}

// ListTags returns every tag currently attached to fileID.
func (s *Service) ListTags(ctx context.Context, fileID models.FileID) ([]string, error) {
	rows, err := s.gw.Pool().Query(ctx, `SELECT tag FROM tag_members WHERE file_id = $1 ORDER BY tag`, fileID)
	if err != nil {
		return nil, apierr.Internal("listing tags", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, apierr.Internal("scanning tag", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
