package tags

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/models"
)

// AddMember adds fileID to a Manual FileGroup; adding twice is a no-op.
func (s *Service) AddMember(ctx context.Context, groupID models.FileGroupID, fileID models.FileID) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var kind models.GroupKind
		if err := tx.QueryRow(ctx, `SELECT kind FROM file_groups WHERE id = $1`, groupID).Scan(&kind); err != nil {
			return apierr.NotFound("FileGroup")
		}
		if kind != models.GroupKindManual {
			return apierr.InvalidRequest("cannot manually add members to a %s group", kind)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO file_group_members (file_group_id, file_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			groupID, fileID)
		if err != nil {
			return apierr.Internal("adding group member", err)
		}
		return nil
	})
}

// RemoveMember removes fileID from a Manual FileGroup.
func (s *Service) RemoveMember(ctx context.Context, groupID models.FileGroupID, fileID models.FileID) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM file_group_members WHERE file_group_id = $1 AND file_id = $2`, groupID, fileID)
		if err != nil {
			return apierr.Internal("removing group member", err)
		}
		return nil
	})
}

// ListMembers returns the file IDs belonging to groupID: the manual
// membership rows for a Manual group, or the result of evaluating Rule
// against tag_members for a Dynamic group.
func (s *Service) ListMembers(ctx context.Context, groupID models.FileGroupID) ([]models.FileID, error) {
	var kind models.GroupKind
	var rule *models.DynamicRule
	err := s.gw.Pool().QueryRow(ctx, `SELECT kind, rule FROM file_groups WHERE id = $1`, groupID).Scan(&kind, &rule)
	if err != nil {
		return nil, apierr.NotFound("FileGroup")
	}

	var rows pgx.Rows
	switch kind {
	case models.GroupKindManual:
		rows, err = s.gw.Pool().Query(ctx,
			`SELECT file_id FROM file_group_members WHERE file_group_id = $1 ORDER BY file_id`, groupID)
	case models.GroupKindDynamic:
		rows, err = s.evaluateDynamicRule(ctx, rule)
	default:
		return nil, apierr.Internal("unknown group kind", nil)
	}
	if err != nil {
		return nil, apierr.Internal("listing group members", err)
	}
	defer rows.Close()

	var ids []models.FileID
	for rows.Next() {
		var id models.FileID
		if err := rows.Scan(&id); err != nil {
			return nil, apierr.Internal("scanning group member", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Service) evaluateDynamicRule(ctx context.Context, rule *models.DynamicRule) (pgx.Rows, error) {
	if rule == nil {
		return nil, apierr.Internal("dynamic group missing rule", nil)
	}
	switch rule.Op {
	case "HasTag", "HasAnyTag":
		return s.gw.Pool().Query(ctx,
			`SELECT DISTINCT file_id FROM tag_members WHERE tag = ANY($1) ORDER BY file_id`, rule.Tags)
	case "HasAllTags":
		return s.gw.Pool().Query(ctx,
			`SELECT file_id FROM tag_members WHERE tag = ANY($1)
			 GROUP BY file_id HAVING COUNT(DISTINCT tag) = $2 ORDER BY file_id`,
			rule.Tags, len(rule.Tags))
	default:
		return nil, apierr.InvalidRequest("unknown dynamic rule op %q", rule.Op)
	}
}
