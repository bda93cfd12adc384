// Package quota implements per-user, per-storage-location byte quotas (C6)
// with optimistic reservation: bytes are reserved against the quota the
// moment an upload declares its expected size, before any content moves, so
// a client can never push the backend past its limit and then discover the
// failure only at commit time.
package quota

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

// Reserve atomically increments ReservedBytes by size, failing with a
// Conflict error if doing so would exceed LimitBytes. Called when an
// upload's expected content size becomes known (file-version creation).
func (s *Service) Reserve(ctx context.Context, userID models.UserID, locID models.StorageLocID, size int64) (models.StorageQuotaID, error) {
	var quotaID models.StorageQuotaID
	err := s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var q models.StorageQuota
		row := tx.QueryRow(ctx,
			`SELECT id, limit_bytes, used_bytes, reserved_bytes FROM storage_quotas
			 WHERE user_id = $1 AND storage_location_id = $2 FOR UPDATE`, userID, locID)
		if err := row.Scan(&q.ID, &q.LimitBytes, &q.UsedBytes, &q.ReservedBytes); err != nil {
			return apierr.NotFound("StorageQuota")
		}

		if q.UsedBytes+q.ReservedBytes+size > q.LimitBytes {
			return apierr.New(apierr.KindConflict, "storage quota exceeded")
		}

		_, err := tx.Exec(ctx,
			`UPDATE storage_quotas SET reserved_bytes = reserved_bytes + $2 WHERE id = $1`, q.ID, size)
		if err != nil {
			return apierr.Internal("reserving quota", err)
		}
		quotaID = q.ID
		return nil
	})
	return quotaID, err
}

// Finalize moves size bytes from ReservedBytes to UsedBytes once an
// upload's content is verified and committed.
func (s *Service) Finalize(ctx context.Context, quotaID models.StorageQuotaID, size int64) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE storage_quotas
			 SET reserved_bytes = reserved_bytes - $2, used_bytes = used_bytes + $2
			 WHERE id = $1`, quotaID, size)
		if err != nil {
			return apierr.Internal("finalizing quota", err)
		}
		return nil
	})
}

// Release returns size bytes to the available pool without ever having
// counted them as used — called when an upload is abandoned or a version is
// deleted before its content was verified.
func (s *Service) Release(ctx context.Context, quotaID models.StorageQuotaID, size int64) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE storage_quotas SET reserved_bytes = GREATEST(reserved_bytes - $2, 0) WHERE id = $1`,
			quotaID, size)
		if err != nil {
			return apierr.Internal("releasing quota reservation", err)
		}
		return nil
	})
}

// Decrement releases size bytes from UsedBytes — called when a committed
// version's content is deleted.
func (s *Service) Decrement(ctx context.Context, quotaID models.StorageQuotaID, size int64) error {
	return s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE storage_quotas SET used_bytes = GREATEST(used_bytes - $2, 0) WHERE id = $1`,
			quotaID, size)
		if err != nil {
			return apierr.Internal("decrementing quota usage", err)
		}
		return nil
	})
}

// SweepStaleReservations releases reservations belonging to uploads that
// were abandoned (no PATCH in olderThanSeconds) and never committed. Run
// on a ticker by cmd/filez's runQuotaSweeper.
func (s *Service) SweepStaleReservations(ctx context.Context, olderThanSeconds int) (int64, error) {
	var released int64
	err := s.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT fv.storage_quota_id, fv.content_expected_size - fv.content_committed_size
			 FROM file_versions fv
			 WHERE fv.content_valid = false
			   AND fv.modified_time < now() - ($1 * interval '1 second')`, olderThanSeconds)
		if err != nil {
			return apierr.Internal("querying stale uploads", err)
		}
		defer rows.Close()

		for rows.Next() {
			var quotaID models.StorageQuotaID
			var remaining int64
			if err := rows.Scan(&quotaID, &remaining); err != nil {
				return apierr.Internal("scanning stale upload", err)
			}
			if _, err := tx.Exec(ctx,
				`UPDATE storage_quotas SET reserved_bytes = GREATEST(reserved_bytes - $2, 0) WHERE id = $1`,
				quotaID, remaining); err != nil {
				return apierr.Internal("releasing stale reservation", err)
			}
			released++
		}
		return rows.Err()
	})
	return released, err
}
