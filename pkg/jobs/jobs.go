// Package jobs implements the asynchronous job coordinator (C10). Workers
// Pickup a batch of Pending jobs, claiming each row with
// `SELECT ... FOR UPDATE SKIP LOCKED` so concurrent workers never block on
// or double-process the same job, then report back via UpdateStatus.
package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/filez-project/filez/internal/telemetry"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

// staleLeaseDuration is how long a Claimed job may go without an
// UpdateStatus call before Sweep reclaims it as Pending again, with no
// affinity for the worker instance that originally claimed it (SPEC_FULL
// decided open question: re-offering never tries to return a job to the
// same runtime instance).
const staleLeaseDuration = 5 * time.Minute

type Coordinator struct {
	gw *dbgateway.Gateway
}

func NewCoordinator(gw *dbgateway.Gateway) *Coordinator {
	return &Coordinator{gw: gw}
}

// Enqueue creates a new Pending job.
func (c *Coordinator) Enqueue(ctx context.Context, kind string, payload map[string]any) (models.JobID, error) {
	id := models.JobID(models.NewID())
	_, err := c.gw.Pool().Exec(ctx,
		`INSERT INTO jobs (id, kind, status, payload, attempts, created_time, modified_time)
		 VALUES ($1, $2, $3, $4, 0, $5, $5)`,
		id, kind, models.JobStatusPending, payload, time.Now())
	if err != nil {
		return models.JobID{}, apierr.Internal("enqueuing job", err)
	}
	return id, nil
}

// Pickup claims up to limit Pending jobs of the given kind for
// runtimeInstanceID, atomically transitioning them to Claimed.
func (c *Coordinator) Pickup(ctx context.Context, kind string, runtimeInstanceID string, limit int) ([]models.Job, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanJobPickup)
	defer span.End()

	var claimed []models.Job
	err := c.gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id, kind, status, payload, attempts
			 FROM jobs
			 WHERE kind = $1 AND status = $2
			 ORDER BY created_time
			 LIMIT $3
			 FOR UPDATE SKIP LOCKED`,
			kind, models.JobStatusPending, limit)
		if err != nil {
			return apierr.Internal("selecting jobs", err)
		}

		var ids []models.JobID
		for rows.Next() {
			var j models.Job
			if err := rows.Scan(&j.ID, &j.Kind, &j.Status, &j.Payload, &j.Attempts); err != nil {
				rows.Close()
				return apierr.Internal("scanning job", err)
			}
			j.Status = models.JobStatusClaimed
			claimed = append(claimed, j)
			ids = append(ids, j.ID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return apierr.Internal("iterating jobs", err)
		}

		now := time.Now()
		for _, id := range ids {
			if _, err := tx.Exec(ctx,
				`UPDATE jobs SET status = $2, runtime_instance_id = $3, claimed_at = $4,
				        attempts = attempts + 1, modified_time = $4
				 WHERE id = $1`,
				id, models.JobStatusClaimed, runtimeInstanceID, now); err != nil {
				return apierr.Internal("claiming job", err)
			}
		}
		return nil
	})
	return claimed, err
}

// UpdateStatus records the outcome of a claimed job.
func (c *Coordinator) UpdateStatus(ctx context.Context, id models.JobID, status models.JobStatus, lastError *string) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanJobUpdateStatus)
	defer span.End()

	_, err := c.gw.Pool().Exec(ctx,
		`UPDATE jobs SET status = $2, last_error = $3, modified_time = $4 WHERE id = $1`,
		id, status, lastError, time.Now())
	if err != nil {
		return apierr.Internal("updating job status", err)
	}
	return nil
}

// Sweep reclaims Claimed jobs whose lease has expired, setting them back to
// Pending so any worker (not necessarily the one that originally claimed
// them) can pick them up again.
func (c *Coordinator) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-staleLeaseDuration)
	tag, err := c.gw.Pool().Exec(ctx,
		`UPDATE jobs SET status = $1, runtime_instance_id = NULL, claimed_at = NULL, modified_time = now()
		 WHERE status = $2 AND claimed_at < $3`,
		models.JobStatusPending, models.JobStatusClaimed, cutoff)
	if err != nil {
		return 0, apierr.Internal("sweeping stale jobs", err)
	}
	return tag.RowsAffected(), nil
}
