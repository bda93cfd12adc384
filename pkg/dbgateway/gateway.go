// Package dbgateway wraps the request-path Postgres connection pool (C2).
// Request handlers go through pgx directly for latency-sensitive reads and
// writes; the control-plane/reconciler side uses GORM instead (see
// pkg/reconciler). Gateway centralizes the retry policy the teacher's
// transaction helper uses: retry serialization failures and deadlocks up to
// a fixed budget, surface everything else immediately.
package dbgateway

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filez-project/filez/pkg/apierr"
)

const (
	maxTxRetries   = 5
	retryBaseDelay = 20 * time.Millisecond
)

// Postgres error codes that are safe to retry: serialization failure and
// deadlock detected.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

type Gateway struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func Connect(ctx context.Context, dsn string) (*Gateway, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apierr.Internal("connecting to database", err)
	}
	return New(pool), nil
}

func (g *Gateway) Pool() *pgxpool.Pool {
	return g.pool
}

func (g *Gateway) Close() {
	g.pool.Close()
}

func (g *Gateway) Health(ctx context.Context) error {
	if err := g.pool.Ping(ctx); err != nil {
		return apierr.Wrap(apierr.KindInternal, "database unreachable", err)
	}
	return nil
}

// Transaction runs fn inside a serializable transaction, retrying up to
// maxTxRetries times when Postgres reports a serialization failure or
// deadlock, per the teacher's transaction helper. Any other error, or
// exhausting the retry budget, aborts and returns immediately.
func (g *Gateway) Transaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := g.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseDelay * time.Duration(1<<attempt)):
		}
	}
	return apierr.Internal("transaction failed after retries", lastErr)
}

func (g *Gateway) runOnce(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return apierr.Internal("beginning transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return true
		}
	}
	return false
}
