//go:build integration

package dbgateway_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/filez-project/filez/pkg/dbgateway"
)

// These tests run against a real Postgres via testcontainers-go, matching
// the teacher's own DB-backed test suite. They're gated behind the
// "integration" build tag because they need a Docker daemon, so plain
// `go test ./...` skips them.
func TestGateway_TransactionCommits(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("filez"),
		postgres.WithUsername("filez"),
		postgres.WithPassword("filez"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, dbgateway.Migrate(dsn, migrationsDir(t)))

	gw, err := dbgateway.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(gw.Close)

	require.NoError(t, gw.Health(ctx))

	err = gw.Transaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `SELECT 1`)
		return execErr
	})
	require.NoError(t, err)
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
