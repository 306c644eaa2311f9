// Package storagetest opens a freshly provisioned database for tests that
// need a real Postgres. Set TEST_DATABASE_DSN to a scratch database to run
// them; they are skipped otherwise.
package storagetest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
)

const DSNEnv = "TEST_DATABASE_DSN"

// lockKey serialises test packages sharing the scratch database.
const lockKey = 7_340_215

// New skips the test without TEST_DATABASE_DSN. Otherwise it holds an advisory
// lock for the test lifetime and returns a storage with an empty schema.
func New(t *testing.T) *storage.Storage {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", DSNEnv)
	}

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		_ = conn.Close(context.Background())
	})

	lg := logging.NewFromZap(zaptest.NewLogger(t))
	strg, err := storage.Open(ctx, &config.Config{DatabaseDSN: dsn, DatabaseMaxConns: 4}, lg)
	require.NoError(t, err)
	t.Cleanup(strg.Close)

	require.NoError(t, strg.Provision(ctx))

	return strg
}
