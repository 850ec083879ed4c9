package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/waste-pickup-exchange/internal/testutil/containers"
)

// TestDB provides a throwaway PostgreSQL instance with the exchange
// schema applied from the real migration files.
type TestDB struct {
	t    *testing.T
	pool *pgxpool.Pool
}

// NewTestDB starts a PostgreSQL container, connects a pgx pool, and
// runs the up migrations. Skipped under -short so the suite passes
// without Docker.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := containers.NewPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pg.Terminate(context.Background())
	})

	pool, err := pgxpool.New(ctx, pg.ConnectionString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))

	tdb := &TestDB{t: t, pool: pool}
	tdb.applyMigrations(ctx)
	return tdb
}

// Pool returns the underlying connection pool.
func (tdb *TestDB) Pool() *pgxpool.Pool {
	return tdb.pool
}

// applyMigrations runs the repository's up migrations in lexical order,
// the same files cmd/migrate applies in production.
func (tdb *TestDB) applyMigrations(ctx context.Context) {
	tdb.t.Helper()

	_, self, _, ok := runtime.Caller(0)
	require.True(tdb.t, ok)
	dir := filepath.Join(filepath.Dir(self), "..", "..", "migrations")

	entries, err := os.ReadDir(dir)
	require.NoError(tdb.t, err)

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".sql") && !strings.HasSuffix(name, ".down.sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	require.NotEmpty(tdb.t, files, "no migrations found in %s", dir)

	for _, name := range files {
		sqlBytes, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(tdb.t, err)
		_, err = tdb.pool.Exec(ctx, string(sqlBytes))
		require.NoError(tdb.t, err, "applying migration %s", name)
	}
}

// TruncateTables resets all tables for test isolation.
func (tdb *TestDB) TruncateTables() {
	tdb.t.Helper()

	ctx := context.Background()
	for _, table := range []string{"bids", "pickup_requests", "vendors", "factories", "profiles"} {
		_, err := tdb.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(tdb.t, err)
	}
}
