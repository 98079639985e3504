// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/padraicbc/regattaapi/config"
	"github.com/padraicbc/regattaapi/db"
)

// New returns an in-memory database with all tables created. It is closed
// when the test ends.
func New(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	bdb, err := db.Open(ctx, &config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	require.NoError(t, db.CreateTables(ctx, bdb))
	return bdb
}
