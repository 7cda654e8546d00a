// Package testdb provides an in-memory database for handler and
// repository tests. It uses SQLite so tests need no external services.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"mechanic-service/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Setup opens a fresh in-memory database with the full schema created.
// The database is private to the test and closed on cleanup.
func Setup(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// One connection keeps every query on the same in-memory database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	models.RegisterJoinModels(db)

	ctx := context.Background()
	for _, model := range models.All() {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// CleanupTables truncates the given tables between subtests and resets
// their autoincrement counters.
func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()
	for _, table := range tables {
		_, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err)
		_, _ = db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
	}
}
