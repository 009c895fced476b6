package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/sagarc03/conduit"
	"github.com/sagarc03/conduit/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConnect_InvalidTables(t *testing.T) {
	_, err := sqlite.Connect(context.Background(), ":memory:", conduit.Tables{})
	assert.Error(t, err)
}

func TestDatabase_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tables := conduit.Tables{Users: "users_lifecycle"}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err)

	require.NoError(t, db.Ping(ctx))
	assert.Error(t, db.Validate(ctx), "validate should fail without tables")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate should be idempotent")
	assert.NoError(t, db.Validate(ctx))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}

func TestMigrate_DropTables(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	tables := conduit.Tables{Users: "users_roundtrip"}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	require.NoError(t, sqlite.ValidateSchema(ctx, db, tables))

	require.NoError(t, sqlite.DropTables(ctx, db, tables))
	assert.Error(t, sqlite.ValidateSchema(ctx, db, tables))
}

func TestValidateSchema_Mismatch(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	tests := []struct {
		name    string
		ddl     string
		wantErr string
	}{
		{
			name:    "missing column",
			ddl:     `CREATE TABLE %s (id TEXT NOT NULL PRIMARY KEY, name TEXT NOT NULL, created_at TEXT NOT NULL)`,
			wantErr: "missing columns: email",
		},
		{
			name:    "wrong type",
			ddl:     `CREATE TABLE %s (id TEXT NOT NULL PRIMARY KEY, name TEXT NOT NULL, email TEXT NOT NULL, created_at INTEGER NOT NULL)`,
			wantErr: "created_at: expected text, got integer",
		},
		{
			name:    "nullable column",
			ddl:     `CREATE TABLE %s (id TEXT NOT NULL PRIMARY KEY, name TEXT, email TEXT NOT NULL, created_at TEXT NOT NULL)`,
			wantErr: "name: expected nullable=false, got nullable=true",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tableName := fmt.Sprintf("users_bad_%d", i)
			_, err := db.ExecContext(ctx, fmt.Sprintf(tt.ddl, tableName))
			require.NoError(t, err)

			err = sqlite.ValidateSchema(ctx, db, conduit.Tables{Users: tableName})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
