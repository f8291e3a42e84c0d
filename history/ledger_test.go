package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/schemakit/plan"
	"github.com/schemakit/schemakit/schema"
	"github.com/schemakit/schemakit/store"
)

func newTestStore(t *testing.T) store.Executor {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Each pooled connection gets its own in-memory database, so keep one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return store.NewSQLStore(db)
}

func TestVersionLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewVersionLedger(newTestStore(t))
	require.NoError(t, ledger.InitTable(ctx))

	v, err := ledger.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	s := &schema.TableSchema{
		Name:   "users",
		Fields: []schema.FieldSchema{{Name: "username", Type: schema.TypeText}},
	}
	require.NoError(t, ledger.Record(ctx, s))

	v, err = ledger.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	hash, err := s.Hash()
	require.NoError(t, err)
	stored, err := ledger.CurrentHash(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, hash, stored)

	s.Fields = append(s.Fields, schema.FieldSchema{Name: "email", Type: schema.TypeText, Nullable: true})
	require.NoError(t, ledger.Record(ctx, s))

	v, err = ledger.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	stored, err = ledger.CurrentHash(ctx, "users")
	require.NoError(t, err)
	assert.NotEqual(t, hash, stored)
}

func TestVersionLedgerRename(t *testing.T) {
	ctx := context.Background()
	ledger := NewVersionLedger(newTestStore(t))
	require.NoError(t, ledger.InitTable(ctx))

	require.NoError(t, ledger.RecordNamed(ctx, "users", "abc"))
	require.NoError(t, ledger.RecordNamed(ctx, "users", "def"))
	require.NoError(t, ledger.Rename(ctx, "users", "app_users"))

	v, err := ledger.CurrentVersion(ctx, "app_users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = ledger.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestVersionLedgerDelete(t *testing.T) {
	ctx := context.Background()
	ledger := NewVersionLedger(newTestStore(t))
	require.NoError(t, ledger.InitTable(ctx))

	require.NoError(t, ledger.RecordNamed(ctx, "users", "abc"))
	require.NoError(t, ledger.Delete(ctx, "users"))

	v, err := ledger.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	// Deleting an untracked name is a no-op.
	require.NoError(t, ledger.Delete(ctx, "ghost"))
}

func TestVersionLedgerAll(t *testing.T) {
	ctx := context.Background()
	ledger := NewVersionLedger(newTestStore(t))
	require.NoError(t, ledger.InitTable(ctx))

	require.NoError(t, ledger.RecordNamed(ctx, "users", "h1"))
	require.NoError(t, ledger.RecordNamed(ctx, "accounts", "h2"))

	records, err := ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "accounts", records[0].TableName)
	assert.Equal(t, "users", records[1].TableName)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestMigrationLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newTestStore(t))
	require.NoError(t, ledger.InitTable(ctx))

	started := time.Now()
	require.NoError(t, ledger.Insert(ctx, &MigrationRecord{
		TaskID:      "migration_1",
		TableName:   "users",
		FromVersion: 0,
		ToVersion:   1,
		State:       StateInProgress,
		StartedAt:   started,
	}))
	require.NoError(t, ledger.Insert(ctx, &MigrationRecord{
		TaskID:      "migration_2",
		TableName:   "users",
		FromVersion: 1,
		ToVersion:   2,
		State:       StateInProgress,
		StartedAt:   started.Add(time.Second),
	}))

	require.NoError(t, ledger.MarkCompleted(ctx, "migration_1", started.Add(time.Millisecond)))
	require.NoError(t, ledger.MarkFailed(ctx, "migration_2", started.Add(2*time.Second), "boom"))

	records, err := ledger.ForTable(ctx, "users")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "migration_1", records[0].TaskID)
	assert.Equal(t, StateCompleted, records[0].State)
	assert.Empty(t, records[0].ErrorMessage)

	assert.Equal(t, "migration_2", records[1].TaskID)
	assert.Equal(t, StateFailed, records[1].State)
	assert.Equal(t, "boom", records[1].ErrorMessage)
	assert.False(t, records[1].CompletedAt.IsZero())

	records, err = ledger.ForTable(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSerializeOperations(t *testing.T) {
	ops := []plan.MigrationOperation{
		{Type: plan.OpCreateTable, TableName: "users", SQL: `CREATE TABLE "users" ("id" INTEGER)`},
		{Type: plan.OpCreateIndex, TableName: "users", IndexName: "users_id_idx"},
	}
	data, err := SerializeOperations(ops)
	require.NoError(t, err)

	got, err := DeserializeOperations(data)
	require.NoError(t, err)
	assert.Equal(t, ops, got)

	got, err = DeserializeOperations("")
	require.NoError(t, err)
	assert.Nil(t, got)
}
