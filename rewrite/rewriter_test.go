package rewrite

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/schemakit/history"
	"github.com/schemakit/schemakit/schema"
	"github.com/schemakit/schemakit/sqlgen"
	"github.com/schemakit/schemakit/store"
)

func newTestRewriter(t *testing.T) (*Rewriter, store.Executor, *history.VersionLedger) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Each pooled connection gets its own in-memory database, so keep one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st := store.NewSQLStore(db)
	versions := history.NewVersionLedger(st)
	require.NoError(t, versions.InitTable(context.Background()))
	return New(st, versions), st, versions
}

func oldUsers() *schema.TableSchema {
	return &schema.TableSchema{
		Name: "users",
		Fields: []schema.FieldSchema{
			{Name: "id", Type: schema.TypeInteger},
			{Name: "username", Type: schema.TypeText},
		},
		PrimaryKey: &schema.PrimaryKey{Name: "id", AutoIncrement: true},
	}
}

func seedOldUsers(t *testing.T, st store.Executor) {
	t.Helper()
	ctx := context.Background()
	b := sqlgen.NewBuilder()
	_, err := st.ExecuteUpdate(ctx, b.CreateTable(oldUsers()))
	require.NoError(t, err)
	for _, name := range []string{"alice", "bob"} {
		_, err := st.ExecuteInsert(ctx, `INSERT INTO "users" ("username") VALUES (?)`, name)
		require.NoError(t, err)
	}
}

func TestRewritePreservesSharedColumns(t *testing.T) {
	ctx := context.Background()
	rw, st, versions := newTestRewriter(t)
	seedOldUsers(t, st)

	new := oldUsers()
	new.Fields = append(new.Fields, schema.FieldSchema{
		Name: "email", Type: schema.TypeText, Nullable: true,
	})
	require.NoError(t, rw.Rewrite(ctx, oldUsers(), new))

	rows, err := st.ExecuteQuery(ctx, `SELECT "username", "email" FROM "users" ORDER BY "id"`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Value("username"))
	assert.Equal(t, "bob", rows[1].Value("username"))
	assert.Nil(t, rows[0].Value("email"))

	// The shadow table is gone and the version was bumped.
	shadow, err := st.ExecuteQuery(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, "users_temp")
	require.NoError(t, err)
	assert.Empty(t, shadow)

	v, err := versions.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestRewriteDropsRemovedColumnData(t *testing.T) {
	ctx := context.Background()
	rw, st, _ := newTestRewriter(t)
	seedOldUsers(t, st)

	new := &schema.TableSchema{
		Name:       "users",
		Fields:     []schema.FieldSchema{{Name: "id", Type: schema.TypeInteger}},
		PrimaryKey: &schema.PrimaryKey{Name: "id", AutoIncrement: true},
	}
	require.NoError(t, rw.Rewrite(ctx, oldUsers(), new))

	rows, err := st.ExecuteQuery(ctx, `SELECT "id" FROM "users"`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = st.ExecuteQuery(ctx, `SELECT "username" FROM "users"`)
	assert.Error(t, err)
}

func TestRewriteAppliesTypeChange(t *testing.T) {
	ctx := context.Background()
	rw, st, _ := newTestRewriter(t)
	seedOldUsers(t, st)

	new := oldUsers()
	new.Fields[1].Type = schema.TypeBinary
	require.NoError(t, rw.Rewrite(ctx, oldUsers(), new))

	rows, err := st.ExecuteQuery(ctx,
		`SELECT type FROM pragma_table_info('users') WHERE name = 'username'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BLOB", rows[0].Value("type"))
}

func TestRewriteRecreatesIndexes(t *testing.T) {
	ctx := context.Background()
	rw, st, _ := newTestRewriter(t)
	seedOldUsers(t, st)

	new := oldUsers()
	new.Indexes = []schema.IndexSchema{{Fields: []string{"username"}, Unique: true}}
	require.NoError(t, rw.Rewrite(ctx, oldUsers(), new))

	rows, err := st.ExecuteQuery(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, "users_username_idx")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRewriteMovesVersionRowOnRename(t *testing.T) {
	ctx := context.Background()
	rw, st, versions := newTestRewriter(t)
	seedOldUsers(t, st)
	require.NoError(t, versions.Record(ctx, oldUsers()))

	new := oldUsers()
	new.Name = "members"
	new.Fields[1].Type = schema.TypeBinary
	require.NoError(t, rw.Rewrite(ctx, oldUsers(), new))

	rows, err := st.ExecuteQuery(ctx, `SELECT "username" FROM "members" ORDER BY "id"`)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	v, err := versions.CurrentVersion(ctx, "members")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = versions.CurrentVersion(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestRewriteRejectsNotNullWithoutDefault(t *testing.T) {
	ctx := context.Background()
	rw, st, _ := newTestRewriter(t)
	seedOldUsers(t, st)

	new := oldUsers()
	new.Fields = append(new.Fields, schema.FieldSchema{Name: "email", Type: schema.TypeText})

	err := rw.Rewrite(ctx, oldUsers(), new)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.email")

	// Rejected before any statement ran: the old table is untouched.
	rows, err := st.ExecuteQuery(ctx, `SELECT "username" FROM "users"`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRewriteAllowsNotNullWithDefault(t *testing.T) {
	ctx := context.Background()
	rw, st, _ := newTestRewriter(t)
	seedOldUsers(t, st)

	new := oldUsers()
	new.Fields = append(new.Fields, schema.FieldSchema{
		Name: "status", Type: schema.TypeText, Default: "active",
	})
	require.NoError(t, rw.Rewrite(ctx, oldUsers(), new))

	rows, err := st.ExecuteQuery(ctx, `SELECT "status" FROM "users"`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "active", rows[0].Value("status"))
}

func TestRewriteRejectsInvalidTargetSchema(t *testing.T) {
	ctx := context.Background()
	rw, _, _ := newTestRewriter(t)

	invalid := &schema.TableSchema{Name: "users", Fields: []schema.FieldSchema{
		{Name: "x", Type: schema.TypeText},
		{Name: "x", Type: schema.TypeText},
	}}
	assert.Error(t, rw.Rewrite(ctx, oldUsers(), invalid))
}
