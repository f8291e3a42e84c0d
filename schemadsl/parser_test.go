package schemadsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/schemakit/schema"
)

func TestParseFullTable(t *testing.T) {
	input := `
table users identity "tbl_users" {
    id integer pk auto
    username text identity "fld_username" unique
    email text nullable default "none" pattern "email"
    age integer nullable default 21
    active boolean default true
    index (username) unique
    index "by_email" (email)
    fk email references accounts (email) on_delete cascade on_update restrict
}
`
	tables, err := ParseString("users.skt", input)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	s := tables[0]
	assert.Equal(t, "users", s.Name)
	assert.Equal(t, "tbl_users", s.ID)
	assert.False(t, s.Shared)

	require.NotNil(t, s.PrimaryKey)
	assert.Equal(t, "id", s.PrimaryKey.Name)
	assert.True(t, s.PrimaryKey.AutoIncrement)

	require.Len(t, s.Fields, 5)

	username := s.Field("username")
	require.NotNil(t, username)
	assert.Equal(t, schema.TypeText, username.Type)
	assert.Equal(t, "fld_username", username.ID)
	assert.True(t, username.Unique)
	assert.False(t, username.Nullable)

	email := s.Field("email")
	require.NotNil(t, email)
	assert.True(t, email.Nullable)
	assert.Equal(t, "none", email.Default)
	assert.Equal(t, "email", email.Pattern)

	age := s.Field("age")
	require.NotNil(t, age)
	assert.Equal(t, int64(21), age.Default)

	active := s.Field("active")
	require.NotNil(t, active)
	assert.Equal(t, schema.TypeBoolean, active.Type)
	assert.Equal(t, true, active.Default)

	require.Len(t, s.Indexes, 2)
	assert.Equal(t, []string{"username"}, s.Indexes[0].Fields)
	assert.True(t, s.Indexes[0].Unique)
	assert.Equal(t, "by_email", s.Indexes[1].Name)
	assert.False(t, s.Indexes[1].Unique)

	require.Len(t, s.ForeignKeys, 1)
	fk := s.ForeignKeys[0]
	assert.Equal(t, "email", fk.Field)
	assert.Equal(t, "accounts", fk.RefTable)
	assert.Equal(t, "email", fk.RefField)
	assert.Equal(t, schema.Cascade, fk.OnDelete)
	assert.Equal(t, schema.Restrict, fk.OnUpdate)
}

func TestParseMultipleTables(t *testing.T) {
	input := `
table users {
    id integer pk auto
    username text
}

table sessions shared {
    token text unique
    user_id integer
    fk user_id references users (id) on_delete cascade
}
`
	tables, err := ParseString("schema.skt", input)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "sessions", tables[1].Name)
	assert.True(t, tables[1].Shared)
	assert.Nil(t, tables[1].PrimaryKey)
}

func TestParseUnknownFieldType(t *testing.T) {
	_, err := ParseString("bad.skt", `
table users {
    id uuid pk
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field type")
}

func TestParseUnknownReferentialAction(t *testing.T) {
	_, err := ParseString("bad.skt", `
table sessions {
    user_id integer
    fk user_id references users (id) on_delete explode
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown referential action")
}

func TestParseRejectsDuplicatePrimaryKey(t *testing.T) {
	_, err := ParseString("bad.skt", `
table users {
    id integer pk
    other integer pk
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one primary key")
}

func TestParseRejectsInvalidSchema(t *testing.T) {
	_, err := ParseString("bad.skt", `
table users {
    name text
    name text
}
`)
	require.Error(t, err)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseString("bad.skt", `table users {`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse schema")
}
