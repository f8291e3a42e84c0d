package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := &TableSchema{
		Name: "users",
		Fields: []FieldSchema{
			{Name: "id", Type: TypeInteger},
			{Name: "username", Type: TypeText},
		},
		PrimaryKey: &PrimaryKey{Name: "id", AutoIncrement: true},
	}
	require.NoError(t, valid.Validate())

	duplicate := &TableSchema{
		Name: "users",
		Fields: []FieldSchema{
			{Name: "username", Type: TypeText},
			{Name: "username", Type: TypeText},
		},
	}
	assert.Error(t, duplicate.Validate())

	sharedToken := &TableSchema{
		Name: "users",
		Fields: []FieldSchema{
			{Name: "a", ID: "fld_1", Type: TypeText},
			{Name: "b", ID: "fld_1", Type: TypeText},
		},
	}
	assert.Error(t, sharedToken.Validate())

	badPK := &TableSchema{
		Name:       "users",
		Fields:     []FieldSchema{{Name: "a", Type: TypeText}},
		PrimaryKey: &PrimaryKey{Name: "missing"},
	}
	assert.Error(t, badPK.Validate())

	badIndex := &TableSchema{
		Name:    "users",
		Fields:  []FieldSchema{{Name: "a", Type: TypeText}},
		Indexes: []IndexSchema{{Fields: []string{"missing"}}},
	}
	assert.Error(t, badIndex.Validate())
}

func TestHashStability(t *testing.T) {
	s := &TableSchema{
		Name:   "users",
		Fields: []FieldSchema{{Name: "username", Type: TypeText}},
	}
	h1, err := s.Hash()
	require.NoError(t, err)
	h2, err := s.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	changed := &TableSchema{
		Name:   "users",
		Fields: []FieldSchema{{Name: "username", Type: TypeInteger}},
	}
	h3, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestIndexIdentity(t *testing.T) {
	idx := IndexSchema{Fields: []string{"last_name", "first_name"}}
	assert.Equal(t, "last_name,first_name", idx.Signature())
	assert.Equal(t, "people_last_name_first_name_idx", idx.ResolvedName("people"))

	named := IndexSchema{Name: "idx_people_names", Fields: []string{"last_name"}}
	assert.Equal(t, "idx_people_names", named.ResolvedName("people"))
}

func TestSerializeRoundTrip(t *testing.T) {
	s := &TableSchema{
		Name: "users",
		ID:   "tbl_users",
		Fields: []FieldSchema{
			{Name: "id", Type: TypeInteger},
			{Name: "email", Type: TypeText, Nullable: true, Default: "none"},
		},
		ForeignKeys: []ForeignKeySchema{
			{Field: "email", RefTable: "accounts", RefField: "email", OnDelete: Cascade},
		},
		PrimaryKey: &PrimaryKey{Name: "id", AutoIncrement: true},
	}
	data, err := s.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, s.Name, got.Name)
	assert.Equal(t, s.ID, got.ID)
	assert.Len(t, got.Fields, 2)
	assert.Equal(t, Cascade, got.ForeignKeys[0].OnDelete)
	assert.True(t, got.PrimaryKey.AutoIncrement)
}

func TestValidatorRegistry(t *testing.T) {
	reg := NewValidatorRegistry()
	require.NoError(t, reg.RegisterPattern("email", `^[^@]+@[^@]+$`))

	f := &FieldSchema{Name: "email", Type: TypeText, Pattern: "email"}
	assert.NoError(t, reg.ValidateField(f, "user@example.com"))
	assert.Error(t, reg.ValidateField(f, "not-an-email"))
	assert.Error(t, reg.ValidateField(f, 42))

	unregistered := &FieldSchema{Name: "code", Type: TypeText, Pattern: "missing"}
	assert.Error(t, reg.ValidateField(unregistered, "x"))

	noPattern := &FieldSchema{Name: "free", Type: TypeText}
	assert.NoError(t, reg.ValidateField(noPattern, "anything"))

	assert.Error(t, reg.RegisterPattern("broken", `[`))
}
