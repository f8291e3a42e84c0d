// Package schema defines the value objects describing table structure:
// tables, fields, indexes, foreign keys and primary keys. Schemas are plain
// serializable data; validation behavior is attached by name through the
// validator registry, never embedded in the schema itself.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the primitive type of a field.
type FieldType string

const (
	TypeText      FieldType = "text"
	TypeInteger   FieldType = "integer"
	TypeReal      FieldType = "real"
	TypeBoolean   FieldType = "boolean"
	TypeTimestamp FieldType = "timestamp"
	TypeBinary    FieldType = "binary"
	TypeJSON      FieldType = "json"
	TypeVector    FieldType = "vector"
)

// RefAction is a referential action on a foreign key.
type RefAction string

const (
	NoAction   RefAction = "NO ACTION"
	Restrict   RefAction = "RESTRICT"
	SetNull    RefAction = "SET NULL"
	SetDefault RefAction = "SET DEFAULT"
	Cascade    RefAction = "CASCADE"
)

// FieldSchema describes a single column. The identity token, when set, is a
// stable caller-assigned id that survives renames; without one a rename is
// indistinguishable from a remove+add.
type FieldSchema struct {
	Name      string    `json:"name"`
	ID        string    `json:"id,omitempty"`
	Type      FieldType `json:"type"`
	Nullable  bool      `json:"nullable"`
	Unique    bool      `json:"unique"`
	Default   any       `json:"default,omitempty"`
	MinLength *int      `json:"minLength,omitempty"`
	MaxLength *int      `json:"maxLength,omitempty"`
	Pattern   string    `json:"pattern,omitempty"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
}

// IndexSchema describes an index over an ordered list of field names.
// Two indexes are considered the same when they cover the same ordered
// fields; the name does not participate in equality.
type IndexSchema struct {
	Name   string   `json:"name,omitempty"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique"`
}

// Signature returns the field-list projection used for diff equality.
func (i IndexSchema) Signature() string {
	return strings.Join(i.Fields, ",")
}

// ResolvedName returns the explicit index name, or the deterministic
// <table>_<field1>_<field2>_idx form when none was supplied.
func (i IndexSchema) ResolvedName(table string) string {
	if i.Name != "" {
		return i.Name
	}
	return fmt.Sprintf("%s_%s_idx", table, strings.Join(i.Fields, "_"))
}

// ForeignKeySchema describes a foreign-key constraint.
type ForeignKeySchema struct {
	Field    string    `json:"field"`
	RefTable string    `json:"refTable"`
	RefField string    `json:"refField"`
	OnDelete RefAction `json:"onDelete,omitempty"`
	OnUpdate RefAction `json:"onUpdate,omitempty"`
}

// Signature identifies a foreign key for diff purposes.
func (f ForeignKeySchema) Signature() string {
	return fmt.Sprintf("%s->%s.%s", f.Field, f.RefTable, f.RefField)
}

// PrimaryKey describes the primary-key column and its generation strategy.
// AutoIncrement keys are store-generated integers; otherwise the value is
// externally supplied (for example a UUID).
type PrimaryKey struct {
	Name          string `json:"name"`
	AutoIncrement bool   `json:"autoIncrement"`
}

// TableSchema is the full definition of one table. The identity token, when
// set, enables table rename detection across schema snapshots. Shared marks
// the table as common to all tenancy spaces.
type TableSchema struct {
	Name        string             `json:"name"`
	ID          string             `json:"id,omitempty"`
	Fields      []FieldSchema      `json:"fields"`
	Indexes     []IndexSchema      `json:"indexes,omitempty"`
	ForeignKeys []ForeignKeySchema `json:"foreignKeys,omitempty"`
	PrimaryKey  *PrimaryKey        `json:"primaryKey,omitempty"`
	Shared      bool               `json:"shared,omitempty"`
}

// Field returns the field with the given name, or nil.
func (t *TableSchema) Field(name string) *FieldSchema {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// FieldNames returns the field names in declaration order.
func (t *TableSchema) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks the schema invariants: field names unique within the
// table, identity tokens unique within the table, at most one primary key
// column and it must reference an existing field.
func (t *TableSchema) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	names := make(map[string]bool, len(t.Fields))
	tokens := make(map[string]string, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("table %s: field name is required", t.Name)
		}
		if names[f.Name] {
			return fmt.Errorf("table %s: duplicate field name %q", t.Name, f.Name)
		}
		names[f.Name] = true
		if f.ID != "" {
			if other, ok := tokens[f.ID]; ok {
				return fmt.Errorf("table %s: fields %q and %q share identity token %q", t.Name, other, f.Name, f.ID)
			}
			tokens[f.ID] = f.Name
		}
	}
	if t.PrimaryKey != nil && !names[t.PrimaryKey.Name] {
		return fmt.Errorf("table %s: primary key references unknown field %q", t.Name, t.PrimaryKey.Name)
	}
	for _, idx := range t.Indexes {
		if len(idx.Fields) == 0 {
			return fmt.Errorf("table %s: index with no fields", t.Name)
		}
		for _, fn := range idx.Fields {
			if !names[fn] {
				return fmt.Errorf("table %s: index %q references unknown field %q", t.Name, idx.ResolvedName(t.Name), fn)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		if !names[fk.Field] {
			return fmt.Errorf("table %s: foreign key references unknown local field %q", t.Name, fk.Field)
		}
	}
	return nil
}
