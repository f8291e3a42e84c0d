// Package schemadsl parses the textual table-definition format used by the
// CLI into schema value objects.
//
// Example:
//
//	table users identity "tbl_users" {
//	    id integer pk auto
//	    username text identity "fld_username" unique
//	    email text nullable default "none"
//	    index (username) unique
//	    fk email references accounts (email) on_delete cascade
//	}
package schemadsl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/schemakit/schemakit/schema"
)

// fileNode is the raw parse tree; it is converted to schema values after
// parsing.
type fileNode struct {
	Tables []*tableNode `parser:"@@*"`
}

type tableNode struct {
	Name   string      `parser:"'table' @Ident"`
	ID     *string     `parser:"('identity' @String)?"`
	Shared bool        `parser:"@'shared'?"`
	Items  []*itemNode `parser:"'{' @@* '}'"`
}

type itemNode struct {
	Index *indexNode `parser:"@@"`
	FK    *fkNode    `parser:"| @@"`
	Field *fieldNode `parser:"| @@"`
}

type indexNode struct {
	Name   *string  `parser:"'index' @String?"`
	Fields []string `parser:"'(' @Ident (',' @Ident)* ')'"`
	Unique bool     `parser:"@'unique'?"`
}

type fkNode struct {
	Field    string  `parser:"'fk' @Ident"`
	RefTable string  `parser:"'references' @Ident"`
	RefField string  `parser:"'(' @Ident ')'"`
	OnDelete *string `parser:"('on_delete' @Ident)?"`
	OnUpdate *string `parser:"('on_update' @Ident)?"`
}

type fieldNode struct {
	Name  string      `parser:"@Ident"`
	Type  string      `parser:"@Ident"`
	Attrs []*attrNode `parser:"@@*"`
}

type attrNode struct {
	PK       bool       `parser:"@'pk'"`
	Auto     bool       `parser:"| @'auto'"`
	Nullable bool       `parser:"| @'nullable'"`
	Unique   bool       `parser:"| @'unique'"`
	Identity *string    `parser:"| 'identity' @String"`
	Pattern  *string    `parser:"| 'pattern' @String"`
	Default  *valueNode `parser:"| 'default' @@"`
}

type valueNode struct {
	Str   *string  `parser:"@String"`
	Int   *int64   `parser:"| @Int"`
	Float *float64 `parser:"| @Float"`
	Bool  *string  `parser:"| @('true' | 'false')"`
}

var parser = participle.MustBuild[fileNode](
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

// Parse reads table definitions from r.
func Parse(filename string, r io.Reader) ([]*schema.TableSchema, error) {
	raw, err := parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	tables := make([]*schema.TableSchema, 0, len(raw.Tables))
	for _, tn := range raw.Tables {
		t, err := convertTable(tn)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ParseString parses table definitions from a string.
func ParseString(filename, input string) ([]*schema.TableSchema, error) {
	return Parse(filename, strings.NewReader(input))
}

// ParseFile parses table definitions from a file on disk.
func ParseFile(path string) ([]*schema.TableSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

func convertTable(tn *tableNode) (*schema.TableSchema, error) {
	t := &schema.TableSchema{
		Name:   tn.Name,
		Shared: tn.Shared,
	}
	if tn.ID != nil {
		t.ID = *tn.ID
	}
	for _, item := range tn.Items {
		switch {
		case item.Field != nil:
			f, pk, err := convertField(tn.Name, item.Field)
			if err != nil {
				return nil, err
			}
			t.Fields = append(t.Fields, *f)
			if pk != nil {
				if t.PrimaryKey != nil {
					return nil, fmt.Errorf("table %s: more than one primary key", tn.Name)
				}
				t.PrimaryKey = pk
			}
		case item.Index != nil:
			idx := schema.IndexSchema{
				Fields: item.Index.Fields,
				Unique: item.Index.Unique,
			}
			if item.Index.Name != nil {
				idx.Name = *item.Index.Name
			}
			t.Indexes = append(t.Indexes, idx)
		case item.FK != nil:
			fk, err := convertForeignKey(tn.Name, item.FK)
			if err != nil {
				return nil, err
			}
			t.ForeignKeys = append(t.ForeignKeys, *fk)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func convertField(table string, fn *fieldNode) (*schema.FieldSchema, *schema.PrimaryKey, error) {
	ft, err := fieldType(fn.Type)
	if err != nil {
		return nil, nil, fmt.Errorf("table %s, field %s: %w", table, fn.Name, err)
	}
	f := &schema.FieldSchema{Name: fn.Name, Type: ft}
	var pk *schema.PrimaryKey
	for _, a := range fn.Attrs {
		switch {
		case a.PK:
			if pk == nil {
				pk = &schema.PrimaryKey{Name: fn.Name}
			}
		case a.Auto:
			if pk == nil {
				pk = &schema.PrimaryKey{Name: fn.Name}
			}
			pk.AutoIncrement = true
		case a.Nullable:
			f.Nullable = true
		case a.Unique:
			f.Unique = true
		case a.Identity != nil:
			f.ID = *a.Identity
		case a.Pattern != nil:
			f.Pattern = *a.Pattern
		case a.Default != nil:
			f.Default = convertValue(a.Default)
		}
	}
	return f, pk, nil
}

func convertForeignKey(table string, fn *fkNode) (*schema.ForeignKeySchema, error) {
	fk := &schema.ForeignKeySchema{
		Field:    fn.Field,
		RefTable: fn.RefTable,
		RefField: fn.RefField,
	}
	if fn.OnDelete != nil {
		action, err := refAction(*fn.OnDelete)
		if err != nil {
			return nil, fmt.Errorf("table %s, fk %s: %w", table, fn.Field, err)
		}
		fk.OnDelete = action
	}
	if fn.OnUpdate != nil {
		action, err := refAction(*fn.OnUpdate)
		if err != nil {
			return nil, fmt.Errorf("table %s, fk %s: %w", table, fn.Field, err)
		}
		fk.OnUpdate = action
	}
	return fk, nil
}

func convertValue(v *valueNode) any {
	switch {
	case v.Str != nil:
		return *v.Str
	case v.Int != nil:
		return *v.Int
	case v.Float != nil:
		return *v.Float
	case v.Bool != nil:
		return *v.Bool == "true"
	}
	return nil
}

func fieldType(name string) (schema.FieldType, error) {
	switch name {
	case "text":
		return schema.TypeText, nil
	case "integer":
		return schema.TypeInteger, nil
	case "real":
		return schema.TypeReal, nil
	case "boolean":
		return schema.TypeBoolean, nil
	case "timestamp":
		return schema.TypeTimestamp, nil
	case "binary":
		return schema.TypeBinary, nil
	case "json":
		return schema.TypeJSON, nil
	case "vector":
		return schema.TypeVector, nil
	default:
		return "", fmt.Errorf("unknown field type %q", name)
	}
}

func refAction(name string) (schema.RefAction, error) {
	switch name {
	case "no_action":
		return schema.NoAction, nil
	case "restrict":
		return schema.Restrict, nil
	case "set_null":
		return schema.SetNull, nil
	case "set_default":
		return schema.SetDefault, nil
	case "cascade":
		return schema.Cascade, nil
	default:
		return "", fmt.Errorf("unknown referential action %q", name)
	}
}
