// Package sqlgen builds the DDL and bulk-copy statements the migration
// engine applies. All identifier quoting lives here; the diffing and
// generation layers never interpolate identifiers themselves.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/schemakit/schemakit/schema"
)

// Builder assembles statements for the SQLite dialect, the store family the
// engine targets (column add and rename are supported in place, column
// drop, retype and constraint alteration are not).
type Builder struct{}

// NewBuilder creates a statement builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Quote escapes an identifier with double quotes, doubling any embedded
// quote characters.
func (b *Builder) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// ColumnType maps a field type to its storage type name.
func (b *Builder) ColumnType(t schema.FieldType) string {
	switch t {
	case schema.TypeText:
		return "TEXT"
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeReal:
		return "REAL"
	case schema.TypeBoolean:
		return "INTEGER"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	case schema.TypeBinary, schema.TypeVector:
		return "BLOB"
	case schema.TypeJSON:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// literal renders a default value as a SQL literal.
func (b *Builder) literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ColumnDef renders a full column definition for CREATE TABLE or
// ALTER TABLE ADD COLUMN.
func (b *Builder) ColumnDef(f *schema.FieldSchema) string {
	var sb strings.Builder
	sb.WriteString(b.Quote(f.Name))
	sb.WriteString(" ")
	sb.WriteString(b.ColumnType(f.Type))
	if !f.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if f.Unique {
		sb.WriteString(" UNIQUE")
	}
	if f.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(b.literal(f.Default))
	}
	return sb.String()
}

// CreateTable renders the full creation statement for a table, including
// primary key, column constraints and foreign-key clauses.
func (b *Builder) CreateTable(t *schema.TableSchema) string {
	var defs []string

	pk := t.PrimaryKey
	if pk != nil && t.Field(pk.Name) == nil {
		// Primary key declared without a matching field definition: emit it
		// as a standalone column.
		if pk.AutoIncrement {
			defs = append(defs, b.Quote(pk.Name)+" INTEGER PRIMARY KEY AUTOINCREMENT")
		} else {
			defs = append(defs, b.Quote(pk.Name)+" TEXT PRIMARY KEY")
		}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		if pk != nil && f.Name == pk.Name {
			if pk.AutoIncrement {
				defs = append(defs, b.Quote(f.Name)+" INTEGER PRIMARY KEY AUTOINCREMENT")
			} else {
				defs = append(defs, b.Quote(f.Name)+" "+b.ColumnType(f.Type)+" PRIMARY KEY")
			}
			continue
		}
		defs = append(defs, b.ColumnDef(f))
	}

	for _, fk := range t.ForeignKeys {
		clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			b.Quote(fk.Field), b.Quote(fk.RefTable), b.Quote(fk.RefField))
		if fk.OnDelete != "" {
			clause += " ON DELETE " + string(fk.OnDelete)
		}
		if fk.OnUpdate != "" {
			clause += " ON UPDATE " + string(fk.OnUpdate)
		}
		defs = append(defs, clause)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", b.Quote(t.Name), strings.Join(defs, ", "))
}

// DropTable renders a drop statement.
func (b *Builder) DropTable(name string) string {
	return fmt.Sprintf("DROP TABLE %s", b.Quote(name))
}

// RenameTable renders a table rename.
func (b *Builder) RenameTable(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", b.Quote(oldName), b.Quote(newName))
}

// AddColumn renders an in-place column addition.
func (b *Builder) AddColumn(table string, f *schema.FieldSchema) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", b.Quote(table), b.ColumnDef(f))
}

// RenameColumn renders an in-place column rename.
func (b *Builder) RenameColumn(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		b.Quote(table), b.Quote(oldName), b.Quote(newName))
}

// CreateIndex renders index creation using the index's resolved name.
func (b *Builder) CreateIndex(table string, idx *schema.IndexSchema) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	cols := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		cols[i] = b.Quote(f)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, b.Quote(idx.ResolvedName(table)), b.Quote(table), strings.Join(cols, ", "))
}

// DropIndex renders index removal.
func (b *Builder) DropIndex(name string) string {
	return fmt.Sprintf("DROP INDEX %s", b.Quote(name))
}

// CopyRows renders the bulk copy of the given columns from src to dst.
func (b *Builder) CopyRows(src, dst string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.Quote(c)
	}
	cols := strings.Join(quoted, ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		b.Quote(dst), cols, cols, b.Quote(src))
}
