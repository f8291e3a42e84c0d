package plan

import (
	"fmt"

	"github.com/schemakit/schemakit/diff"
	"github.com/schemakit/schemakit/sqlgen"
)

// Generator maps schema changes to migration operations. Operation order
// mirrors change order; no reordering or merging is performed here.
type Generator struct {
	catalog *Catalog
	sql     *sqlgen.Builder
}

// NewGenerator creates a generator resolving table definitions through the
// given catalog.
func NewGenerator(catalog *Catalog) *Generator {
	return &Generator{catalog: catalog, sql: sqlgen.NewBuilder()}
}

// Generate maps each change to its operation. Changes the store cannot
// apply in place (field removal, retype, constraint change, foreign-key
// change) become customSql placeholders marked for table recreation; a
// tableAdded change for an unregistered table is a silent no-op.
func (g *Generator) Generate(changes []diff.SchemaChange) []MigrationOperation {
	var ops []MigrationOperation

	for _, ch := range changes {
		switch ch.Type {
		case diff.TableAdded:
			s := g.catalog.Get(ch.TableName)
			if s == nil {
				continue
			}
			ops = append(ops, MigrationOperation{
				Type:      OpCreateTable,
				TableName: ch.TableName,
				SQL:       g.sql.CreateTable(s),
			})

		case diff.TableRemoved:
			ops = append(ops, MigrationOperation{
				Type:      OpDropTable,
				TableName: ch.TableName,
				SQL:       g.sql.DropTable(ch.TableName),
			})

		case diff.TableRenamed:
			ops = append(ops, MigrationOperation{
				Type:      OpRenameTable,
				TableName: ch.TableName,
				OldName:   ch.OldTableName,
				NewName:   ch.TableName,
				SQL:       g.sql.RenameTable(ch.OldTableName, ch.TableName),
			})

		case diff.FieldAdded:
			ops = append(ops, MigrationOperation{
				Type:       OpAddColumn,
				TableName:  ch.TableName,
				ColumnName: ch.FieldName,
				SQL:        g.sql.AddColumn(ch.TableName, ch.Field),
			})

		case diff.FieldRenamed:
			ops = append(ops, MigrationOperation{
				Type:       OpRenameColumn,
				TableName:  ch.TableName,
				ColumnName: ch.FieldName,
				OldName:    ch.OldFieldName,
				NewName:    ch.FieldName,
				SQL:        g.sql.RenameColumn(ch.TableName, ch.OldFieldName, ch.FieldName),
			})

		case diff.FieldRemoved, diff.FieldTypeChanged, diff.FieldConstraintChanged,
			diff.ForeignKeyAdded, diff.ForeignKeyRemoved:
			ops = append(ops, MigrationOperation{
				Type:       OpCustomSQL,
				TableName:  ch.TableName,
				ColumnName: ch.FieldName,
				Note:       RequiresRecreation,
				SQL:        fmt.Sprintf("-- %s on %s.%s: %s", ch.Type, ch.TableName, ch.FieldName, RequiresRecreation),
			})

		case diff.IndexAdded:
			ops = append(ops, MigrationOperation{
				Type:      OpCreateIndex,
				TableName: ch.TableName,
				IndexName: ch.Index.ResolvedName(ch.TableName),
				SQL:       g.sql.CreateIndex(ch.TableName, ch.Index),
			})

		case diff.IndexRemoved:
			name := ch.Index.ResolvedName(ch.TableName)
			ops = append(ops, MigrationOperation{
				Type:      OpDropIndex,
				TableName: ch.TableName,
				IndexName: name,
				SQL:       g.sql.DropIndex(name),
			})
		}
	}

	return ops
}

// RequiresRewrite reports whether any operation in the list must be routed
// through the zero-downtime rewriter.
func RequiresRewrite(ops []MigrationOperation) bool {
	for _, op := range ops {
		if op.RequiresRewrite() {
			return true
		}
	}
	return false
}
