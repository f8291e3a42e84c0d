// Package plan turns schema-change records into ordered migration
// operations. The generator is a pure function of its inputs: full table
// definitions are resolved through an explicit catalog rather than hidden
// process-global state.
package plan

// OperationType tags a migration operation.
type OperationType string

const (
	OpCreateTable  OperationType = "createTable"
	OpDropTable    OperationType = "dropTable"
	OpRenameTable  OperationType = "renameTable"
	OpAddColumn    OperationType = "addColumn"
	OpRenameColumn OperationType = "renameColumn"
	OpCreateIndex  OperationType = "createIndex"
	OpDropIndex    OperationType = "dropIndex"
	OpCustomSQL    OperationType = "customSql"
)

// RequiresRecreation annotates customSql placeholders for changes the store
// cannot apply in place; operations carrying it must be routed through the
// zero-downtime rewriter, not the direct executor.
const RequiresRecreation = "requires table recreation"

// MigrationOperation is one directly applicable storage statement. Order of
// application is significant and preserved end to end.
type MigrationOperation struct {
	Type       OperationType `json:"type"`
	TableName  string        `json:"tableName"`
	SQL        string        `json:"sql,omitempty"`
	OldName    string        `json:"oldName,omitempty"`
	NewName    string        `json:"newName,omitempty"`
	ColumnName string        `json:"columnName,omitempty"`
	IndexName  string        `json:"indexName,omitempty"`
	Note       string        `json:"note,omitempty"`
}

// RequiresRewrite reports whether the operation is a placeholder for a
// change that needs the shadow-table rewriter.
func (op MigrationOperation) RequiresRewrite() bool {
	return op.Type == OpCustomSQL && op.Note == RequiresRecreation
}
