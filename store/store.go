// Package store defines the minimal storage executor the engine runs
// against, plus a database/sql implementation.
package store

import "context"

// Row is an ordered mapping of column name to value for one result row.
type Row struct {
	Columns []string
	values  map[string]any
}

// NewRow builds a row from parallel column/value slices.
func NewRow(columns []string, values []any) Row {
	m := make(map[string]any, len(columns))
	for i, c := range columns {
		m[c] = values[i]
	}
	return Row{Columns: columns, values: m}
}

// Get returns the value for a column name.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value for a column name, or nil.
func (r Row) Value(column string) any {
	return r.values[column]
}

// Executor is the four-operation storage abstraction the engine consumes.
// Statements are strings with positional parameters; the engine requires
// the store to support table creation, constraints, foreign keys, index
// creation, table rename and column add/rename, but not in-place column
// drop, retype or constraint alteration.
type Executor interface {
	// ExecuteQuery runs a query and returns its rows.
	ExecuteQuery(ctx context.Context, query string, args ...any) ([]Row, error)
	// ExecuteInsert runs an insert and returns the generated row id.
	ExecuteInsert(ctx context.Context, stmt string, args ...any) (int64, error)
	// ExecuteUpdate runs a statement and returns the affected-row count.
	// DDL statements go through here.
	ExecuteUpdate(ctx context.Context, stmt string, args ...any) (int64, error)
	// ExecuteDelete runs a delete and returns the affected-row count.
	ExecuteDelete(ctx context.Context, stmt string, args ...any) (int64, error)
}
