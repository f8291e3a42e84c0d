package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLStore implements Executor over a database/sql connection pool. Any
// registered driver works; the engine's statement vocabulary targets the
// SQLite dialect.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open connection pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// DB exposes the underlying pool.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// ExecuteQuery runs a query and scans every row into an ordered mapping.
func (s *SQLStore) ExecuteQuery(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, NewRow(columns, values))
	}
	return result, rows.Err()
}

// ExecuteInsert runs an insert and returns the generated identifier.
func (s *SQLStore) ExecuteInsert(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated id: %w", err)
	}
	return id, nil
}

// ExecuteUpdate runs an update or DDL statement.
func (s *SQLStore) ExecuteUpdate(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("statement failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Some statements (DDL) report no affected-row count.
		return 0, nil
	}
	return n, nil
}

// ExecuteDelete runs a delete statement.
func (s *SQLStore) ExecuteDelete(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
