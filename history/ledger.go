package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/schemakit/schemakit/plan"
	"github.com/schemakit/schemakit/store"
)

// Ledger persists one row per migration run, written up front so failed and
// interrupted runs remain discoverable.
type Ledger struct {
	store store.Executor
}

// NewLedger creates a migration-history ledger over the given store.
func NewLedger(st store.Executor) *Ledger {
	return &Ledger{store: st}
}

// InitTable creates the history table if it does not exist.
func (l *Ledger) InitTable(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + HistoryTable + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL UNIQUE,
		table_name TEXT NOT NULL,
		from_version INTEGER,
		to_version INTEGER,
		operations TEXT,
		state TEXT,
		started_at TIMESTAMP,
		completed_at TIMESTAMP,
		error_message TEXT
	)`
	if _, err := l.store.ExecuteUpdate(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Insert writes the initial row for a run.
func (l *Ledger) Insert(ctx context.Context, rec *MigrationRecord) error {
	_, err := l.store.ExecuteInsert(ctx,
		`INSERT INTO `+HistoryTable+`
		 (task_id, table_name, from_version, to_version, operations, state, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TaskID, rec.TableName, rec.FromVersion, rec.ToVersion,
		rec.Operations, rec.State, formatTime(rec.StartedAt))
	if err != nil {
		return fmt.Errorf("failed to insert history row: %w", err)
	}
	return nil
}

// MarkCompleted finalizes a run as completed.
func (l *Ledger) MarkCompleted(ctx context.Context, taskID string, completedAt time.Time) error {
	_, err := l.store.ExecuteUpdate(ctx,
		`UPDATE `+HistoryTable+` SET state = ?, completed_at = ? WHERE task_id = ?`,
		StateCompleted, formatTime(completedAt), taskID)
	if err != nil {
		return fmt.Errorf("failed to mark migration completed: %w", err)
	}
	return nil
}

// MarkFailed finalizes a run as failed, retaining the underlying error
// text.
func (l *Ledger) MarkFailed(ctx context.Context, taskID string, completedAt time.Time, errMsg string) error {
	_, err := l.store.ExecuteUpdate(ctx,
		`UPDATE `+HistoryTable+` SET state = ?, completed_at = ?, error_message = ? WHERE task_id = ?`,
		StateFailed, formatTime(completedAt), errMsg, taskID)
	if err != nil {
		return fmt.Errorf("failed to mark migration failed: %w", err)
	}
	return nil
}

// ForTable returns the migration records for one table, oldest first.
func (l *Ledger) ForTable(ctx context.Context, tableName string) ([]MigrationRecord, error) {
	rows, err := l.store.ExecuteQuery(ctx,
		`SELECT id, task_id, table_name, from_version, to_version, operations,
		        state, started_at, completed_at, error_message
		 FROM `+HistoryTable+` WHERE table_name = ? ORDER BY started_at ASC, id ASC`,
		tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	records := make([]MigrationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, MigrationRecord{
			ID:           asInt(row.Value("id")),
			TaskID:       asString(row.Value("task_id")),
			TableName:    asString(row.Value("table_name")),
			FromVersion:  asInt(row.Value("from_version")),
			ToVersion:    asInt(row.Value("to_version")),
			Operations:   asString(row.Value("operations")),
			State:        asString(row.Value("state")),
			StartedAt:    asTime(row.Value("started_at")),
			CompletedAt:  asTime(row.Value("completed_at")),
			ErrorMessage: asString(row.Value("error_message")),
		})
	}
	return records, nil
}

// SerializeOperations renders an operation list for the operations column.
func SerializeOperations(ops []plan.MigrationOperation) (string, error) {
	data, err := json.Marshal(ops)
	if err != nil {
		return "", fmt.Errorf("failed to serialize operations: %w", err)
	}
	return string(data), nil
}

// DeserializeOperations parses a serialized operation list.
func DeserializeOperations(jsonStr string) ([]plan.MigrationOperation, error) {
	if jsonStr == "" {
		return nil, nil
	}
	var ops []plan.MigrationOperation
	if err := json.Unmarshal([]byte(jsonStr), &ops); err != nil {
		return nil, fmt.Errorf("failed to deserialize operations: %w", err)
	}
	return ops, nil
}
