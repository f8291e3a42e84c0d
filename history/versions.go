package history

import (
	"context"
	"fmt"
	"time"

	"github.com/schemakit/schemakit/schema"
	"github.com/schemakit/schemakit/store"
)

// VersionLedger tracks a monotonically increasing version number and a
// content hash per table. Hash equality is only ever used to skip work;
// callers diff explicitly when asserting a real change.
type VersionLedger struct {
	store store.Executor
}

// NewVersionLedger creates a ledger over the given store.
func NewVersionLedger(st store.Executor) *VersionLedger {
	return &VersionLedger{store: st}
}

// InitTable creates the version table if it does not exist.
func (l *VersionLedger) InitTable(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + VersionTable + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_name TEXT NOT NULL UNIQUE,
		version INTEGER NOT NULL,
		schema_hash TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`
	if _, err := l.store.ExecuteUpdate(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create version table: %w", err)
	}
	return nil
}

// CurrentVersion returns the table's version, or 0 when untracked.
func (l *VersionLedger) CurrentVersion(ctx context.Context, tableName string) (int64, error) {
	rows, err := l.store.ExecuteQuery(ctx,
		`SELECT version FROM `+VersionTable+` WHERE table_name = ?`, tableName)
	if err != nil {
		return 0, fmt.Errorf("failed to query version: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return asInt(rows[0].Value("version")), nil
}

// CurrentHash returns the stored content hash, or "" when untracked.
func (l *VersionLedger) CurrentHash(ctx context.Context, tableName string) (string, error) {
	rows, err := l.store.ExecuteQuery(ctx,
		`SELECT schema_hash FROM `+VersionTable+` WHERE table_name = ?`, tableName)
	if err != nil {
		return "", fmt.Errorf("failed to query schema hash: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return asString(rows[0].Value("schema_hash")), nil
}

// Record inserts a version-1 row on first sight of the schema's table name,
// or increments the existing row's version and replaces its content hash.
func (l *VersionLedger) Record(ctx context.Context, s *schema.TableSchema) error {
	hash, err := s.Hash()
	if err != nil {
		return err
	}
	return l.RecordNamed(ctx, s.Name, hash)
}

// RecordNamed is Record for callers that already hold the content hash.
func (l *VersionLedger) RecordNamed(ctx context.Context, tableName, hash string) error {
	current, err := l.CurrentVersion(ctx, tableName)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())
	if current == 0 {
		_, err = l.store.ExecuteInsert(ctx,
			`INSERT INTO `+VersionTable+` (table_name, version, schema_hash, created_at, updated_at)
			 VALUES (?, 1, ?, ?, ?)`,
			tableName, hash, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert version row: %w", err)
		}
		return nil
	}
	_, err = l.store.ExecuteUpdate(ctx,
		`UPDATE `+VersionTable+` SET version = version + 1, schema_hash = ?, updated_at = ?
		 WHERE table_name = ?`,
		hash, now, tableName)
	if err != nil {
		return fmt.Errorf("failed to update version row: %w", err)
	}
	return nil
}

// Rename moves a version row to a new table name, preserving version and
// hash. Used when a rename is the only structural change.
func (l *VersionLedger) Rename(ctx context.Context, oldName, newName string) error {
	_, err := l.store.ExecuteUpdate(ctx,
		`UPDATE `+VersionTable+` SET table_name = ?, updated_at = ? WHERE table_name = ?`,
		newName, formatTime(time.Now()), oldName)
	if err != nil {
		return fmt.Errorf("failed to rename version row: %w", err)
	}
	return nil
}

// Delete removes a table's version row. Used when the table itself is
// dropped.
func (l *VersionLedger) Delete(ctx context.Context, tableName string) error {
	_, err := l.store.ExecuteDelete(ctx,
		`DELETE FROM `+VersionTable+` WHERE table_name = ?`, tableName)
	if err != nil {
		return fmt.Errorf("failed to delete version row: %w", err)
	}
	return nil
}

// All returns every version record, ordered by table name.
func (l *VersionLedger) All(ctx context.Context) ([]VersionRecord, error) {
	rows, err := l.store.ExecuteQuery(ctx,
		`SELECT id, table_name, version, schema_hash, created_at, updated_at
		 FROM `+VersionTable+` ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	records := make([]VersionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, VersionRecord{
			ID:         asInt(row.Value("id")),
			TableName:  asString(row.Value("table_name")),
			Version:    asInt(row.Value("version")),
			SchemaHash: asString(row.Value("schema_hash")),
			CreatedAt:  asTime(row.Value("created_at")),
			UpdatedAt:  asTime(row.Value("updated_at")),
		})
	}
	return records, nil
}
