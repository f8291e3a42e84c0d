// Package history owns the engine's two durable metadata tables: the
// per-table version ledger and the migration-history ledger. Both live
// under the reserved _schemakit prefix and are created on first use.
package history

import (
	"time"
)

// MetaPrefix is the reserved name prefix for engine-owned tables. Callers
// listing tables must exclude it.
const MetaPrefix = "_schemakit"

// VersionTable is the durable version ledger table name.
const VersionTable = MetaPrefix + "_versions"

// HistoryTable is the durable migration-history table name.
const HistoryTable = MetaPrefix + "_history"

// Migration run states. Rows are inserted in_progress and finalized as
// completed or failed.
const (
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// VersionRecord tracks the current schema version and content hash of one
// table.
type VersionRecord struct {
	ID         int64
	TableName  string
	Version    int64
	SchemaHash string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MigrationRecord is one row of the migration-history ledger: a durable
// trace of an attempted or completed migration run.
type MigrationRecord struct {
	ID           int64
	TaskID       string
	TableName    string
	FromVersion  int64
	ToVersion    int64
	Operations   string
	State        string
	StartedAt    time.Time
	CompletedAt  time.Time
	ErrorMessage string
}

// asTime normalizes a scanned timestamp value. Drivers return either
// time.Time or the stored string form.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// asInt normalizes a scanned integer value.
func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// asString normalizes a scanned text value.
func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
