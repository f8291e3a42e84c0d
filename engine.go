// Package schemakit detects structural differences between table
// definitions, translates them into ordered storage operations, executes
// them with progress reporting and durable history, and performs the
// structural changes the store cannot apply in place through a shadow-table
// rewrite.
package schemakit

import (
	"context"
	"fmt"
	"strings"

	"github.com/schemakit/schemakit/diff"
	"github.com/schemakit/schemakit/executor"
	"github.com/schemakit/schemakit/history"
	"github.com/schemakit/schemakit/plan"
	"github.com/schemakit/schemakit/rewrite"
	"github.com/schemakit/schemakit/schema"
	"github.com/schemakit/schemakit/store"
)

// Engine is the migration engine facade. It performs no internal locking:
// callers serialize concurrent migrations of the same table; migrations of
// different tables are independent.
type Engine struct {
	store    store.Executor
	catalog  *plan.Catalog
	detector *diff.Detector
	genr     *plan.Generator
	exec     *executor.Executor
	rewriter *rewrite.Rewriter
	versions *history.VersionLedger
	ledger   *history.Ledger
}

// NewEngine creates an engine over the given store. Call Init before first
// use to create the engine-owned metadata tables.
func NewEngine(st store.Executor) *Engine {
	catalog := plan.NewCatalog()
	versions := history.NewVersionLedger(st)
	ledger := history.NewLedger(st)
	return &Engine{
		store:    st,
		catalog:  catalog,
		detector: diff.NewDetector(),
		genr:     plan.NewGenerator(catalog),
		exec:     executor.New(st, ledger, versions),
		rewriter: rewrite.New(st, versions),
		versions: versions,
		ledger:   ledger,
	}
}

// Init creates the version and history tables if they do not exist.
func (e *Engine) Init(ctx context.Context) error {
	if err := e.versions.InitTable(ctx); err != nil {
		return err
	}
	return e.ledger.InitTable(ctx)
}

// RegisterSchema adds a table definition to the catalog used for
// createTable operation generation.
func (e *Engine) RegisterSchema(s *schema.TableSchema) error {
	return e.catalog.Register(s)
}

// RegisterSchemas registers multiple table definitions.
func (e *Engine) RegisterSchemas(schemas []*schema.TableSchema) error {
	return e.catalog.RegisterAll(schemas)
}

// Catalog exposes the engine's schema catalog.
func (e *Engine) Catalog() *plan.Catalog {
	return e.catalog
}

// DetectSchemaChanges compares two table definitions.
func (e *Engine) DetectSchemaChanges(old, new *schema.TableSchema) []diff.SchemaChange {
	return e.detector.Detect(old, new)
}

// GenerateMigration maps schema changes to ordered migration operations.
func (e *Engine) GenerateMigration(changes []diff.SchemaChange) []plan.MigrationOperation {
	return e.genr.Generate(changes)
}

// ExecuteMigration runs the operations in order, then records the new
// schema version on success. A renameTable operation moves the version row
// first so the version continues under the new name; a run whose net effect
// is dropping the table deletes its version row instead of bumping it. An
// empty taskID gets a time-derived one.
func (e *Engine) ExecuteMigration(ctx context.Context, tableName string, ops []plan.MigrationOperation, taskID string) error {
	if err := e.exec.Execute(ctx, tableName, ops, taskID); err != nil {
		return err
	}
	dropped := false
	for _, op := range ops {
		switch op.Type {
		case plan.OpRenameTable:
			if err := e.versions.Rename(ctx, op.OldName, op.NewName); err != nil {
				return err
			}
			tableName = op.NewName
		case plan.OpDropTable:
			if op.TableName == tableName {
				dropped = true
			}
		case plan.OpCreateTable:
			if op.TableName == tableName {
				dropped = false
			}
		}
	}
	if dropped {
		return e.versions.Delete(ctx, tableName)
	}
	if s := e.catalog.Get(tableName); s != nil {
		return e.versions.Record(ctx, s)
	}
	return e.versions.RecordNamed(ctx, tableName, "")
}

// MigrateWithZeroDowntime routes a structural change through the
// shadow-table rewriter.
func (e *Engine) MigrateWithZeroDowntime(ctx context.Context, old, new *schema.TableSchema) error {
	return e.rewriter.Rewrite(ctx, old, new)
}

// Migrate detects the changes between old and new and applies them,
// choosing the rewriter when any generated operation requires table
// recreation and the direct executor otherwise. No-op when the schemas are
// structurally identical.
func (e *Engine) Migrate(ctx context.Context, old, new *schema.TableSchema) error {
	changes := e.detector.Detect(old, new)
	if len(changes) == 0 {
		return nil
	}
	ops := e.genr.Generate(changes)
	if plan.RequiresRewrite(ops) {
		return e.rewriter.Rewrite(ctx, old, new)
	}
	return e.ExecuteMigration(ctx, new.Name, ops, "")
}

// HasSchemaChanged compares the schema's content hash with the stored one.
// A false result is a cheap short-circuit only; callers asserting a real
// change should diff explicitly.
func (e *Engine) HasSchemaChanged(ctx context.Context, s *schema.TableSchema) (bool, error) {
	stored, err := e.versions.CurrentHash(ctx, s.Name)
	if err != nil {
		return false, err
	}
	if stored == "" {
		return true, nil
	}
	hash, err := s.Hash()
	if err != nil {
		return false, err
	}
	return hash != stored, nil
}

// GetSchemaVersion returns the table's version, 0 when never created.
func (e *Engine) GetSchemaVersion(ctx context.Context, tableName string) (int64, error) {
	return e.versions.CurrentVersion(ctx, tableName)
}

// RecordSchemaVersion inserts or bumps the version ledger row for a schema.
func (e *Engine) RecordSchemaVersion(ctx context.Context, s *schema.TableSchema) error {
	return e.versions.Record(ctx, s)
}

// GetSchemaVersions returns every version ledger record.
func (e *Engine) GetSchemaVersions(ctx context.Context) ([]history.VersionRecord, error) {
	return e.versions.All(ctx)
}

// DetectSchemaSetChanges diffs two whole schema sets, including table
// additions and removals.
func (e *Engine) DetectSchemaSetChanges(old, new []*schema.TableSchema) []diff.SchemaChange {
	return e.detector.DetectSet(old, new)
}

// GetMigrationHistory returns the durable migration records for a table.
func (e *Engine) GetMigrationHistory(ctx context.Context, tableName string) ([]history.MigrationRecord, error) {
	return e.ledger.ForTable(ctx, tableName)
}

// AddProgressCallback registers a progress subscriber and returns its
// handle.
func (e *Engine) AddProgressCallback(fn executor.ProgressFunc) int {
	return e.exec.AddProgressCallback(fn)
}

// RemoveProgressCallback deregisters a progress subscriber.
func (e *Engine) RemoveProgressCallback(id int) {
	e.exec.RemoveProgressCallback(id)
}

// TableExists reports whether a table exists in the store's catalog.
func (e *Engine) TableExists(ctx context.Context, tableName string) (bool, error) {
	rows, err := e.store.ExecuteQuery(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return len(rows) > 0, nil
}

// GetAllTableNames lists user tables, excluding the engine-owned metadata
// tables and the store's own catalog tables.
func (e *Engine) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := e.store.ExecuteQuery(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var names []string
	for _, row := range rows {
		name, _ := row.Value("name").(string)
		if name == "" || strings.HasPrefix(name, history.MetaPrefix) || strings.HasPrefix(name, "sqlite_") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
