package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/schemakit/schemakit"
	"github.com/schemakit/schemakit/schema"
	"github.com/schemakit/schemakit/schemadsl"
	"github.com/schemakit/schemakit/store"
)

// openEngine opens the database and returns an initialized engine. The
// caller closes the returned handle.
func openEngine(ctx context.Context) (*schemakit.Engine, *sql.DB, error) {
	if dbPath == "" {
		return nil, nil, fmt.Errorf("no database given; pass --db or set SCHEMAKIT_DATABASE_PATH")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	engine := schemakit.NewEngine(store.NewSQLStore(db))
	if err := engine.Init(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return engine, db, nil
}

// loadTables parses a schema definition file.
func loadTables(path string) ([]*schema.TableSchema, error) {
	return schemadsl.ParseFile(path)
}
