// Package rewrite performs structural migrations the store cannot apply in
// place, by building a shadow table under the new schema and swapping it
// into place without taking the table offline.
package rewrite

import (
	"context"
	"fmt"

	"github.com/schemakit/schemakit/history"
	"github.com/schemakit/schemakit/schema"
	"github.com/schemakit/schemakit/sqlgen"
	"github.com/schemakit/schemakit/store"
)

// Rewriter executes the shadow-table strategy: create <newName>_temp with
// the full new schema, copy the rows for the columns both schemas share,
// drop the old table, rename the shadow into place and bump the version
// ledger.
type Rewriter struct {
	store    store.Executor
	sql      *sqlgen.Builder
	versions *history.VersionLedger
}

// New creates a rewriter.
func New(st store.Executor, versions *history.VersionLedger) *Rewriter {
	return &Rewriter{store: st, sql: sqlgen.NewBuilder(), versions: versions}
}

// Rewrite replaces the old table with one built from the new schema.
//
// Columns present only in the old schema are dropped with their data; that
// loss is the documented cost of removal. Columns present only in the new
// schema must be nullable or carry a default — the rewrite is rejected up
// front otherwise, since existing rows could not satisfy NOT NULL.
//
// The create/copy/drop/rename sequence is not wrapped in a transaction; a
// failure between the drop and the rename leaves only the _temp table. The
// history ledger and the _temp suffix make that state discoverable.
func (r *Rewriter) Rewrite(ctx context.Context, old, new *schema.TableSchema) error {
	if err := new.Validate(); err != nil {
		return fmt.Errorf("invalid target schema: %w", err)
	}
	if err := r.checkNewColumns(old, new); err != nil {
		return err
	}

	tempName := new.Name + "_temp"
	shadow := *new
	shadow.Name = tempName

	if _, err := r.store.ExecuteUpdate(ctx, r.sql.CreateTable(&shadow)); err != nil {
		return fmt.Errorf("failed to create shadow table %s: %w", tempName, err)
	}

	shared := sharedColumns(old, new)
	if len(shared) > 0 {
		if _, err := r.store.ExecuteUpdate(ctx, r.sql.CopyRows(old.Name, tempName, shared)); err != nil {
			return fmt.Errorf("failed to copy rows into shadow table: %w", err)
		}
	}

	if _, err := r.store.ExecuteUpdate(ctx, r.sql.DropTable(old.Name)); err != nil {
		return fmt.Errorf("failed to drop old table %s: %w", old.Name, err)
	}

	if _, err := r.store.ExecuteUpdate(ctx, r.sql.RenameTable(tempName, new.Name)); err != nil {
		return fmt.Errorf("failed to rename shadow table into place: %w", err)
	}

	// Secondary indexes are created after the rename so their names match
	// the final table name.
	for i := range new.Indexes {
		idx := &new.Indexes[i]
		if _, err := r.store.ExecuteUpdate(ctx, r.sql.CreateIndex(new.Name, idx)); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.ResolvedName(new.Name), err)
		}
	}

	// A rewrite that also renames the table moves the version row first so
	// the version continues under the new name.
	if old.Name != new.Name {
		if err := r.versions.Rename(ctx, old.Name, new.Name); err != nil {
			return fmt.Errorf("failed to move version row: %w", err)
		}
	}
	if err := r.versions.Record(ctx, new); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// checkNewColumns rejects new-only NOT NULL columns without a default.
func (r *Rewriter) checkNewColumns(old, new *schema.TableSchema) error {
	for i := range new.Fields {
		f := &new.Fields[i]
		if old.Field(f.Name) != nil {
			continue
		}
		if new.PrimaryKey != nil && f.Name == new.PrimaryKey.Name {
			continue
		}
		if !f.Nullable && f.Default == nil {
			return fmt.Errorf("field %s.%s is NOT NULL with no default; existing rows cannot be copied", new.Name, f.Name)
		}
	}
	return nil
}

// sharedColumns returns the names both schemas define, in new-schema order.
// Matching is by name: identity tokens do not participate in the copy.
func sharedColumns(old, new *schema.TableSchema) []string {
	var shared []string
	for _, f := range new.Fields {
		if old.Field(f.Name) != nil {
			shared = append(shared, f.Name)
		}
	}
	return shared
}
