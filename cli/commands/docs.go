package commands

import (
	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/ui"
)

const usageDoc = `# schemakit

Schema diffing and migration for embedded SQL stores.

## Schema files

Tables are defined in a plain-text format:

    table users identity "tbl_users" {
        id integer pk auto
        username text identity "fld_username" unique
        email text nullable default "none"
        index (username) unique
    }

Identity tokens (the quoted strings after ` + "`identity`" + `) are optional but
required for rename detection: a field or table without one diffs as a
remove plus an add.

## Workflow

1. ` + "`schemakit diff old.skt new.skt`" + ` — inspect the detected changes.
2. ` + "`schemakit plan old.skt new.skt --out migration.sql`" + ` — write the
   generated statements without applying them.
3. ` + "`schemakit apply old.skt new.skt --db app.db`" + ` — apply the changes.
   Field removals, type changes, constraint changes and foreign-key changes
   cannot be applied in place; apply routes those tables through a shadow
   table copy (create, copy shared columns, drop, rename).
4. ` + "`schemakit status --db app.db`" + ` and ` + "`schemakit history <table> --db app.db`" + `
   — inspect the version ledger and the durable migration history.

Dropped columns lose their data. New columns must be nullable or carry a
default, otherwise the rewrite is rejected before touching the table.
`

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show usage documentation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.PrintMarkdown(usageDoc)
	},
}
