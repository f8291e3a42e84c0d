package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked tables and their schema versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, db, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := engine.GetSchemaVersions(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			ui.PrintInfo("no tracked tables")
			return nil
		}

		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.TableName,
				fmt.Sprintf("%d", r.Version),
				shortHash(r.SchemaHash),
				r.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		ui.PrintTable([]string{"TABLE", "VERSION", "HASH", "UPDATED"}, rows)
		return nil
	},
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
