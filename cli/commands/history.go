package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/ui"
	"github.com/schemakit/schemakit/history"
)

var historyCmd = &cobra.Command{
	Use:   "history <table>",
	Short: "Show the migration history of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, db, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := engine.GetMigrationHistory(ctx, args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			ui.PrintInfo("no migrations recorded for %s", args[0])
			return nil
		}

		rows := make([][]string, 0, len(records))
		for _, r := range records {
			detail := ""
			if r.State == history.StateFailed {
				detail = r.ErrorMessage
			}
			rows = append(rows, []string{
				r.TaskID,
				fmt.Sprintf("%d -> %d", r.FromVersion, r.ToVersion),
				r.State,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				detail,
			})
		}
		ui.PrintTable([]string{"TASK", "VERSIONS", "STATE", "STARTED", "ERROR"}, rows)
		return nil
	},
}
