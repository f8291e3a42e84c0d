package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/ui"
	"github.com/schemakit/schemakit/diff"
	"github.com/schemakit/schemakit/executor"
	"github.com/schemakit/schemakit/plan"
)

var applyYes bool

var applyCmd = &cobra.Command{
	Use:   "apply <old-schema> <new-schema>",
	Short: "Apply the changes between two schema files to the database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		oldTables, err := loadTables(args[0])
		if err != nil {
			return err
		}
		newTables, err := loadTables(args[1])
		if err != nil {
			return err
		}

		engine, db, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := engine.RegisterSchemas(newTables); err != nil {
			return err
		}

		pairs, added, removed := diff.PairTables(oldTables, newTables)

		destructive := len(removed) > 0
		for _, p := range pairs {
			ops := engine.GenerateMigration(engine.DetectSchemaChanges(p.Old, p.New))
			if plan.RequiresRewrite(ops) {
				destructive = true
			}
		}
		if destructive && !applyYes {
			confirmed := false
			prompt := &survey.Confirm{
				Message: "Some changes drop tables or require table recreation. Continue?",
			}
			if err := survey.AskOne(prompt, &confirmed); err != nil {
				return err
			}
			if !confirmed {
				ui.PrintWarning("aborted")
				return nil
			}
		}

		var bar *pterm.ProgressbarPrinter
		last := 0
		cbID := engine.AddProgressCallback(func(st executor.Status) {
			switch st.State {
			case executor.StateInProgress:
				if bar == nil {
					bar, _ = ui.ProgressBar("migrating "+st.TableName, 100).Start()
					last = 0
				}
				if st.Progress > last {
					bar.Add(st.Progress - last)
					last = st.Progress
				}
			case executor.StateCompleted, executor.StateFailed:
				if bar != nil {
					if st.Progress > last {
						bar.Add(st.Progress - last)
					}
					_, _ = bar.Stop()
					bar = nil
				}
			}
		})
		defer engine.RemoveProgressCallback(cbID)

		for _, t := range added {
			ops := engine.GenerateMigration([]diff.SchemaChange{{Type: diff.TableAdded, TableName: t.Name}})
			if err := engine.ExecuteMigration(ctx, t.Name, ops, ""); err != nil {
				return fmt.Errorf("failed to create table %s: %w", t.Name, err)
			}
			ui.PrintSuccess("created table %s", t.Name)
		}
		for _, p := range pairs {
			if err := engine.Migrate(ctx, p.Old, p.New); err != nil {
				return fmt.Errorf("failed to migrate table %s: %w", p.New.Name, err)
			}
			ui.PrintSuccess("migrated table %s", p.New.Name)
		}
		for _, t := range removed {
			ops := engine.GenerateMigration([]diff.SchemaChange{{Type: diff.TableRemoved, TableName: t.Name}})
			if err := engine.ExecuteMigration(ctx, t.Name, ops, ""); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
			}
			ui.PrintWarning("dropped table %s", t.Name)
		}

		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "skip the destructive-change confirmation")
}
