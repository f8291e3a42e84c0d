package commands

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/config"
	"github.com/schemakit/schemakit/cli/internal/ui"
	"github.com/schemakit/schemakit/diff"
	"github.com/schemakit/schemakit/plan"
)

var planOut string

var planCmd = &cobra.Command{
	Use:   "plan <old-schema> <new-schema>",
	Short: "Generate the migration statements for a schema change",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldTables, err := loadTables(args[0])
		if err != nil {
			return err
		}
		newTables, err := loadTables(args[1])
		if err != nil {
			return err
		}

		catalog := plan.NewCatalog()
		if err := catalog.RegisterAll(newTables); err != nil {
			return err
		}
		changes := diff.NewDetector().DetectSet(oldTables, newTables)
		ops := plan.NewGenerator(catalog).Generate(changes)
		if len(ops) == 0 {
			ui.PrintSuccess("nothing to migrate")
			return nil
		}

		var sb strings.Builder
		for _, op := range ops {
			sb.WriteString(op.SQL)
			sb.WriteString(";\n")
		}

		out := planOut
		if out == "" {
			out = cfg.OutputPath
		}
		if err := afero.WriteFile(config.AppFs, out, []byte(sb.String()), 0644); err != nil {
			return err
		}
		ui.PrintSuccess("wrote %d operation(s) to %s", len(ops), out)
		if plan.RequiresRewrite(ops) {
			ui.PrintWarning("some changes require table recreation; apply will use the zero-downtime rewriter")
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planOut, "out", "", "output file for the migration plan")
}
