package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/ui"
	"github.com/schemakit/schemakit/diff"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-schema> <new-schema>",
	Short: "Show structural changes between two schema files",
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

		detector := diff.NewDetector()
		changes := detector.DetectSet(oldTables, newTables)
		if len(changes) == 0 {
			ui.PrintSuccess("schemas are identical")
			return nil
		}

		for _, ch := range changes {
			printChange(ch)
		}
		ui.PrintInfo("%d change(s) detected", len(changes))
		return nil
	},
}

func printChange(ch diff.SchemaChange) {
	switch ch.Type {
	case diff.TableAdded:
		ui.Added.Printf("+ table %s\n", ch.TableName)
	case diff.TableRemoved:
		ui.Removed.Printf("- table %s\n", ch.TableName)
	case diff.TableRenamed:
		fmt.Printf("~ table %s -> %s\n", ch.OldTableName, ch.TableName)
	case diff.FieldAdded:
		ui.Added.Printf("+ %s.%s (%s)\n", ch.TableName, ch.FieldName, ch.Field.Type)
	case diff.FieldRemoved:
		ui.Removed.Printf("- %s.%s\n", ch.TableName, ch.FieldName)
	case diff.FieldRenamed:
		fmt.Printf("~ %s.%s -> %s\n", ch.TableName, ch.OldFieldName, ch.FieldName)
	case diff.FieldTypeChanged:
		fmt.Printf("~ %s.%s type %s -> %s\n", ch.TableName, ch.FieldName, ch.OldType, ch.NewType)
	case diff.FieldConstraintChanged:
		fmt.Printf("~ %s.%s constraints nullable=%v unique=%v -> nullable=%v unique=%v\n",
			ch.TableName, ch.FieldName,
			ch.Before.Nullable, ch.Before.Unique, ch.After.Nullable, ch.After.Unique)
	case diff.IndexAdded:
		ui.Added.Printf("+ index on %s (%s)\n", ch.TableName, ch.Index.Signature())
	case diff.IndexRemoved:
		ui.Removed.Printf("- index on %s (%s)\n", ch.TableName, ch.Index.Signature())
	case diff.ForeignKeyAdded:
		ui.Added.Printf("+ fk %s.%s -> %s.%s\n", ch.TableName, ch.ForeignKey.Field, ch.ForeignKey.RefTable, ch.ForeignKey.RefField)
	case diff.ForeignKeyRemoved:
		ui.Removed.Printf("- fk %s.%s -> %s.%s\n", ch.TableName, ch.ForeignKey.Field, ch.ForeignKey.RefTable, ch.ForeignKey.RefField)
	}
}
