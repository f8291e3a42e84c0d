// Package commands implements the schemakit CLI.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemakit/schemakit/cli/internal/config"
	"github.com/schemakit/schemakit/cli/internal/ui"
	"github.com/schemakit/schemakit/cli/internal/version"
)

var (
	cfg    *config.Config
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:           "schemakit",
	Short:         "Schema diffing and migration for embedded SQL stores",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dbPath == "" {
			dbPath = cfg.DatabasePath
		}
		if required := viper.GetString("require_version"); required != "" {
			if err := version.CheckMinimum(required); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file")
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(docsCmd)
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
