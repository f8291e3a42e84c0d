package commands

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/schemakit/schemakit/cli/internal/ui"
	"github.com/schemakit/schemakit/cli/internal/watch"
	"github.com/schemakit/schemakit/diff"
)

var watchCmd = &cobra.Command{
	Use:   "watch <old-schema> <new-schema>",
	Short: "Re-run diff whenever the new schema file changes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDiff := func() error {
			oldTables, err := loadTables(args[0])
			if err != nil {
				return err
			}
			newTables, err := loadTables(args[1])
			if err != nil {
				return err
			}
			changes := diff.NewDetector().DetectSet(oldTables, newTables)
			if len(changes) == 0 {
				ui.PrintSuccess("schemas are identical")
				return nil
			}
			for _, ch := range changes {
				printChange(ch)
			}
			return nil
		}

		watcher, err := watch.New(args[1], runDiff)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		ui.PrintInfo("watching %s, press Ctrl-C to stop", args[1])
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		return nil
	},
}
