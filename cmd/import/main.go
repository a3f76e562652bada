package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lediangroup/repair-board/internal/config"
	"github.com/lediangroup/repair-board/internal/database"
	"github.com/lediangroup/repair-board/internal/importer"
	"github.com/lediangroup/repair-board/internal/logging"
	"github.com/lediangroup/repair-board/internal/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "repair-import: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "repair-import <csv-file>",
		Short: "Import legacy repair reports from a CSV export",
		Long: `repair-import loads the legacy intake spreadsheet's CSV export into the
report store. The header row is skipped, quoted fields may contain commas
and newlines, and rows marked complete are imported as Fixed.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup("import")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if dryRun {
				reports, err := importer.ParseReports(f)
				if err != nil {
					return err
				}
				fmt.Printf("parsed %d reports (dry run, nothing written)\n", len(reports))
				return nil
			}

			cfg := config.Load()
			if err := database.Connect(cfg); err != nil {
				return err
			}
			if err := database.Migrate(); err != nil {
				return err
			}

			count, err := importer.Run(f, store.New(database.DB))
			if err != nil {
				return err
			}
			fmt.Printf("imported %d reports\n", count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the CSV without writing to the store")
	return cmd
}
