package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/ingest"
	"github.com/ADanMan/datarails-open/internal/model"
)

var (
	flagLoadScenario string
	flagLoadSource   string
	flagLoadSheets   []string
	flagLoadTables   []string
)

var loadCmd = &cobra.Command{
	Use:   "load-data <path>",
	Short: "Load a CSV or XLSX file into the warehouse",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&flagLoadScenario, "scenario", "actual", "Scenario label (e.g. actual, budget)")
	loadCmd.Flags().StringVar(&flagLoadSource, "source", "manual-upload", "Identifier for the data source")
	loadCmd.Flags().StringArrayVar(&flagLoadSheets, "sheet", nil, "Worksheet to import (repeatable, XLSX only)")
	loadCmd.Flags().StringArrayVar(&flagLoadTables, "table", nil, "Named table to import (repeatable, XLSX only)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(_ *cobra.Command, args []string) error {
	facts, err := ingest.ReadFile(args[0], flagLoadSheets, flagLoadTables)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.Write(facts, flagLoadScenario, flagLoadSource)
	if err != nil {
		return err
	}

	summary := model.LoadSummary{RowsLoaded: n, Source: flagLoadSource, Scenario: flagLoadScenario}
	fmt.Println(summary.Message())
	return nil
}
