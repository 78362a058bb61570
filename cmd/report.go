package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/cli"
	"github.com/ADanMan/datarails-open/internal/model"
	"github.com/ADanMan/datarails-open/internal/report"
	"github.com/ADanMan/datarails-open/internal/warehouse"
)

var (
	flagReportScenario string
	flagReportOutput   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Consolidated totals by period and department",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagReportScenario, "scenario", "", "Restrict the report to one scenario")
	reportCmd.Flags().StringVar(&flagReportOutput, "output", "", "Write the report to a CSV file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	facts, err := readScope(store, flagReportScenario)
	if err != nil {
		return err
	}
	rows := report.Summarize(facts)

	if flagReportOutput != "" {
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, []string{
				row.Period,
				row.Department,
				strconv.FormatFloat(row.Total, 'g', -1, 64),
			})
		}
		if err := writeCSVFile(flagReportOutput, []string{"period", "department", "total"}, records); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", flagReportOutput)
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("(no data)")
		return nil
	}

	display := make([][]string, 0, len(rows))
	for _, row := range rows {
		display = append(display, []string{row.Period, row.Department, cli.FormatAmount(row.Total)})
	}

	title := "DEPARTMENT TOTALS"
	if flagReportScenario != "" {
		title += "  " + flagReportScenario
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Period", "Department", "Total"},
		Rows:     display,
		TextCols: 2,
	}))
	return nil
}

// readScope fetches one scenario's facts, or the whole warehouse when no
// scenario was named.
func readScope(store *warehouse.Store, name string) ([]model.Fact, error) {
	if name == "" {
		return store.ReadAll()
	}
	return store.Read(name, warehouse.Filters{})
}
