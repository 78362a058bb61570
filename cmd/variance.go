package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/cli"
	"github.com/ADanMan/datarails-open/internal/report"
)

var (
	flagVarActual string
	flagVarBudget string
	flagVarOutput string
)

var varianceCmd = &cobra.Command{
	Use:   "variance",
	Short: "Actual-vs-budget variance between two scenarios",
	RunE:  runVariance,
}

func init() {
	varianceCmd.Flags().StringVar(&flagVarActual, "actual", "", "Scenario representing actuals")
	varianceCmd.Flags().StringVar(&flagVarBudget, "budget", "", "Scenario representing budget")
	varianceCmd.Flags().StringVar(&flagVarOutput, "output", "", "Write the report to a CSV file instead of stdout")
	_ = varianceCmd.MarkFlagRequired("actual")
	_ = varianceCmd.MarkFlagRequired("budget")
	rootCmd.AddCommand(varianceCmd)
}

func runVariance(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	facts, err := store.ReadPair(flagVarActual, flagVarBudget)
	if err != nil {
		return err
	}
	rows := report.Variance(facts, flagVarActual, flagVarBudget)

	if flagVarOutput != "" {
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			pct := ""
			if row.VariancePct != nil {
				pct = strconv.FormatFloat(*row.VariancePct, 'g', -1, 64)
			}
			records = append(records, []string{
				row.Period,
				row.Department,
				row.Account,
				strconv.FormatFloat(row.Actual, 'g', -1, 64),
				strconv.FormatFloat(row.Budget, 'g', -1, 64),
				strconv.FormatFloat(row.Variance, 'g', -1, 64),
				pct,
			})
		}
		header := []string{"period", "department", "account", "actual", "budget", "variance", "variance_pct"}
		if err := writeCSVFile(flagVarOutput, header, records); err != nil {
			return err
		}
		fmt.Printf("Variance report written to %s\n", flagVarOutput)
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("(no data)")
		return nil
	}

	display := make([][]string, 0, len(rows))
	for _, row := range rows {
		display = append(display, []string{
			row.Period,
			row.Department,
			row.Account,
			cli.FormatAmount(row.Actual),
			cli.FormatAmount(row.Budget),
			cli.FormatAmount(row.Variance),
			cli.FormatPct(row.VariancePct),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("VARIANCE  %s vs %s", flagVarActual, flagVarBudget)))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Period", "Department", "Account", "Actual", "Budget", "Variance", "Var %"},
		Rows:     display,
		TextCols: 3,
	}))
	return nil
}
