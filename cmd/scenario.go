package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/cli"
	"github.com/ADanMan/datarails-open/internal/scenario"
)

var (
	flagBuildSource     string
	flagBuildTarget     string
	flagBuildAdjustment float64
	flagBuildDepartment string
	flagBuildAccount    string
	flagBuildPersist    bool
	flagBuildOutput     string
)

var buildScenarioCmd = &cobra.Command{
	Use:   "build-scenario",
	Short: "Create a what-if scenario from an existing one",
	Long: "Copies every fact of the source scenario into a new scenario,\n" +
		"scaling the values that match the department/account filters by\n" +
		"the given adjustment ratio (e.g. 0.05 for +5%).",
	RunE: runBuildScenario,
}

func init() {
	buildScenarioCmd.Flags().StringVar(&flagBuildSource, "source", "", "Scenario to use as a base")
	buildScenarioCmd.Flags().StringVar(&flagBuildTarget, "target", "", "Name of the scenario to create")
	buildScenarioCmd.Flags().Float64Var(&flagBuildAdjustment, "adjustment", 0, "Percentage adjustment as a ratio (e.g. 0.1 for +10%)")
	buildScenarioCmd.Flags().StringVar(&flagBuildDepartment, "department", "", "Only adjust facts in this department")
	buildScenarioCmd.Flags().StringVar(&flagBuildAccount, "account", "", "Only adjust facts on this account")
	buildScenarioCmd.Flags().BoolVar(&flagBuildPersist, "persist", true, "Persist the generated scenario to the warehouse")
	buildScenarioCmd.Flags().StringVar(&flagBuildOutput, "output", "", "Export the scenario rows to a CSV file")
	_ = buildScenarioCmd.MarkFlagRequired("source")
	_ = buildScenarioCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(buildScenarioCmd)
}

func runBuildScenario(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	adj := scenario.Adjustment{
		Department:       flagBuildDepartment,
		Account:          flagBuildAccount,
		PercentageChange: flagBuildAdjustment,
	}
	res, err := scenario.Build(store, flagBuildSource, flagBuildTarget, adj, flagBuildPersist)
	if err != nil {
		return err
	}

	if len(res.Rows) == 0 {
		fmt.Println("Source scenario has no data")
		return nil
	}

	if flagBuildPersist {
		fmt.Printf("Scenario %q stored in the database (%d rows)\n", flagBuildTarget, res.Persisted)
	}

	if flagBuildOutput != "" {
		records := make([][]string, 0, len(res.Rows))
		for _, f := range res.Rows {
			records = append(records, []string{
				f.Period,
				f.Department,
				f.Account,
				strconv.FormatFloat(f.Value, 'g', -1, 64),
				f.Currency,
				f.Metadata,
			})
		}
		header := []string{"period", "department", "account", "value", "currency", "metadata"}
		if err := writeCSVFile(flagBuildOutput, header, records); err != nil {
			return err
		}
		fmt.Printf("Scenario exported to %s\n", flagBuildOutput)
		return nil
	}

	display := make([][]string, 0, len(res.Rows))
	for _, f := range res.Rows {
		display = append(display, []string{
			f.Period,
			f.Department,
			f.Account,
			cli.FormatAmount(f.Value),
			f.Currency,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIO  %s", flagBuildTarget)))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Period", "Department", "Account", "Value", "Currency"},
		Rows:     display,
		TextCols: 3,
	}))
	return nil
}
