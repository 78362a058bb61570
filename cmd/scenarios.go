package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List scenarios present in the warehouse",
	RunE:  runScenarios,
}

var scenariosDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove every fact for a scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenariosDelete,
}

func init() {
	scenariosCmd.AddCommand(scenariosDeleteCmd)
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	scenarios, err := store.ListScenarios()
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Println("(no scenarios)")
		return nil
	}
	for _, name := range scenarios {
		fmt.Println(name)
	}
	return nil
}

func runScenariosDelete(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteScenario(args[0]); err != nil {
		return err
	}
	fmt.Printf("Scenario %q deleted\n", args[0])
	return nil
}
