// Package cmd wires the datarails CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/config"
	"github.com/ADanMan/datarails-open/internal/warehouse"
)

var flagDB string

var rootCmd = &cobra.Command{
	Use:   "datarails",
	Short: "Open-source FP&A console",
	Long: "Consolidate financial facts from CSV and Excel into a local warehouse,\n" +
		"then derive departmental reports, actual-vs-budget variance, and\n" +
		"percentage-adjusted what-if scenarios.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "",
		"Path to the SQLite warehouse (default from config, or financials.db)")
}

// databasePath resolves the warehouse location: flag first, then env/config.
func databasePath() string {
	if flagDB != "" {
		return flagDB
	}
	cfg, _ := config.Load()
	return config.DatabasePath(cfg)
}

// openStore opens the warehouse used by all commands.
func openStore() (*warehouse.Store, error) {
	return warehouse.Open(databasePath())
}
