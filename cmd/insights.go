package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/config"
	"github.com/ADanMan/datarails-open/internal/insights"
	"github.com/ADanMan/datarails-open/internal/report"
	"github.com/ADanMan/datarails-open/internal/warehouse"
)

var (
	flagInsightsActual string
	flagInsightsBudget string
	flagInsightsPrompt string
	flagHistoryLimit   int
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate an AI narrative for a variance report",
	RunE:  runInsights,
}

var insightsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previously generated narratives",
	RunE:  runInsightsHistory,
}

func init() {
	insightsCmd.Flags().StringVar(&flagInsightsActual, "actual", "", "Scenario representing actuals")
	insightsCmd.Flags().StringVar(&flagInsightsBudget, "budget", "", "Scenario representing budget")
	insightsCmd.Flags().StringVar(&flagInsightsPrompt, "prompt", "", "Custom analysis prompt")
	_ = insightsCmd.MarkFlagRequired("actual")
	_ = insightsCmd.MarkFlagRequired("budget")

	insightsHistoryCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Maximum entries to show")

	insightsCmd.AddCommand(insightsHistoryCmd)
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := insights.NewClient(insights.Config{
		APIKey:  config.APIKey(cfg),
		APIBase: config.APIBase(cfg),
		Model:   config.Model(cfg),
		Mode:    config.APIMode(cfg),
	})
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	facts, err := store.ReadPair(flagInsightsActual, flagInsightsBudget)
	if err != nil {
		return err
	}
	rows := report.Variance(facts, flagInsightsActual, flagInsightsBudget)

	text, err := client.Generate(cmd.Context(), rows, flagInsightsPrompt)
	if err != nil {
		return err
	}

	if _, err := store.SaveInsight(warehouse.Insight{
		Actual:   flagInsightsActual,
		Budget:   flagInsightsBudget,
		Prompt:   flagInsightsPrompt,
		Insights: text,
		RowCount: len(rows),
	}); err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

func runInsightsHistory(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, total, err := store.ListInsights("", "", flagHistoryLimit, 0)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("(no insights)")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("[%d] %s  %s vs %s  (%d rows)\n", rec.ID, rec.CreatedAt, rec.Actual, rec.Budget, rec.RowCount)
		fmt.Println(rec.Insights)
		fmt.Println()
	}
	if total > len(records) {
		fmt.Printf("(%d more)\n", total-len(records))
	}
	return nil
}
