package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	if config.Exists() {
		fmt.Println("  Updating existing configuration.")
	} else {
		fmt.Println("  Welcome to datarails!")
	}
	fmt.Println()

	// 1. Warehouse location
	fmt.Println("  1. Warehouse database path")
	fmt.Printf("     Current: %s\n", config.DatabasePath(cfg))
	fmt.Print("     > ")
	dbPath, _ := reader.ReadString('\n')
	if dbPath = strings.TrimSpace(dbPath); dbPath != "" {
		cfg.General.DatabasePath = dbPath
	}
	fmt.Println()

	// 2. Bridge
	fmt.Println("  2. HTTP bridge listen address")
	fmt.Printf("     Current: %s\n", config.BridgeAddr(cfg))
	fmt.Print("     > ")
	addr, _ := reader.ReadString('\n')
	if addr = strings.TrimSpace(addr); addr != "" {
		cfg.Bridge.Addr = addr
	}

	fmt.Println("     Bridge bearer token (blank keeps the bridge open)")
	if cfg.Bridge.Token != "" {
		fmt.Printf("     Current: %s\n", maskSecret(cfg.Bridge.Token))
	}
	fmt.Print("     > ")
	token, _ := reader.ReadString('\n')
	if token = strings.TrimSpace(token); token != "" {
		cfg.Bridge.Token = token
	}
	fmt.Println()

	// 3. AI insights
	fmt.Println("  3. API key for AI insights (OpenAI-compatible)")
	if existing := config.APIKey(cfg); existing != "" {
		fmt.Printf("     Current: %s\n", maskSecret(existing))
	}
	fmt.Print("     > ")
	apiKey, _ := reader.ReadString('\n')
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}

	fmt.Printf("     Model [%s]\n", config.Model(cfg))
	fmt.Print("     > ")
	aiModel, _ := reader.ReadString('\n')
	if aiModel = strings.TrimSpace(aiModel); aiModel != "" {
		cfg.AI.Model = aiModel
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `datarails setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
