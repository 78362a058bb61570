package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ADanMan/datarails-open/internal/bridge"
	"github.com/ADanMan/datarails-open/internal/config"
)

var flagBridgeAddr string

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Serve the HTTP bridge for the spreadsheet add-in",
	RunE:  runBridge,
}

func init() {
	bridgeCmd.Flags().StringVar(&flagBridgeAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	addr := flagBridgeAddr
	if addr == "" {
		addr = config.BridgeAddr(cfg)
	}

	svc := bridge.New(bridge.Config{
		DatabasePath: databasePath(),
		Addr:         addr,
		Token:        config.BridgeToken(cfg),
		AIKey:        config.APIKey(cfg),
		AIBase:       config.APIBase(cfg),
		AIModel:      config.Model(cfg),
		AIMode:       config.APIMode(cfg),
		AIKeySink: func(key string) error {
			cfg.AI.APIKey = key
			return config.Save(cfg)
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return svc.Run(ctx)
}
