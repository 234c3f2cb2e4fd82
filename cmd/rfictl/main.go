// Command rfictl is the operator tool for the record store: it loads
// fixtures, moves snapshots through object storage and mints dev tokens.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shariqkhan335/RFI-PROJ/internal/app"
	"github.com/shariqkhan335/RFI-PROJ/internal/config"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/service"
	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "rfictl",
	Short:         "Operate the content inventory record store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Getenv("LOG_LEVEL"))
	},
}

func init() {
	rootCmd.AddCommand(importCmd, snapshotCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore loads the server configuration and opens the same backend the
// server would use.
func openStore(ctx context.Context) (*config.Config, *service.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	b, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, service.New(b), nil
}
