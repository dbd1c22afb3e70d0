// Command storefront runs the storefront API and its maintenance tasks.
//
//	storefront serve             # HTTP + gRPC, degraded if the DB is down
//	storefront migrate           # apply pending migrations
//	storefront migrate:rollback  # revert the last batch
//	storefront migrate:status
//	storefront seed              # demo catalog
//	storefront route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"

	// Migrations register themselves from init().
	_ "github.com/shashiranjanraj/storefront/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var flushLogs = func() {}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront catalog and order API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		flush, err := logger.Setup()
		flushLogs = flush
		if err != nil {
			logger.Warn("log sink unavailable", "error", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogs()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
