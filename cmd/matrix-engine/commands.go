package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	rollbackSteps int

	cfg *config.MatrixConfig

	rootCmd = &cobra.Command{
		Use:           "matrix-engine",
		Short:         "Matrix placement and donation routing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				cfg = config.MustLoad()
			} else {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if _, err := logger.Setup(cfg.LogConfig); err != nil {
				return fmt.Errorf("failed to setup logger: %w", err)
			}
			slog.Info("config loaded", "env", cfg.Env)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC API, the confirmation consumer and the expiry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "Process delayed donation expiry and placement retry tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), cfg)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations, or roll back with --rollback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cfg, rollbackSteps)
		},
	}

	bootstrapCmd = &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the house account and its open matrices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context(), cfg)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config yaml")
	migrateCmd.Flags().IntVar(&rollbackSteps, "rollback", 0, "roll back this many migrations instead of applying")

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, bootstrapCmd)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
