// Command server runs the membership onboarding API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"unitgate/internal/platform/config"
	"unitgate/internal/platform/database"
	"unitgate/internal/platform/logger"
	"unitgate/migrations"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load() //nolint:errcheck // missing .env is fine

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "unitgate",
		Short:         "Membership onboarding and approval service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the outbox relay and the directory cache invalidator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo directory on start (always on for the memory backend)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.New(cfg.Server.LogLevel)

			pool, err := database.New(cfg.Database)
			if err != nil {
				return err
			}
			if pool == nil {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			defer pool.Close() //nolint:errcheck // process exit

			applied, err := migrations.Apply(contextOrBackground(cmd.Context()), pool.DB())
			if err != nil {
				return err
			}
			log.Info("migrations applied", "count", len(applied), "files", applied)
			return nil
		},
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
