package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/facturador/internal/app"
	"github.com/MrJamesThe3rd/facturador/internal/config"
	"github.com/MrJamesThe3rd/facturador/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// cli carries what every subcommand shares. cfg is loaded by the root
// command's PersistentPreRunE before any subcommand runs.
type cli struct {
	cfg    *config.Config
	tenant string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Administrative commands for the invoicing service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading .env: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
				return err
			}

			c.cfg = cfg

			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.tenant, "tenant", "", "tenant the command operates on")

	root.AddCommand(
		c.migrateCmd(),
		c.tokenCmd(),
		c.numberingCmd(),
		c.stockCmd(),
	)

	return root
}

func (c *cli) services(ctx context.Context) (*app.Services, error) {
	if c.tenant == "" {
		return nil, errors.New("--tenant is required")
	}

	return app.Build(ctx, c.cfg)
}
