// Package cli implements ledgerctl, an offline tool for operators to inspect
// the booking ledger and promo table with the same configuration as the server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/config"
	"github.com/greenobird/service-booking/internal/platform/logger"
	"github.com/greenobird/service-booking/internal/repository"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect the farmstay booking ledger and promo codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBookingsCmd())
	root.AddCommand(newPromoCmd())
	root.AddCommand(newEventsCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledgerctl %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}

// openStores loads storage config and opens the configured stores. The
// caller closes them.
func openStores() (*config.ServiceConfig, *repository.Stores, *zap.Logger, error) {
	cfg, err := config.LoadStorage()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.NewNamed(cfg.AppEnv, "ledgerctl")
	if err != nil {
		return nil, nil, nil, err
	}
	stores, err := repository.OpenStores(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, stores, log, nil
}
