package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/repository"
)

func newPromoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promo",
		Short: "Inspect and seed promo codes",
	}
	cmd.AddCommand(newPromoCheckCmd())
	cmd.AddCommand(newPromoSeedCmd())
	return cmd
}

func newPromoCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check CODE",
		Short: "Look a promo code up the way the booking page does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stores, log, err := openStores()
			if err != nil {
				return err
			}
			defer stores.Close()
			defer log.Sync()

			svc := application.NewPromoService(stores.Promos, log)
			result, err := svc.ValidatePromo(cmd.Context(), application.ValidatePromoRequest{Code: args[0]})
			if err != nil {
				return err
			}
			if !result.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d%% off\n", args[0], result.Discount)
			return nil
		},
	}
}

func newPromoSeedCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Copy a promo CSV file into the promo_codes table (postgres driver)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, stores, log, err := openStores()
			if err != nil {
				return err
			}
			defer stores.Close()
			defer log.Sync()

			if stores.DB == nil {
				return fmt.Errorf("promo seed needs STORAGE_DRIVER=postgres, got %q", cfg.StorageDriver)
			}
			if file == "" {
				file = cfg.PromoFile
			}

			codes, err := repository.NewCSVPromoRepository(file, log).LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			target := repository.NewGormPromoRepository(stores.DB)
			for _, p := range codes {
				if err := target.SavePromo(cmd.Context(), p); err != nil {
					return fmt.Errorf("save %s: %w", p.Code(), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d promo codes from %s\n", len(codes), file)
			return nil
		},
	}

	c.Flags().StringVar(&file, "file", "", "CSV file to read (default PROMO_FILE)")
	return c
}
