package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/greenobird/service-booking/internal/config"
	"github.com/greenobird/service-booking/internal/events"
	"github.com/greenobird/service-booking/internal/platform/logger"
)

var errLimitReached = errors.New("limit reached")

func newEventsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "events",
		Short: "Read booking events from Kafka",
	}
	c.AddCommand(newEventsTailCmd())
	return c
}

func newEventsTailCmd() *cobra.Command {
	var (
		fromStart bool
		limit     int
	)
	c := &cobra.Command{
		Use:   "tail",
		Short: "Print booking.confirmed events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStorage()
			if err != nil {
				return err
			}
			if len(cfg.KafkaConfig.Brokers) == 0 {
				return fmt.Errorf("events tail needs KAFKA_BROKERS")
			}
			log, err := logger.NewNamed(cfg.AppEnv, "ledgerctl")
			if err != nil {
				return err
			}
			defer log.Sync()

			groupID := "ledgerctl-" + uuid.NewString()[:8]
			consumer := events.NewBookingEventConsumer(cfg.KafkaConfig.Brokers, groupID, cfg.KafkaConfig.Topic, fromStart, log)
			defer consumer.Close()

			err = consumer.Start(cmd.Context(), printEvents(cmd.OutOrStdout(), limit))
			if errors.Is(err, errLimitReached) {
				return nil
			}
			return err
		},
	}
	c.Flags().BoolVar(&fromStart, "from-beginning", false, "replay the whole topic")
	c.Flags().IntVar(&limit, "limit", 0, "stop after this many events (0 means no limit)")
	return c
}

// printEvents writes one line per event and stops the consumer after limit events.
func printEvents(w io.Writer, limit int) events.BookingEventHandler {
	var n int
	return func(ctx context.Context, e events.BookingConfirmedEvent) error {
		fmt.Fprintf(w, "%s %s..%s %s <%s> amount=%d order=%s\n",
			e.BookingID, e.CheckIn, e.CheckOut, e.Name, e.Email, e.Amount, e.PaymentOrderID)
		n++
		if limit > 0 && n >= limit {
			return errLimitReached
		}
		return nil
	}
}
