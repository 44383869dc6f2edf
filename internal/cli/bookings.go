package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/greenobird/service-booking/internal/application"
)

func newBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Read the booking ledger",
	}
	cmd.AddCommand(newBookingsListCmd())
	cmd.AddCommand(newBookingsDatesCmd())
	return cmd
}

func newBookingsListCmd() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "list",
		Short: "List every booking in ledger order",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stores, log, err := openStores()
			if err != nil {
				return err
			}
			defer stores.Close()
			defer log.Sync()

			svc := application.NewBookingService(stores.Bookings, nil, nil, nil, application.BookingOptions{}, log)
			bookings, err := svc.ListBookings(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(bookings)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHECKIN\tCHECKOUT\tNAME\tEMAIL\tGUESTS\tAMOUNT\tORDER")
			for _, b := range bookings {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					b.CheckIn, b.CheckOut, b.Name, b.Email, b.Guests, b.Amount, b.RazorpayOrderID)
			}
			return w.Flush()
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return c
}

func newBookingsDatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "Print every booked date, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stores, log, err := openStores()
			if err != nil {
				return err
			}
			defer stores.Close()
			defer log.Sync()

			// Unlike the HTTP endpoint, an unreadable ledger is an error here.
			if err := stores.Bookings.Ping(cmd.Context()); err != nil {
				return err
			}
			svc := application.NewAvailabilityService(stores.Bookings, log)
			for _, d := range svc.BookedDates(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}
