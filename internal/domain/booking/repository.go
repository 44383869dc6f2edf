package booking

import "context"

// AppendCheck inspects the current ledger before an append and vetoes it by returning an error.
type AppendCheck func(existing []*Booking) error

// Repository is the append-only ledger of confirmed bookings.
type Repository interface {
	// Append durably adds one booking. Concurrent appends never lose each other.
	Append(ctx context.Context, b *Booking) error

	// AppendIf runs check against the ledger and appends only if it passes,
	// with no other append in between.
	AppendIf(ctx context.Context, b *Booking, check AppendCheck) error

	// ListAll returns every booking in insertion order.
	ListAll(ctx context.Context) ([]*Booking, error)

	// FindFirstByEmail returns the earliest booking for email, case-insensitively.
	FindFirstByEmail(ctx context.Context, email string) (*Booking, error)

	// Close releases the underlying resources.
	Close() error
}
