package application

import (
	"context"
	"sync"

	"github.com/greenobird/service-booking/internal/adapter"
	"github.com/greenobird/service-booking/internal/domain"
	"github.com/greenobird/service-booking/internal/domain/booking"
	"github.com/greenobird/service-booking/internal/domain/promo"
)

// mockRepo is an in-memory ledger; the Fn fields override single operations.
type mockRepo struct {
	mu       sync.Mutex
	bookings []*booking.Booking

	appendFn  func(ctx context.Context, b *booking.Booking) error
	listAllFn func(ctx context.Context) ([]*booking.Booking, error)
	findFn    func(ctx context.Context, email string) (*booking.Booking, error)
}

var _ booking.Repository = (*mockRepo)(nil)

func (m *mockRepo) Append(ctx context.Context, b *booking.Booking) error {
	return m.AppendIf(ctx, b, nil)
}

func (m *mockRepo) AppendIf(ctx context.Context, b *booking.Booking, check booking.AppendCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendFn != nil {
		if err := m.appendFn(ctx, b); err != nil {
			return err
		}
	}
	if check != nil {
		if err := check(append([]*booking.Booking(nil), m.bookings...)); err != nil {
			return err
		}
	}
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *mockRepo) ListAll(ctx context.Context) ([]*booking.Booking, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*booking.Booking(nil), m.bookings...), nil
}

func (m *mockRepo) FindFirstByEmail(ctx context.Context, email string) (*booking.Booking, error) {
	if m.findFn != nil {
		return m.findFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.MatchesEmail(email) {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", email)
}

func (m *mockRepo) Close() error { return nil }

func (m *mockRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type mockGateway struct {
	mu    sync.Mutex
	calls []int64

	createFn func(ctx context.Context, amountMinor int64, currency, receipt string) (*adapter.Order, error)
}

var _ adapter.PaymentGateway = (*mockGateway)(nil)

func (m *mockGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*adapter.Order, error) {
	m.mu.Lock()
	m.calls = append(m.calls, amountMinor)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, amountMinor, currency, receipt)
	}
	return &adapter.Order{ID: "order_test", Amount: amountMinor, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockNotifier struct {
	channel  string
	notifyFn func(ctx context.Context, b *booking.Booking) error
}

var _ adapter.Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) Channel() string { return m.channel }

func (m *mockNotifier) Notify(ctx context.Context, b *booking.Booking) error {
	if m.notifyFn == nil {
		return nil
	}
	return m.notifyFn(ctx, b)
}

type mockInvoices struct {
	renderFn func(b *booking.Booking) ([]byte, error)
}

var _ adapter.InvoiceRenderer = (*mockInvoices)(nil)

func (m *mockInvoices) ContentType() string { return "application/pdf" }

func (m *mockInvoices) Render(b *booking.Booking) ([]byte, error) {
	if m.renderFn == nil {
		return []byte("invoice for " + b.PaymentOrderID()), nil
	}
	return m.renderFn(b)
}

type mockPromoRepo struct {
	findFn func(ctx context.Context, code string) (*promo.PromoCode, error)
}

var _ promo.PromoRepository = (*mockPromoRepo)(nil)

func (m *mockPromoRepo) FindByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	return m.findFn(ctx, code)
}
