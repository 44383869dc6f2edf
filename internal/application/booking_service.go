package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/adapter"
	"github.com/greenobird/service-booking/internal/domain"
	"github.com/greenobird/service-booking/internal/domain/booking"
	"github.com/greenobird/service-booking/internal/saga"
)

// BookingOptions tunes admission.
type BookingOptions struct {
	// Currency sent to the gateway.
	Currency string
	// RejectOverlaps refuses stays that share a night with an existing booking.
	RejectOverlaps bool
	// GatewayTimeout bounds order creation; zero means no extra bound.
	GatewayTimeout time.Duration
	// NotifyTimeout bounds each notifier.
	NotifyTimeout time.Duration
}

// BookingService is the application service that admits bookings and serves
// ledger reads.
type BookingService struct {
	repo      booking.Repository
	gateway   adapter.PaymentGateway
	notifiers []adapter.Notifier
	invoices  adapter.InvoiceRenderer
	opts      BookingOptions
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo booking.Repository,
	gateway adapter.PaymentGateway,
	notifiers []adapter.Notifier,
	invoices adapter.InvoiceRenderer,
	opts BookingOptions,
	logger *zap.Logger,
) *BookingService {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &BookingService{
		repo:      repo,
		gateway:   gateway,
		notifiers: notifiers,
		invoices:  invoices,
		opts:      opts,
		logger:    logger,
	}
}

// ConfirmBooking validates the request, creates the payment order, appends the
// booking to the ledger and then notifies. Failures before the append leave the
// ledger untouched; notification failures only downgrade the response.
func (s *BookingService) ConfirmBooking(ctx context.Context, req ConfirmBookingRequest) (*ConfirmBookingResponse, error) {
	b, err := booking.NewBooking(req.toDomain())
	if err != nil {
		return nil, err
	}
	stay, err := b.Stay()
	if err != nil {
		return nil, stayValidationError(err)
	}

	log := s.logger.With(zap.String("booking_id", b.ID().String()))
	log.Info("admitting booking",
		zap.String("checkin", b.CheckIn()),
		zap.String("checkout", b.CheckOut()),
		zap.Int64("amount", b.Amount()),
	)

	var check booking.AppendCheck
	if s.opts.RejectOverlaps {
		check = rangeFreeCheck(stay, s.logger)
		existing, err := s.repo.ListAll(ctx)
		if err != nil {
			log.Error("cannot confirm ledger state, refusing booking", zap.Error(err))
			return nil, err
		}
		if err := check(existing); err != nil {
			return nil, err
		}
	}

	sg := saga.New("admit_booking", s.logger, zap.String("booking_id", b.ID().String()))
	sg.AddStep(saga.Step{
		Name: "create_payment_order",
		Execute: func(ctx context.Context) error {
			if b.Amount() == 0 {
				return nil
			}
			order, err := s.createOrder(ctx, b.Amount(), receiptFor(b))
			if err != nil {
				return err
			}
			return b.AttachOrder(order.ID)
		},
		Compensate: func(ctx context.Context) error {
			// Gateway orders cannot be cancelled; unpaid ones expire on their own.
			if b.PaymentOrderID() != "" {
				log.Warn("payment order left without booking", zap.String("order_id", b.PaymentOrderID()))
			}
			return nil
		},
	})
	sg.AddStep(saga.Step{
		Name: "persist_booking",
		Execute: func(ctx context.Context) error {
			if check != nil {
				return s.repo.AppendIf(ctx, b, check)
			}
			return s.repo.Append(ctx, b)
		},
	})

	if err := sg.Execute(ctx); err != nil {
		var stepErr *saga.StepError
		if errors.As(err, &stepErr) {
			log.Error("booking admission failed", zap.String("step", stepErr.Step), zap.Error(stepErr.Err))
			return nil, stepErr.Err
		}
		return nil, err
	}

	log.Info("booking persisted", zap.String("order_id", b.PaymentOrderID()))

	outcome := s.notify(ctx, b)
	message := "Booking confirmed."
	switch {
	case outcome.Warning != "":
		message = "Booking confirmed, but the confirmation could not be sent."
	case outcome.Sent:
		message = "Booking confirmed and confirmation sent."
	}

	return &ConfirmBookingResponse{
		Status:       "success",
		Message:      message,
		BookingID:    b.ID(),
		OrderID:      b.PaymentOrderID(),
		Notification: outcome,
	}, nil
}

// CreateOrder creates a standalone gateway order for a client-supplied amount in rupees.
func (s *BookingService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*adapter.Order, error) {
	amount, err := booking.ParseAmount(string(req.Amount))
	if err != nil || amount <= 0 {
		return nil, domain.NewValidationError("amount", "Invalid amount")
	}
	return s.createOrder(ctx, amount, "")
}

// ListBookings returns the whole ledger in insertion order.
func (s *BookingService) ListBookings(ctx context.Context) ([]BookingDTO, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list bookings", zap.Error(err))
		return nil, err
	}
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, nil
}

// Invoice renders the invoice of the first booking made with email. An
// unreadable ledger is reported as not found.
func (s *BookingService) Invoice(ctx context.Context, email string) (*InvoiceDTO, error) {
	b, err := s.repo.FindFirstByEmail(ctx, email)
	if err != nil {
		if domain.IsStoreError(err) {
			s.logger.Warn("booking store unreadable for invoice", zap.Error(err))
		}
		return nil, domain.NewNotFoundError("Booking", email)
	}

	data, err := s.invoices.Render(b)
	if err != nil {
		s.logger.Error("failed to render invoice", zap.String("booking_id", b.ID().String()), zap.Error(err))
		return nil, err
	}
	return &InvoiceDTO{
		Filename:    "invoice.pdf",
		ContentType: s.invoices.ContentType(),
		Data:        data,
	}, nil
}

func (s *BookingService) createOrder(ctx context.Context, amountRupees int64, receipt string) (*adapter.Order, error) {
	if s.opts.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.GatewayTimeout)
		defer cancel()
	}

	order, err := s.gateway.CreateOrder(ctx, amountRupees*100, s.opts.Currency, receipt)
	if err != nil {
		var domErr *domain.DomainError
		if errors.As(err, &domErr) {
			return nil, err
		}
		return nil, domain.NewGatewayError("payment order could not be created", err)
	}
	return order, nil
}

// notify fans out to every notifier. It runs detached from the request's
// cancellation since the booking is already durable.
func (s *BookingService) notify(ctx context.Context, b *booking.Booking) NotificationOutcome {
	if len(s.notifiers) == 0 {
		return NotificationOutcome{}
	}
	ctx = context.WithoutCancel(ctx)

	var outcome NotificationOutcome
	var failed []string
	for _, n := range s.notifiers {
		nctx, cancel := ctx, context.CancelFunc(func() {})
		if s.opts.NotifyTimeout > 0 {
			nctx, cancel = context.WithTimeout(ctx, s.opts.NotifyTimeout)
		}
		err := n.Notify(nctx, b)
		cancel()

		if err != nil {
			s.logger.Warn("booking notification failed",
				zap.String("booking_id", b.ID().String()),
				zap.String("channel", n.Channel()),
				zap.Error(err),
			)
			failed = append(failed, n.Channel())
			continue
		}
		outcome.Channels = append(outcome.Channels, n.Channel())
	}

	outcome.Sent = len(outcome.Channels) > 0
	if len(failed) > 0 {
		outcome.Warning = fmt.Sprintf("notification failed via %s", strings.Join(failed, ", "))
	}
	return outcome
}

// receiptFor is the gateway receipt reference; Razorpay caps it at 40 characters.
func receiptFor(b *booking.Booking) string {
	return "bk_" + strings.ReplaceAll(b.ID().String(), "-", "")
}
