package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
	"github.com/greenobird/service-booking/internal/domain/availability"
	"github.com/greenobird/service-booking/internal/domain/booking"
)

// AvailabilityService derives occupied dates from the ledger on every call.
type AvailabilityService struct {
	repo   booking.Repository
	logger *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(repo booking.Repository, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, logger: logger}
}

// BookedDates returns every occupied date, sorted. An unreadable ledger
// degrades to an empty calendar.
func (s *AvailabilityService) BookedDates(ctx context.Context) []string {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		if domain.IsStoreError(err) {
			s.logger.Warn("booking store unreadable, reporting no booked dates", zap.Error(err))
		} else {
			s.logger.Error("failed to list bookings for calendar", zap.Error(err))
		}
		return []string{}
	}
	return buildCalendar(bookings, s.logger).Dates()
}

// IsRangeFree reports whether [checkIn, checkOut) is free. Unlike BookedDates
// it surfaces store errors, since a wrong "free" answer leads to double-booking.
func (s *AvailabilityService) IsRangeFree(ctx context.Context, checkIn, checkOut string) (*AvailabilityDTO, error) {
	stay, err := booking.ParseStay(checkIn, checkOut)
	if err != nil {
		return nil, stayValidationError(err)
	}
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Free:     buildCalendar(bookings, s.logger).IsRangeFree(stay),
	}, nil
}

// stayValidationError names the date that failed, or checkout when the order is wrong.
func stayValidationError(err error) error {
	var dateErr *booking.DateError
	if errors.As(err, &dateErr) {
		return domain.NewValidationError(dateErr.Field, "Dates must be in YYYY-MM-DD format")
	}
	return domain.NewValidationError("checkout", "Checkout must be after checkin")
}

func buildCalendar(bookings []*booking.Booking, logger *zap.Logger) *availability.Calendar {
	return availability.Build(bookings, func(b *booking.Booking, err error) {
		logger.Warn("skipping booking with malformed dates",
			zap.String("booking_id", b.ID().String()),
			zap.String("email", b.Email()),
			zap.String("checkin", b.CheckIn()),
			zap.String("checkout", b.CheckOut()),
			zap.Error(err),
		)
	})
}

// rangeFreeCheck vetoes an append whose stay overlaps the ledger.
func rangeFreeCheck(stay booking.Stay, logger *zap.Logger) booking.AppendCheck {
	return func(existing []*booking.Booking) error {
		if !buildCalendar(existing, logger).IsRangeFree(stay) {
			return domain.NewConflictError("Selected dates are already booked")
		}
		return nil
	}
}
