package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenobird/service-booking/internal/domain"
	bookingDomain "github.com/greenobird/service-booking/internal/domain/booking"
)

// BookingModel is the GORM persistence model for the bookings table.
// Seq is the ledger order.
type BookingModel struct {
	Seq               int64     `gorm:"primaryKey;autoIncrement"`
	ID                uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name              string    `gorm:"type:varchar(255);not null"`
	Email             string    `gorm:"type:varchar(320);not null;index"`
	Phone             string    `gorm:"type:varchar(50);not null"`
	CheckIn           string    `gorm:"type:varchar(10);not null"`
	CheckOut          string    `gorm:"type:varchar(10);not null"`
	Guests            int       `gorm:"not null"`
	Amount            int64     `gorm:"not null"`
	PromoCode         string    `gorm:"type:varchar(50)"`
	RazorpayOrderID   string    `gorm:"type:varchar(255)"`
	RazorpayPaymentID string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the Postgres-backed ledger.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM-based booking ledger.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Append inserts one booking.
func (r *GormBookingRepository) Append(ctx context.Context, b *bookingDomain.Booking) error {
	return r.AppendIf(ctx, b, nil)
}

// AppendIf locks the table against other appends, runs check against the
// current ledger and inserts b in the same transaction.
func (r *GormBookingRepository) AppendIf(ctx context.Context, b *bookingDomain.Booking, check bookingDomain.AppendCheck) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SHARE ROW EXCLUSIVE conflicts with itself, so appends serialize while
		// plain reads keep going.
		if err := tx.Exec("LOCK TABLE bookings IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
			return err
		}
		if check != nil {
			existing, err := listAll(tx)
			if err != nil {
				return err
			}
			if err := check(existing); err != nil {
				return err
			}
		}
		return tx.Create(toBookingModel(b)).Error
	})
	if err == nil {
		return nil
	}
	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		return err
	}
	return domain.NewUnavailableError("booking store", err)
}

// ListAll returns every booking in ledger order.
func (r *GormBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	bookings, err := listAll(r.db.WithContext(ctx))
	if err != nil {
		return nil, domain.NewUnavailableError("booking store", err)
	}
	return bookings, nil
}

// FindFirstByEmail returns the earliest booking made with email.
func (r *GormBookingRepository) FindFirstByEmail(ctx context.Context, email string) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Order("seq ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", email)
		}
		return nil, domain.NewUnavailableError("booking store", err)
	}
	return toBookingDomain(&model), nil
}

// Ping checks the database connection.
func (r *GormBookingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (r *GormBookingRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

func listAll(db *gorm.DB) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := db.Order("seq ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toBookingDomain(&models[i])
	}
	return bookings, nil
}

// toBookingDomain maps a BookingModel to the domain Booking.
func toBookingDomain(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		m.ID,
		m.Name, m.Email, m.Phone, m.CheckIn, m.CheckOut,
		m.Guests,
		m.Amount,
		m.PromoCode, m.RazorpayOrderID, m.RazorpayPaymentID,
		m.CreatedAt,
	)
}

// toBookingModel maps a domain Booking to a BookingModel for persistence.
func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                b.ID(),
		Name:              b.Name(),
		Email:             b.Email(),
		Phone:             b.Phone(),
		CheckIn:           b.CheckIn(),
		CheckOut:          b.CheckOut(),
		Guests:            b.Guests(),
		Amount:            b.Amount(),
		PromoCode:         b.PromoCode(),
		RazorpayOrderID:   b.PaymentOrderID(),
		RazorpayPaymentID: b.PaymentID(),
		CreatedAt:         b.CreatedAt(),
	}
}
