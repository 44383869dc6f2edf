package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/greenobird/service-booking/internal/config"
	bookingDomain "github.com/greenobird/service-booking/internal/domain/booking"
	promoDomain "github.com/greenobird/service-booking/internal/domain/promo"
	"github.com/greenobird/service-booking/internal/platform/database"
)

// Ledger is a booking repository that can also report its health.
type Ledger interface {
	bookingDomain.Repository
	Ping(ctx context.Context) error
}

// Stores groups the repositories selected by STORAGE_DRIVER.
type Stores struct {
	Bookings Ledger
	Promos   promoDomain.PromoRepository
	// DB is nil for the file driver.
	DB *gorm.DB
}

// OpenStores opens the booking ledger and promo table for the configured driver.
func OpenStores(cfg *config.ServiceConfig, logger *zap.Logger) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := database.Connect(cfg.DBConfig.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		return &Stores{
			Bookings: NewGormBookingRepository(db),
			Promos:   NewGormPromoRepository(db),
			DB:       db,
		}, nil

	case config.StorageFile:
		ledger, err := OpenFileBookingRepository(cfg.BookingsFile, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Bookings: ledger,
			Promos:   NewCSVPromoRepository(cfg.PromoFile, logger),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Migrate creates or updates the bookings and promo_codes tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&BookingModel{}, &PromoModel{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the ledger and, for Postgres, the connection pool.
func (s *Stores) Close() error {
	return s.Bookings.Close()
}
