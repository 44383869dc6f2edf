package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/greenobird/service-booking/internal/domain"
	promoDomain "github.com/greenobird/service-booking/internal/domain/promo"
)

// PromoModel is the GORM model for the promo_codes table.
type PromoModel struct {
	Code     string `gorm:"type:varchar(50);primaryKey"`
	Discount int    `gorm:"not null;default:0"`
}

// TableName sets the table name.
func (PromoModel) TableName() string { return "promo_codes" }

// GormPromoRepository implements PromoRepository using GORM.
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository creates a new GormPromoRepository.
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// FindByCode returns a promo code by its normalized code. Codes are stored
// upper-case; see SavePromo.
func (r *GormPromoRepository) FindByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	key := promoDomain.Normalize(code)
	var model PromoModel
	if err := r.db.WithContext(ctx).Where("code = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("PromoCode", key)
		}
		return nil, domain.NewUnavailableError("promo table", err)
	}
	return promoDomain.NewPromoCode(model.Code, model.Discount)
}

// SavePromo upserts one code; used to seed the table from the CSV file.
func (r *GormPromoRepository) SavePromo(ctx context.Context, p *promoDomain.PromoCode) error {
	model := PromoModel{Code: p.Code(), Discount: p.DiscountPercent()}
	return r.db.WithContext(ctx).Save(&model).Error
}
