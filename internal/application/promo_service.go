package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
	promoDomain "github.com/greenobird/service-booking/internal/domain/promo"
)

// PromoService handles promo code use cases.
type PromoService struct {
	repo   promoDomain.PromoRepository
	logger *zap.Logger
}

// NewPromoService creates a new PromoService.
func NewPromoService(repo promoDomain.PromoRepository, logger *zap.Logger) *PromoService {
	return &PromoService{repo: repo, logger: logger}
}

// ValidatePromo looks the code up. An unknown code is a negative result, not an
// error; only a failure to read the table is returned as an error.
func (s *PromoService) ValidatePromo(ctx context.Context, req ValidatePromoRequest) (*PromoValidationDTO, error) {
	if promoDomain.Normalize(req.Code) == "" {
		return &PromoValidationDTO{Valid: false, Discount: 0}, nil
	}

	promo, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &PromoValidationDTO{Valid: false, Discount: 0}, nil
		}
		s.logger.Error("promo table lookup failed", zap.Error(err))
		return nil, err
	}

	return &PromoValidationDTO{Valid: true, Discount: promo.DiscountPercent()}, nil
}
