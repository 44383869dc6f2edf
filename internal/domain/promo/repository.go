package promo

import "context"

// PromoRepository answers point lookups against the discount table.
type PromoRepository interface {
	// FindByCode returns the code or a not-found DomainError. Any other error
	// means the table itself could not be read.
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
}
