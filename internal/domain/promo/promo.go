package promo

import (
	"fmt"
	"strings"
)

// PromoCode is one row of the discount table.
type PromoCode struct {
	code            string
	discountPercent int
}

// NewPromoCode normalizes code and checks the discount.
func NewPromoCode(code string, discountPercent int) (*PromoCode, error) {
	code = Normalize(code)
	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}
	if discountPercent < 0 {
		return nil, fmt.Errorf("discount cannot be negative: %d", discountPercent)
	}
	return &PromoCode{code: code, discountPercent: discountPercent}, nil
}

// Normalize is the lookup key form of a code: trimmed and upper-cased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Matches compares against client input after normalizing it.
func (p *PromoCode) Matches(input string) bool {
	return p.code == Normalize(input)
}

func (p *PromoCode) Code() string         { return p.code }
func (p *PromoCode) DiscountPercent() int { return p.discountPercent }
