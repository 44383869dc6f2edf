package booking

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greenobird/service-booking/internal/domain"
)

// Request is the untrusted client input for one booking, as raw text.
// Amount and Guests arrive as JSON numbers or strings and are coerced here.
type Request struct {
	Name      string
	Email     string
	Phone     string
	CheckIn   string
	CheckOut  string
	Guests    string
	Amount    string
	PromoCode string
	PaymentID string
}

// Booking is one confirmed entry of the ledger. It is never mutated after persistence.
type Booking struct {
	id             uuid.UUID
	name           string
	email          string
	phone          string
	checkIn        string
	checkOut       string
	guests         int
	amount         int64
	promoCode      string
	paymentOrderID string
	paymentID      string
	createdAt      time.Time
}

// NewBooking validates a request in admission order (fields, dates, amount)
// and returns a booking that has not yet been attached to a payment order.
func NewBooking(req Request) (*Booking, error) {
	required := []struct{ field, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
		{"checkin", req.CheckIn},
		{"checkout", req.CheckOut},
		{"guests", req.Guests},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, domain.NewValidationError(r.field, "Missing: "+r.field)
		}
	}
	if !strings.Contains(req.Email, "@") {
		return nil, domain.NewValidationError("email", "Invalid email")
	}
	guests, err := parseGuests(req.Guests)
	if err != nil {
		return nil, err
	}

	if _, err := ParseStay(req.CheckIn, req.CheckOut); err != nil {
		var dateErr *DateError
		if errors.As(err, &dateErr) {
			return nil, domain.NewValidationError(dateErr.Field, "Dates must be in YYYY-MM-DD format")
		}
		return nil, domain.NewValidationError("checkout", "Checkout must be after checkin")
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:        uuid.New(),
		name:      req.Name,
		email:     req.Email,
		phone:     req.Phone,
		checkIn:   req.CheckIn,
		checkOut:  req.CheckOut,
		guests:    guests,
		amount:    amount,
		promoCode: strings.ToUpper(strings.TrimSpace(req.PromoCode)),
		paymentID: req.PaymentID,
		createdAt: time.Now().UTC(),
	}, nil
}

// ParseAmount coerces a client amount to whole rupees, truncating any fraction.
// An empty value means no amount was sent and counts as zero.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/100 {
		return 0, domain.NewValidationError("amount", "Invalid amount")
	}
	amount := int64(f)
	if amount < 0 {
		return 0, domain.NewValidationError("amount", "Amount must be non-negative")
	}
	return amount, nil
}

func parseGuests(raw string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, domain.NewValidationError("guests", "Guests must be a positive integer")
	}
	return int(f), nil
}

// AttachOrder records the gateway order created for this booking. It may happen once.
func (b *Booking) AttachOrder(orderID string) error {
	if b.paymentOrderID != "" {
		return domain.NewConflictError("payment order already attached")
	}
	b.paymentOrderID = orderID
	return nil
}

// Stay parses the stored dates. Records loaded from an old ledger may fail here.
func (b *Booking) Stay() (Stay, error) {
	return ParseStay(b.checkIn, b.checkOut)
}

// MatchesEmail compares emails case-insensitively.
func (b *Booking) MatchesEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(b.email), strings.TrimSpace(email))
}

// Getters.
func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) Name() string           { return b.name }
func (b *Booking) Email() string          { return b.email }
func (b *Booking) Phone() string          { return b.phone }
func (b *Booking) CheckIn() string        { return b.checkIn }
func (b *Booking) CheckOut() string       { return b.checkOut }
func (b *Booking) Guests() int            { return b.guests }
func (b *Booking) Amount() int64          { return b.amount }
func (b *Booking) PromoCode() string      { return b.promoCode }
func (b *Booking) PaymentOrderID() string { return b.paymentOrderID }
func (b *Booking) PaymentID() string      { return b.paymentID }
func (b *Booking) CreatedAt() time.Time   { return b.createdAt }

// Reconstitute rebuilds a Booking from persisted data without validation.
func Reconstitute(
	id uuid.UUID,
	name, email, phone, checkIn, checkOut string,
	guests int,
	amount int64,
	promoCode, paymentOrderID, paymentID string,
	createdAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		name:           name,
		email:          email,
		phone:          phone,
		checkIn:        checkIn,
		checkOut:       checkOut,
		guests:         guests,
		amount:         amount,
		promoCode:      promoCode,
		paymentOrderID: paymentOrderID,
		paymentID:      paymentID,
		createdAt:      createdAt,
	}
}
