package application

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/greenobird/service-booking/internal/domain/booking"
)

// FlexValue accepts a JSON number, string or null and keeps its text.
// The booking page sends amount, guests and phone either way.
type FlexValue string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexValue(n.String())
	return nil
}

// ConfirmBookingRequest is the body of POST /confirm-booking.
type ConfirmBookingRequest struct {
	Name              FlexValue `json:"name"`
	Email             FlexValue `json:"email"`
	Phone             FlexValue `json:"phone"`
	CheckIn           FlexValue `json:"checkin"`
	CheckOut          FlexValue `json:"checkout"`
	Guests            FlexValue `json:"guests"`
	Amount            FlexValue `json:"amount"`
	PromoCode         string    `json:"promo_code"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
}

func (r ConfirmBookingRequest) toDomain() booking.Request {
	return booking.Request{
		Name:      string(r.Name),
		Email:     string(r.Email),
		Phone:     string(r.Phone),
		CheckIn:   string(r.CheckIn),
		CheckOut:  string(r.CheckOut),
		Guests:    string(r.Guests),
		Amount:    string(r.Amount),
		PromoCode: r.PromoCode,
		PaymentID: r.RazorpayPaymentID,
	}
}

// NotificationOutcome is advisory: a failed notification never fails the booking.
type NotificationOutcome struct {
	Sent     bool     `json:"sent"`
	Channels []string `json:"channels,omitempty"`
	Warning  string   `json:"warning,omitempty"`
}

// ConfirmBookingResponse composes the definitive booking result with the notification outcome.
type ConfirmBookingResponse struct {
	Status       string              `json:"status"`
	Message      string              `json:"message"`
	BookingID    uuid.UUID           `json:"booking_id"`
	OrderID      string              `json:"order_id,omitempty"`
	Notification NotificationOutcome `json:"notification"`
}

// CreateOrderRequest is the body of POST /create-order.
type CreateOrderRequest struct {
	Amount FlexValue `json:"amount"`
}

// BookingDTO is the API representation of a ledger entry.
type BookingDTO struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	CheckIn           string     `json:"checkin"`
	CheckOut          string     `json:"checkout"`
	Guests            int        `json:"guests"`
	Amount            int64      `json:"amount"`
	PromoCode         string     `json:"promo_code,omitempty"`
	RazorpayOrderID   string     `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string     `json:"razorpay_payment_id,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

// InvoiceDTO is a rendered invoice document.
type InvoiceDTO struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidatePromoRequest is the body of POST /validate-promo.
type ValidatePromoRequest struct {
	Code string `json:"code"`
}

// PromoValidationDTO is the result of a promo lookup.
type PromoValidationDTO struct {
	Valid    bool `json:"valid"`
	Discount int  `json:"discount"`
}

// AvailabilityDTO answers whether a stay can still be booked.
type AvailabilityDTO struct {
	CheckIn  string `json:"checkin"`
	CheckOut string `json:"checkout"`
	Free     bool   `json:"free"`
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	dto := BookingDTO{
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
	}
	if createdAt := b.CreatedAt(); !createdAt.IsZero() {
		dto.CreatedAt = &createdAt
	}
	return dto
}
