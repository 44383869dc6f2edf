package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenobird/service-booking/internal/domain"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError("email", "Invalid email"), http.StatusBadRequest},
		{"not found", domain.NewNotFoundError("Booking", "a@example.com"), http.StatusNotFound},
		{"conflict", domain.NewConflictError("Selected dates are already booked"), http.StatusConflict},
		{"gateway", domain.NewGatewayError("Authentication failed", errors.New("status 401")), http.StatusBadGateway},
		{"corrupt", domain.NewStoreCorruptError("bookings.json", errors.New("EOF")), http.StatusInternalServerError},
		{"unavailable", domain.NewUnavailableError("booking store", errors.New("disk full")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("admit: %w", domain.NewConflictError("taken")), http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := Render(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, "error", body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestRender_HidesCauses(t *testing.T) {
	_, body := Render(domain.NewUnavailableError("booking store", errors.New("open /srv/secret/bookings.json: permission denied")))
	assert.Equal(t, "booking store unavailable", body.Message)

	_, body = Render(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", body.Message)
}

func TestRender_CarriesField(t *testing.T) {
	_, body := Render(domain.NewValidationError("checkout", "Checkout must be after checkin"))
	assert.Equal(t, "checkout", body.Field)
}
