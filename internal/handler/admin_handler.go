package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/platform/response"
)

// AdminHandler serves the operator view of the ledger.
type AdminHandler struct {
	bookingService *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookingService *application.BookingService) *AdminHandler {
	return &AdminHandler{bookingService: bookingService}
}

// RegisterRoutes registers admin routes.
// TODO: put /bookings behind operator auth; it returns contact details unredacted.
func (h *AdminHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/bookings", h.ListBookings)
}

// ListBookings handles GET /bookings. A corrupt ledger is an error, never an empty list.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListBookings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bookings)
}
