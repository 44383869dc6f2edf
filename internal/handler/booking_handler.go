package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/domain"
	"github.com/greenobird/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking admission, payment orders
// and invoices.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router.
func (h *BookingHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/confirm-booking", h.ConfirmBooking)
	r.POST("/create-order", h.CreateOrder)
	r.GET("/invoice/:email", h.Invoice)
}

// ConfirmBooking handles POST /confirm-booking
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	var req application.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid JSON body")
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateOrder handles POST /create-order
func (h *BookingHandler) CreateOrder(c *gin.Context) {
	var req application.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		status, body := response.Render(err)
		c.JSON(status, gin.H{"error": body.Message})
		return
	}

	response.Success(c, order)
}

// Invoice handles GET /invoice/:email
func (h *BookingHandler) Invoice(c *gin.Context) {
	invoice, err := h.service.Invoice(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.String(http.StatusNotFound, "Booking not found")
			return
		}
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.Filename+`"`)
	c.Data(http.StatusOK, invoice.ContentType, invoice.Data)
}
