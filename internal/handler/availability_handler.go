package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/platform/response"
)

// AvailabilityHandler serves the booking calendar.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers the calendar routes.
func (h *AvailabilityHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/booked-dates", h.BookedDates)
	r.GET("/availability", h.Availability)
}

// BookedDates handles GET /booked-dates
func (h *AvailabilityHandler) BookedDates(c *gin.Context) {
	response.Success(c, h.service.BookedDates(c.Request.Context()))
}

// Availability handles GET /availability?checkin=&checkout=
func (h *AvailabilityHandler) Availability(c *gin.Context) {
	result, err := h.service.IsRangeFree(c.Request.Context(), c.Query("checkin"), c.Query("checkout"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
