package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/platform/response"
)

// PromoHandler handles HTTP requests for promo code operations.
type PromoHandler struct {
	service *application.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service *application.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes registers all promo routes.
func (h *PromoHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/validate-promo", h.ValidatePromo)
}

// ValidatePromo handles POST /validate-promo
func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	var req application.ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid JSON body")
		return
	}

	result, err := h.service.ValidatePromo(c.Request.Context(), req)
	if err != nil {
		_, body := response.Render(err)
		c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "error": body.Message})
		return
	}

	response.Success(c, result)
}
