package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenobird/service-booking/internal/domain"
)

// Body is the structured envelope every non-binary endpoint answers with.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Success writes 200 with the given payload as-is.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// BadRequest writes a 400 error envelope.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Body{Status: "error", Message: message})
}

// Error maps a domain error kind to an HTTP status and writes the client-safe message.
// Causes are never rendered.
func Error(c *gin.Context, err error) {
	status, body := Render(err)
	c.JSON(status, body)
}

// Render returns the status code and envelope for err without writing it.
func Render(err error) (int, Body) {
	var domErr *domain.DomainError
	if !errors.As(err, &domErr) {
		return http.StatusInternalServerError, Body{Status: "error", Message: "internal server error"}
	}

	body := Body{Status: "error", Message: domErr.Message, Field: domErr.Field}
	switch {
	case errors.Is(domErr, domain.ErrValidation):
		return http.StatusBadRequest, body
	case errors.Is(domErr, domain.ErrNotFound):
		return http.StatusNotFound, body
	case errors.Is(domErr, domain.ErrConflict):
		return http.StatusConflict, body
	case errors.Is(domErr, domain.ErrGateway):
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}
