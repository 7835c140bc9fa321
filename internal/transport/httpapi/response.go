package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"NewsImpact/internal/domain"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is returned for rejected or failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respond(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data, Message: message})
}

func badRequest(c *gin.Context, title, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: title, Message: message})
}

// fail maps use-case errors onto HTTP statuses. Invalid input becomes 400
// with the validation message; everything else is logged and reported as a
// 500 carrying title and message.
func (s *Server) fail(c *gin.Context, err error, title, message string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		badRequest(c, "Invalid input", err.Error())
		return
	}
	requestLogger(c, s.logger).Error(title, "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: title, Message: message})
}
