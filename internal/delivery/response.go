package delivery

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Error   string      `json:"error,omitempty"`
	Token   string      `json:"token,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListResponse carries a count alongside the data, per the listing contract.
func ListResponse(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "not found") {
		return http.StatusNotFound
	}
	if strings.Contains(errMsg, "already exists") || strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint") {
		return http.StatusConflict
	}
	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "cannot be empty") ||
		strings.Contains(errMsg, "must be positive") || strings.Contains(errMsg, "cannot be negative") ||
		strings.Contains(errMsg, "constraint violation") || strings.Contains(errMsg, "is required") ||
		strings.Contains(errMsg, "at least one item") || strings.Contains(errMsg, "insufficient stock") {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
