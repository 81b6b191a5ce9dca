// Package response provides standardized JSON response helpers.
package response

import (
	app_errors "attendance-bot/internal/errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse defines the standard JSON success response structure.
type SuccessResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse defines the standard JSON error response structure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success sends a standardized success response.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Error sends a standardized error response using an APIError.
func Error(c *gin.Context, apiErr *app_errors.APIError) {
	c.JSON(apiErr.HTTPStatus, ErrorResponse{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}

// Ack sends the fixed webhook acknowledgment. The chat platform retries
// delivery on anything else, so bot endpoints must always answer with this
// shape and HTTP 200 regardless of what happened internally.
func Ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
}

// AckInternalError is the narrow catch-all for handler-level panics on the
// bot endpoints: HTTP 200 is not promised here, only a generic body.
func AckInternalError(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 500, "message": "internal error"})
}
