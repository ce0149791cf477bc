package respond

import (
	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/telemetry"
)

// ErrorResponse is the standardized failure body: a human-readable message
// plus a success flag, as consumed by the frontend.
type ErrorResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// SuccessResponse is the standardized success envelope for mutation endpoints.
type SuccessResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Error sends a standardized error response. The code is logged, not exposed.
func Error(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Message: message,
		Success: false,
	})
}

// Success sends a message-plus-flag body for endpoints that mutate state.
func Success(c *gin.Context, status int, message string) {
	JSON(c, status, SuccessResponse{Message: message, Success: true})
}
