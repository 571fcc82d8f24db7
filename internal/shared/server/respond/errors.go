package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/telemetry"
)

// ErrorBody is the error object every API failure carries.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// contextTags are gin keys copied into the http.error log line when set.
var contextTags = map[string]string{
	"requestId":     "request_id",
	"userId":        "user_id",
	"resumeId":      "resume_id",
	"workflowState": "workflow_state",
}

// Error aborts with a JSON error body. Client errors log at warn, server
// errors at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":  status,
		"code":    code,
		"message": message,
		"path":    c.Request.URL.Path,
		"method":  c.Request.Method,
	}
	for key, field := range contextTags {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
