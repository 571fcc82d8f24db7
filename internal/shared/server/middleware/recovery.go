package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/server/respond"
	"resurate/internal/shared/telemetry"
)

// Recovery turns a panic into a 500. API routes get the JSON error body,
// pages get a plain message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
				return
			}
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Something went wrong, please try again."))
			c.Abort()
		}()
		c.Next()
	}
}
