// Package files exposes the caller's stored files over HTTP.
package files

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resurate/internal/platform"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/server/respond"
	"resurate/internal/shared/storage/object"
	"resurate/internal/shared/telemetry"
)

// Handler lists and streams files.
type Handler struct {
	Files platform.Files
}

func NewHandler(files platform.Files) *Handler {
	return &Handler{Files: files}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files", h.list)
	rg.GET("/files/content", h.content)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Files.ReadDir(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list files", nil)
		return
	}
	respond.OK(c, gin.H{"files": items})
}

func (h *Handler) content(c *gin.Context) {
	filePath := strings.TrimSpace(c.Query("path"))
	if filePath == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "path is required", nil)
		return
	}

	rc, err := h.Files.Read(c.Request.Context(), middleware.UserIDFromContext(c), filePath)
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrNotFound), errors.Is(err, platform.ErrForbidden):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		}
		return
	}
	defer rc.Close()

	head, body, err := object.Sniff(rc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		return
	}

	c.Header("Content-Type", object.MimeType(filePath, head))
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		telemetry.Warn("files.stream_failed", map[string]any{"path": filePath, "error": err})
	}
}
