package wipe

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/wipe", h.wipe)
}

type wipeRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) wipe(c *gin.Context) {
	var req wipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if !req.Confirm {
		respond.Error(c, http.StatusBadRequest, "validation_error", "confirm must be true", nil)
		return
	}

	report, err := h.Svc.Run(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to wipe data", nil)
		return
	}
	respond.OK(c, report)
}
