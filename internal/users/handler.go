package users

import (
	"errors"
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

// RegisterRoutes attaches /me. It reports the Auth State rather than failing for
// anonymous callers so pages can decide where to send them.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.OK(c, gin.H{"isAuthenticated": false, "user": nil})
		return
	}

	profile := gin.H{
		"id":       userID,
		"username": middleware.UserNameFromContext(c),
	}
	if h.Svc != nil {
		user, err := h.Svc.GetByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			profile["username"] = user.Username
			profile["email"] = user.Email
			profile["pictureUrl"] = user.PictureURL
			profile["provider"] = user.Provider
			profile["lastSignInAt"] = user.LastSignInAt
		case errors.Is(err, ErrNotFound):
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
			return
		}
	}
	respond.OK(c, gin.H{"isAuthenticated": true, "user": profile})
}
