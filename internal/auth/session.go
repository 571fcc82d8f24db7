// Package auth signs users in, keeps their session cookie and guards routes.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resurate/internal/platform"
	sharedauth "resurate/internal/shared/auth"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/telemetry"
	"resurate/internal/users"
)

// Sessions issues and clears the browser session.
type Sessions struct {
	Auth   platform.Auth
	Users  *users.Service
	TTL    time.Duration
	Secure bool
}

// Issue persists the user and sets the session cookie.
func (s *Sessions) Issue(c *gin.Context, user users.User) error {
	if err := s.upsert(c.Request.Context(), user); err != nil {
		return err
	}
	token, err := s.Auth.Sign(sharedauth.Claims{
		Sub:      user.ID,
		Username: user.Username,
		Email:    user.Email,
		Picture:  user.PictureURL,
	})
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(s.ttl().Seconds()), "/", "", s.Secure, true)
	telemetry.Info("auth.signed_in", map[string]any{"user_id": user.ID})
	return nil
}

// Clear removes the session cookie.
func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", s.Secure, true)
}

func (s *Sessions) upsert(ctx context.Context, user users.User) error {
	if s.Users == nil {
		return nil
	}
	_, err := s.Users.UpsertFromAuth(ctx, user)
	return err
}

func (s *Sessions) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}

// SafeNext returns next when it is a local path, otherwise "/".
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
