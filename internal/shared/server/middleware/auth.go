package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/auth"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	resolvedKey    = "sessionResolved"

	// SessionCookie holds the signed session token for browser clients.
	SessionCookie = "resurate_session"
)

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Session resolves the caller's identity from a bearer token or the session
// cookie. Anonymous and invalid credentials both leave the request
// unauthenticated; route guards decide what to do with that.
func Session(signer TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		c.Set(resolvedKey, true)

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}
		if token == "" || signer == nil {
			c.Next()
			return
		}

		claims, err := signer.Verify(token)
		if err != nil {
			c.Set("sessionInvalid", true)
			c.Next()
			return
		}

		c.Set(userIDKey, claims.Sub)
		c.Set(userNameKey, claims.Username)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Picture != "" {
			c.Set(userPictureKey, claims.Picture)
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}

// SessionResolved reports whether Session has run for this request.
func SessionResolved(c *gin.Context) bool {
	return c.GetBool(resolvedKey)
}

// IsAuthenticated reports whether Session resolved a user for this request.
func IsAuthenticated(c *gin.Context) bool {
	return UserIDFromContext(c) != ""
}

// UserIDFromContext fetches the user ID set by the session middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the session middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the username set by the session middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the session middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
