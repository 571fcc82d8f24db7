package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/server/respond"
)

// Outcome is what a guarded route should do.
type Outcome int

const (
	Render Outcome = iota
	RedirectToAuth
	RedirectHome
	Wait
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectToAuth:
		return "redirect_auth"
	case RedirectHome:
		return "redirect_home"
	default:
		return "wait"
	}
}

// Decide resolves a route guard. A route renders only when the platform is
// ready, auth resolution has finished and the caller's state matches what the
// route requires.
func Decide(ready, loading, authenticated, requireAuth bool) Outcome {
	if !ready || loading {
		return Wait
	}
	switch {
	case requireAuth == authenticated:
		return Render
	case requireAuth:
		return RedirectToAuth
	default:
		return RedirectHome
	}
}

// SignInURL is the auth page that returns to requestURI after sign-in.
func SignInURL(requestURI string) string {
	if requestURI == "" {
		requestURI = "/"
	}
	return "/auth?next=" + url.QueryEscape(requestURI)
}

// Gate applies Decide to gin routes.
type Gate struct {
	// Ready reports platform readiness.
	Ready func() bool
	// Loading renders the page shown while Decide says Wait.
	Loading gin.HandlerFunc
}

func (g *Gate) outcome(c *gin.Context, requireAuth bool) Outcome {
	ready := g.Ready == nil || g.Ready()
	loading := !middleware.SessionResolved(c)
	return Decide(ready, loading, middleware.IsAuthenticated(c), requireAuth)
}

// Page guards an HTML route. requireAuth false marks anonymous-only pages.
func (g *Gate) Page(requireAuth bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch g.outcome(c, requireAuth) {
		case Render:
			c.Next()
		case RedirectToAuth:
			c.Redirect(http.StatusFound, SignInURL(c.Request.URL.RequestURI()))
			c.Abort()
		case RedirectHome:
			c.Redirect(http.StatusFound, "/")
			c.Abort()
		default:
			c.Header("Retry-After", "1")
			if g.Loading != nil {
				g.Loading(c)
			} else {
				c.Data(http.StatusServiceUnavailable, "text/plain; charset=utf-8", []byte("Checking authentication..."))
			}
			c.Abort()
		}
	}
}

// API guards JSON routes that need a signed-in user.
func (g *Gate) API() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch g.outcome(c, true) {
		case Render:
			c.Next()
		case Wait:
			c.Header("Retry-After", "1")
			respond.Error(c, http.StatusServiceUnavailable, "not_ready", "service is starting", nil)
		default:
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
		}
	}
}
