package auth

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"resurate/internal/users"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidUsername reports whether name can be used for a development sign-in.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// FormHandler serves the form posts of the sign-in page.
type FormHandler struct {
	Sessions *Sessions
	// DevSignIn enables the username form outside production.
	DevSignIn bool
	// OnError renders a sign-in failure for the given status.
	OnError func(c *gin.Context, status int, message string)
}

// RegisterRoutes attaches the dev sign-in and sign-out routes. Dev sign-in is
// registered only when enabled; guards run before it.
func (h *FormHandler) RegisterRoutes(r gin.IRoutes, devGuards ...gin.HandlerFunc) {
	if h.DevSignIn {
		r.POST("/auth/dev", append(devGuards, h.devSignIn)...)
	}
	r.POST("/auth/sign-out", h.signOut)
}

func (h *FormHandler) devSignIn(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	if !ValidUsername(username) {
		h.fail(c, http.StatusBadRequest, "Username must be 1-64 letters, digits, dots, dashes or underscores.")
		return
	}
	user := users.User{ID: "dev:" + strings.ToLower(username), Username: username}
	if err := h.Sessions.Issue(c, user); err != nil {
		h.fail(c, http.StatusInternalServerError, "Sign-in failed, please try again.")
		return
	}
	c.Redirect(http.StatusSeeOther, SafeNext(c.PostForm("next")))
}

func (h *FormHandler) signOut(c *gin.Context) {
	h.Sessions.Clear(c)
	c.Redirect(http.StatusSeeOther, "/auth")
}

func (h *FormHandler) fail(c *gin.Context, status int, message string) {
	if h.OnError != nil {
		h.OnError(c, status, message)
		c.Abort()
		return
	}
	c.String(status, message)
	c.Abort()
}
