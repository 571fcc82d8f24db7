package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "resurate/internal/shared/auth"
	"resurate/internal/shared/server/middleware"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ready, loading, authed, require bool
		want                            Outcome
	}{
		{ready: true, authed: true, require: true, want: Render},
		{ready: true, authed: false, require: false, want: Render},
		{ready: true, authed: false, require: true, want: RedirectToAuth},
		{ready: true, authed: true, require: false, want: RedirectHome},
		{ready: false, authed: true, require: true, want: Wait},
		{ready: false, authed: false, require: false, want: Wait},
		{ready: true, loading: true, authed: true, require: true, want: Wait},
		{ready: true, loading: true, authed: false, require: false, want: Wait},
	}
	for _, tt := range tests {
		got := Decide(tt.ready, tt.loading, tt.authed, tt.require)
		if got != tt.want {
			t.Fatalf("Decide(ready=%v loading=%v authed=%v require=%v) = %s, want %s",
				tt.ready, tt.loading, tt.authed, tt.require, got, tt.want)
		}
	}
}

func TestSignInURL(t *testing.T) {
	if got := SignInURL("/resume/abc?x=1"); got != "/auth?next=%2Fresume%2Fabc%3Fx%3D1" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := SignInURL(""); got != "/auth?next=%2F" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/resume/1":           "/resume/1",
		"/upload?x=1":         "/upload?x=1",
		"":                    "/",
		"//evil.example.com":  "/",
		"/\\evil.example.com": "/",
		"https://evil.com":    "/",
		"resume/1":            "/",
	}
	for in, want := range tests {
		if got := SafeNext(in); got != want {
			t.Fatalf("SafeNext(%q) = %q, want %q", in, got, want)
		}
	}
}

func newGateRouter(t *testing.T, ready bool, withSession bool) (*gin.Engine, *sharedauth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := sharedauth.NewSigner("test-secret", "dev", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	gate := &Gate{Ready: func() bool { return ready }}

	r := gin.New()
	if withSession {
		r.Use(middleware.Session(signer))
	}
	ok := func(c *gin.Context) { c.String(http.StatusOK, "page") }
	r.GET("/upload", gate.Page(true), ok)
	r.GET("/auth", gate.Page(false), ok)
	r.GET("/api/v1/resumes", gate.API(), ok)
	return r, signer
}

func TestGatePage(t *testing.T) {
	router, signer := newGateRouter(t, true, true)
	token, err := signer.Sign(sharedauth.Claims{Sub: "dev:alice", Username: "alice"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		token    string
		status   int
		location string
	}{
		{name: "anonymous protected", path: "/upload?from=home", status: http.StatusFound, location: "/auth?next=%2Fupload%3Ffrom%3Dhome"},
		{name: "signed in protected", path: "/upload", token: token, status: http.StatusOK},
		{name: "anonymous auth page", path: "/auth", status: http.StatusOK},
		{name: "signed in auth page", path: "/auth", token: token, status: http.StatusFound, location: "/"},
		{name: "invalid token", path: "/upload", token: "garbage", status: http.StatusFound, location: "/auth?next=%2Fupload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tt.token})
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Fatalf("location %q, want %q", got, tt.location)
			}
		})
	}
}

func TestGateWaitsWhenNotReady(t *testing.T) {
	router, _ := newGateRouter(t, false, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 503 with Retry-After, got %d", rec.Code)
	}
	if rec.Body.String() != "Checking authentication..." {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected API 503, got %d", rec.Code)
	}
}

func TestGateWaitsWithoutSessionResolution(t *testing.T) {
	router, _ := newGateRouter(t, true, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while auth unresolved, got %d", rec.Code)
	}
}

func TestGateAPIUnauthorized(t *testing.T) {
	router, _ := newGateRouter(t, true, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "" {
		t.Fatalf("API must not redirect")
	}
}
