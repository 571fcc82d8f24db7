package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "resurate/internal/shared/auth"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/users"
)

func newSessions(t *testing.T) (*Sessions, *users.MemoryRepo) {
	t.Helper()
	signer, err := sharedauth.NewSigner("test-secret", "dev", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	repo := users.NewMemoryRepo()
	return &Sessions{Auth: signer, Users: users.NewService(repo), TTL: time.Hour}, repo
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestDevSignIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, repo := newSessions(t)
	router := gin.New()
	(&FormHandler{Sessions: sessions, DevSignIn: true}).RegisterRoutes(router)

	rec := postForm(router, "/auth/dev", url.Values{"username": {"Alice"}, "next": {"/resume/1"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/resume/1" {
		t.Fatalf("unexpected redirect %q", loc)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookie)
	}

	claims, err := sessions.Auth.Verify(cookie.Value)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "dev:alice" || claims.Username != "Alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := repo.GetByID(context.Background(), "dev:alice"); err != nil {
		t.Fatalf("expected user persisted: %v", err)
	}
}

func TestDevSignInRejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, _ := newSessions(t)
	router := gin.New()
	(&FormHandler{Sessions: sessions, DevSignIn: true}).RegisterRoutes(router)

	rec := postForm(router, "/auth/dev", url.Values{"username": {"../../etc"}})
	if rec.Code != http.StatusBadRequest || sessionCookie(rec) != nil {
		t.Fatalf("expected 400 without cookie, got %d", rec.Code)
	}

	rec = postForm(router, "/auth/dev", url.Values{"username": {"bob"}, "next": {"//evil.example.com"}})
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected open redirect to be dropped, got %q", loc)
	}
}

func TestDevSignInDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, _ := newSessions(t)
	router := gin.New()
	(&FormHandler{Sessions: sessions}).RegisterRoutes(router)

	rec := postForm(router, "/auth/dev", url.Values{"username": {"alice"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when disabled, got %d", rec.Code)
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions, _ := newSessions(t)
	router := gin.New()
	(&FormHandler{Sessions: sessions}).RegisterRoutes(router)

	rec := postForm(router, "/auth/sign-out", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookie)
	}
}
