package files

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resurate/internal/platform"
	"resurate/internal/shared/storage/object/local"
)

func newRouter(files platform.Files, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(files).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestContentStreamsOwnFile(t *testing.T) {
	files := &platform.ObjectFiles{Store: local.New(t.TempDir())}
	item, err := files.Upload(context.Background(), "u1", "cv.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	rec := httptest.NewRecorder()
	newRouter(files, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ContentURL(item.Path), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.String() != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	newRouter(files, "u2").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ContentURL(item.Path), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected other user to get 404, got %d", rec.Code)
	}
}

func TestContentRequiresPath(t *testing.T) {
	files := &platform.ObjectFiles{Store: local.New(t.TempDir())}
	rec := httptest.NewRecorder()
	newRouter(files, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ContentPath, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListFiles(t *testing.T) {
	files := &platform.ObjectFiles{Store: local.New(t.TempDir())}
	if _, err := files.Upload(context.Background(), "u1", "a.png", strings.NewReader("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	rec := httptest.NewRecorder()
	newRouter(files, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "a.png") {
		t.Fatalf("unexpected listing %d %s", rec.Code, rec.Body.String())
	}
}
