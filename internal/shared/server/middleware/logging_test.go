package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"resurate/internal/shared/auth"
	"resurate/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		inbound string
		reused  bool
	}{
		{name: "well formed id is logged", inbound: "req-00000001", reused: true},
		{name: "short id is replaced", inbound: "req-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			prev := telemetry.SetLogger(zap.New(core))
			defer telemetry.SetLogger(prev)

			signer := newSigner(t)
			token, _ := signer.Sign(auth.Claims{Sub: "dev:alice", Username: "alice"})

			router := gin.New()
			router.Use(RequestID(), Session(signer), Logging())
			router.GET("/test", func(c *gin.Context) {
				c.Set("resumeId", "resume-1")
				c.Set("workflowState", "done")
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("X-Request-Id", tt.inbound)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			entries := logs.FilterMessage("request.complete").All()
			if len(entries) != 1 {
				t.Fatalf("expected one request log, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			required := []string{"request_id", "user_id", "resume_id", "workflow_state", "duration_ms", "status"}
			for _, key := range required {
				if _, ok := fields[key]; !ok {
					t.Fatalf("missing log field: %s", key)
				}
			}
			if fields["user_id"] != "dev:alice" {
				t.Fatalf("unexpected user_id: %v", fields["user_id"])
			}
			if fields["resume_id"] != "resume-1" {
				t.Fatalf("unexpected resume_id: %v", fields["resume_id"])
			}

			logged, _ := fields["request_id"].(string)
			if logged != rec.Header().Get("X-Request-Id") {
				t.Fatalf("logged request_id %q differs from response header %q", logged, rec.Header().Get("X-Request-Id"))
			}
			if tt.reused {
				if logged != tt.inbound {
					t.Fatalf("unexpected request_id: %v", logged)
				}
				return
			}
			if logged == tt.inbound {
				t.Fatalf("short inbound id %q must be replaced", tt.inbound)
			}
			if _, err := uuid.Parse(logged); err != nil {
				t.Fatalf("replacement id %q is not a uuid: %v", logged, err)
			}
		})
	}
}
