// Package ai holds provider-independent pieces of résumé review: the prompt,
// a placeholder client and timeout handling. Providers live in subpackages.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"resurate/internal/platform"
	"resurate/internal/shared/telemetry"
)

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("ai provider not configured")

// MaxFileBytes bounds the document size sent to a provider.
const MaxFileBytes = 10 << 20

// Placeholder rejects every request. It keeps the service usable without
// provider credentials.
type Placeholder struct{}

func (Placeholder) Feedback(ctx context.Context, req platform.FeedbackRequest) (*platform.ChatResponse, error) {
	return nil, ErrNotConfigured
}

// WithTimeout bounds each Feedback call.
func WithTimeout(client platform.AI, d time.Duration) platform.AI {
	if d <= 0 {
		return client
	}
	return &timeoutClient{next: client, timeout: d}
}

type timeoutClient struct {
	next    platform.AI
	timeout time.Duration
}

func (t *timeoutClient) Feedback(ctx context.Context, req platform.FeedbackRequest) (*platform.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	start := time.Now()
	resp, err := t.next.Feedback(ctx, req)
	fields := map[string]any{
		"user_id":     req.UserID,
		"path":        req.Path,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("ai.feedback_failed", fields)
		return nil, err
	}
	telemetry.Info("ai.feedback", fields)
	return resp, nil
}

// ReadFile loads a user's stored document, capped at MaxFileBytes.
func ReadFile(ctx context.Context, files platform.Files, userID, path string) ([]byte, error) {
	rc, err := files.Read(ctx, userID, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxFileBytes {
		return nil, fmt.Errorf("read %s: file exceeds %d bytes", path, MaxFileBytes)
	}
	return data, nil
}
