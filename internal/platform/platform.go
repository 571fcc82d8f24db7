// Package platform groups the capabilities the application consumes: session
// auth, per-user file storage, a per-user key-value store, and AI inference.
// A *Platform is constructed once at startup and handed to every service.
package platform

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"resurate/internal/shared/auth"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Auth issues and verifies session tokens.
type Auth interface {
	Sign(claims auth.Claims) (string, error)
	Verify(token string) (auth.Claims, error)
}

// FSItem describes a stored file.
type FSItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Files is per-user file storage.
type Files interface {
	Upload(ctx context.Context, userID, name string, r io.Reader) (FSItem, error)
	Read(ctx context.Context, userID, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, userID, path string) error
	ReadDir(ctx context.Context, userID string) ([]FSItem, error)
}

// KVEntry is a stored key-value pair.
type KVEntry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// KV is a string key-value store partitioned by user namespace.
type KV interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	List(ctx context.Context, namespace, prefix string) ([]KVEntry, error)
	Flush(ctx context.Context, namespace string) error
}

// AI produces résumé feedback for a stored file.
type AI interface {
	Feedback(ctx context.Context, req FeedbackRequest) (*ChatResponse, error)
}

// FeedbackRequest asks the model to review the file at Path.
type FeedbackRequest struct {
	UserID       string
	Path         string
	Instructions string
}

// Platform bundles the capabilities with a readiness flag.
type Platform struct {
	Auth  Auth
	Files Files
	KV    KV
	AI    AI

	ready atomic.Bool
}

// Ready reports whether every capability finished initializing.
func (p *Platform) Ready() bool {
	return p != nil && p.ready.Load()
}

// MarkReady flips the readiness flag once all capabilities are wired.
func (p *Platform) MarkReady() {
	p.ready.Store(true)
}

// Validate checks that every capability is present.
func (p *Platform) Validate() error {
	switch {
	case p == nil:
		return errors.New("platform is nil")
	case p.Auth == nil:
		return errors.New("platform auth not configured")
	case p.Files == nil:
		return errors.New("platform files not configured")
	case p.KV == nil:
		return errors.New("platform kv not configured")
	case p.AI == nil:
		return errors.New("platform ai not configured")
	}
	return nil
}
