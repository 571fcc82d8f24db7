package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health and readiness checks.
type Service struct {
	// Ready reports whether the platform capabilities are wired.
	Ready func() bool
	// DB is checked when set.
	DB      Pinger
	Timeout time.Duration
}

// NewService constructs a new health service.
func NewService(ready func() bool, db Pinger) *Service {
	return &Service{Ready: ready, DB: db, Timeout: 2 * time.Second}
}

// Status returns a simple liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Readiness runs every check and reports whether all passed.
func (s *Service) Readiness(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{"platform": "ok"}
	ok := true

	if s.Ready != nil && !s.Ready() {
		checks["platform"] = "starting"
		ok = false
	}
	if s.DB != nil {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			checks["database"] = "unreachable"
			ok = false
		} else {
			checks["database"] = "ok"
		}
	}
	return checks, ok
}
