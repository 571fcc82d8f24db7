package health

import (
	"context"
	"errors"
	"testing"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	t.Parallel()

	okDB := pingerFunc(func(ctx context.Context) error { return nil })
	downDB := pingerFunc(func(ctx context.Context) error { return errors.New("down") })

	tests := []struct {
		name   string
		ready  bool
		db     Pinger
		wantOK bool
		want   map[string]string
	}{
		{name: "ready without db", ready: true, wantOK: true, want: map[string]string{"platform": "ok"}},
		{name: "starting", ready: false, wantOK: false, want: map[string]string{"platform": "starting"}},
		{name: "db ok", ready: true, db: okDB, wantOK: true, want: map[string]string{"platform": "ok", "database": "ok"}},
		{name: "db down", ready: true, db: downDB, wantOK: false, want: map[string]string{"platform": "ok", "database": "unreachable"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ready := tt.ready
			svc := NewService(func() bool { return ready }, tt.db)
			checks, ok := svc.Readiness(context.Background())
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			for k, v := range tt.want {
				if checks[k] != v {
					t.Fatalf("check %s = %q, want %q", k, checks[k], v)
				}
			}
		})
	}
}
