package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"
)

type nopDriver struct{}

func (nopDriver) Open(name string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nil, errors.New("not supported") }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type downConn struct{ nopConn }

func (downConn) Ping(ctx context.Context) error { return driver.ErrBadConn }

type downDriver struct{}

func (downDriver) Open(name string) (driver.Conn, error) { return downConn{}, nil }

var registerOnce sync.Once

func useDriver(t *testing.T, name string) {
	t.Helper()
	registerOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
		sql.Register("dbdown", downDriver{})
	})
	prev := openDB
	openDB = func(_, dsn string) (*sql.DB, error) {
		return sql.Open(name, dsn)
	}
	t.Cleanup(func() { openDB = prev })
}

func TestDefaultsPerProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		profile Profile
		maxOpen int
	}{
		{profile: ProfileServer, maxOpen: 10},
		{profile: ProfileCLI, maxOpen: 2},
		{profile: ProfileMigrate, maxOpen: 1},
		{profile: Profile("unknown"), maxOpen: 10},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.profile), func(t *testing.T) {
			t.Parallel()
			if got := Defaults(tt.profile).MaxOpenConns; got != tt.maxOpen {
				t.Fatalf("Defaults(%q).MaxOpenConns = %d, want %d", tt.profile, got, tt.maxOpen)
			}
		})
	}
}

func TestOpenAppliesEnvOverrides(t *testing.T) {
	useDriver(t, "dbtest")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "bogus")

	opts := Defaults(ProfileServer).FromEnv()
	if opts.MaxIdleConns != 3 || opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("overrides not applied: %+v", opts)
	}
	if opts.PingTimeout != 5*time.Second {
		t.Fatalf("invalid duration must keep the default, got %s", opts.PingTimeout)
	}

	pool, err := Open(context.Background(), "postgres://ignored", ProfileServer)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()
	if got := pool.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", Defaults(ProfileCLI)); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestConnectFailsWhenPingFails(t *testing.T) {
	useDriver(t, "dbdown")
	if _, err := Connect(context.Background(), "postgres://ignored", Defaults(ProfileCLI)); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestRunMigrationsNilDB(t *testing.T) {
	v, err := RunMigrations(context.Background(), nil)
	if err != nil || v != 0 {
		t.Fatalf("expected no-op, got %d, %v", v, err)
	}
}
