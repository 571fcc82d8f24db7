package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNormalizeKVType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		db   string
		want string
	}{
		{name: "explicit memory wins over db", raw: "memory", db: "postgres://x", want: "memory"},
		{name: "explicit pg", raw: "pg", want: "postgres"},
		{name: "default with db", db: "postgres://x", want: "postgres"},
		{name: "default without db", want: "memory"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeKVType(tt.raw, tt.db); got != tt.want {
				t.Fatalf("normalizeKVType(%q, %q) = %q, want %q", tt.raw, tt.db, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("AI_PROVIDER", "google")
	t.Setenv("AI_TIMEOUT", "bogus")
	t.Setenv("RATE_LIMIT_UPLOADS_PER_MIN", "3")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if cfg.AIProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.AIProvider)
	}
	if cfg.AITimeout != 120*time.Second {
		t.Fatalf("expected default AI timeout, got %v", cfg.AITimeout)
	}
	if cfg.UploadsPerMinute != 3 {
		t.Fatalf("expected 3 uploads per minute, got %v", cfg.UploadsPerMinute)
	}
	if cfg.DevSignIn() {
		t.Fatalf("dev sign-in must be disabled in production")
	}
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RESURATE_TEST_A=from-file\nRESURATE_TEST_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("RESURATE_TEST_A", "from-env")
	t.Cleanup(func() { os.Unsetenv("RESURATE_TEST_B") })

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("RESURATE_TEST_A"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("RESURATE_TEST_B"); got != "quoted" {
		t.Fatalf("expected quoted value unwrapped, got %q", got)
	}
}
