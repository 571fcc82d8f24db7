package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"resurate/internal/platform"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tick := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	if _, err := store.Get(ctx, "alice", "resume:1"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, key := range []string{"resume:1", "resume:2", "other:1"} {
		if err := store.Set(ctx, "alice", key, "v-"+key); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := store.Set(ctx, "bob", "resume:9", "bob"); err != nil {
		t.Fatalf("set bob: %v", err)
	}

	got, err := store.Get(ctx, "alice", "resume:1")
	if err != nil || got != "v-resume:1" {
		t.Fatalf("unexpected get %q %v", got, err)
	}

	entries, err := store.List(ctx, "alice", "resume:")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "resume:2" || entries[1].Key != "resume:1" {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	if err := store.Flush(ctx, "alice"); err != nil {
		t.Fatalf("flush: %v", err)
	}
	entries, _ = store.List(ctx, "alice", "")
	if len(entries) != 0 {
		t.Fatalf("expected empty namespace after flush, got %d", len(entries))
	}
	if v, err := store.Get(ctx, "bob", "resume:9"); err != nil || v != "bob" {
		t.Fatalf("flush must not touch other namespaces: %q %v", v, err)
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	if err := NewMemoryStore().Set(context.Background(), "alice", "", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
