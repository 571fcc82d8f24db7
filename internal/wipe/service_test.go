package wipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resurate/internal/kv"
	"resurate/internal/platform"
	"resurate/internal/shared/storage/object/local"
)

var errBoom = errors.New("boom")

// stickyFiles refuses to delete paths containing a marker.
type stickyFiles struct {
	platform.Files
	marker string
}

func (f *stickyFiles) Delete(ctx context.Context, userID, path string) error {
	if f.marker != "" && strings.Contains(path, f.marker) {
		return errBoom
	}
	return f.Files.Delete(ctx, userID, path)
}

type brokenFlushKV struct {
	platform.KV
}

func (brokenFlushKV) Flush(ctx context.Context, namespace string) error {
	return errBoom
}

func seed(t *testing.T, files platform.Files, store platform.KV, userID string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := files.Upload(context.Background(), userID, name, strings.NewReader("data")); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	if err := store.Set(context.Background(), userID, "resume:1", `{"id":"1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestRunDeletesEverything(t *testing.T) {
	files := &platform.ObjectFiles{Store: local.New(t.TempDir())}
	store := kv.NewMemoryStore()
	seed(t, files, store, "u1", "a.pdf", "a.png")
	seed(t, files, store, "u2", "other.pdf")

	svc := &Service{Files: files, KV: store}
	report, err := svc.Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Success || report.Deleted != 2 || report.Failed != 0 || len(report.Files) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := store.Get(context.Background(), "u1", "resume:1"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("expected namespace flushed, got %v", err)
	}

	others, err := svc.List(context.Background(), "u2")
	if err != nil || len(others) != 1 {
		t.Fatalf("other user's files must survive: %v %d", err, len(others))
	}
	if _, err := store.Get(context.Background(), "u2", "resume:1"); err != nil {
		t.Fatalf("other user's kv must survive: %v", err)
	}
}

func TestRunCountsDeleteFailures(t *testing.T) {
	base := &platform.ObjectFiles{Store: local.New(t.TempDir())}
	files := &stickyFiles{Files: base, marker: "stuck"}
	store := kv.NewMemoryStore()
	seed(t, files, store, "u1", "stuck.pdf", "fine.pdf", "fine.png")

	svc := &Service{Files: files, KV: store}
	report, err := svc.Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Success || report.Deleted != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Files) != 1 || !strings.HasSuffix(report.Files[0].Name, "stuck.pdf") {
		t.Fatalf("expected the stuck file to remain, got %+v", report.Files)
	}
	if _, err := store.Get(context.Background(), "u1", "resume:1"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("flush must run despite delete failures, got %v", err)
	}
}

func TestRunSurvivesFlushFailure(t *testing.T) {
	files := &platform.ObjectFiles{Store: local.New(t.TempDir())}
	store := kv.NewMemoryStore()
	seed(t, files, store, "u1", "a.pdf")

	svc := &Service{Files: files, KV: brokenFlushKV{KV: store}}
	report, err := svc.Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Success || report.Deleted != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}
