package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resurate/internal/ai"
	"resurate/internal/bootstrap"
	"resurate/internal/feedback"
	"resurate/internal/resumes"
	"resurate/internal/shared/config"
)

const user = "dev:alice"

func newTestEnv(t *testing.T) (*env, *bootstrap.App, *bytes.Buffer) {
	t.Helper()
	cfg := config.Config{
		Env:             "dev",
		LocalStoreDir:   t.TempDir(),
		ObjectStoreType: "local",
		KVStoreType:     "memory",
		AIProvider:      "none",
		AITimeout:       time.Second,
		ConvertTimeout:  time.Second,
		SessionTTL:      time.Hour,
	}
	a, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{AI: ai.Placeholder{}, SkipRouter: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out := &bytes.Buffer{}
	e := &env{
		out: out,
		build: func(ctx context.Context, _ config.Config) (*bootstrap.App, error) {
			return a, nil
		},
		confirm: func(string) (bool, error) {
			t.Fatalf("unexpected prompt")
			return false, nil
		},
	}
	return e, a, out
}

func run(t *testing.T, e *env, args ...string) error {
	t.Helper()
	e.v = newViper()
	cmd := e.root()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func seed(t *testing.T, a *bootstrap.App) {
	t.Helper()
	ctx := context.Background()
	if _, err := a.Platform.Files.Upload(ctx, user, "cv.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	rec := resumes.Record{
		ID:          "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		ResumePath:  user + "/cv.pdf",
		CompanyName: "Acme",
		JobTitle:    "Engineer",
		Feedback:    &feedback.Feedback{OverallScore: 85},
	}
	if err := a.ResumesService.Store.Save(ctx, user, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestUserRequired(t *testing.T) {
	t.Setenv("RESURATE_USER", "")
	e, _, _ := newTestEnv(t)
	if err := run(t, e, "files"); !errors.Is(err, errUserRequired) {
		t.Fatalf("expected errUserRequired, got %v", err)
	}
}

func TestUserFromEnv(t *testing.T) {
	t.Setenv("RESURATE_USER", user)
	e, a, out := newTestEnv(t)
	seed(t, a)

	if err := run(t, e, "files"); err != nil {
		t.Fatalf("files: %v", err)
	}
	if !strings.Contains(out.String(), "cv.pdf") {
		t.Fatalf("expected cv.pdf in output, got %q", out.String())
	}
}

func TestResumesListsScores(t *testing.T) {
	e, a, out := newTestEnv(t)
	seed(t, a)

	if err := run(t, e, "--user", user, "resumes"); err != nil {
		t.Fatalf("resumes: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Acme", "Engineer", "85/100", "good"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output, got %q", want, got)
		}
	}
}

func TestWipeAbortsWhenDeclined(t *testing.T) {
	e, a, out := newTestEnv(t)
	seed(t, a)
	var asked string
	e.confirm = func(label string) (bool, error) {
		asked = label
		return false, nil
	}

	if err := run(t, e, "-u", user, "wipe"); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if asked != wipeQuestion {
		t.Fatalf("unexpected prompt %q", asked)
	}
	if !strings.Contains(out.String(), "Aborted.") {
		t.Fatalf("expected abort, got %q", out.String())
	}
	items, err := a.WipeService.List(context.Background(), user)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected files untouched, got %d (%v)", len(items), err)
	}
}

func TestWipeYesSkipsPrompt(t *testing.T) {
	e, a, out := newTestEnv(t)
	seed(t, a)

	if err := run(t, e, "-u", user, "wipe", "--yes"); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted 1 file(s), 0 failed, 0 remaining.") {
		t.Fatalf("unexpected output %q", out.String())
	}
	list, err := a.ResumesService.List(context.Background(), user)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected records flushed, got %d (%v)", len(list), err)
	}
}
