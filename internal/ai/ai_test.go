package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resurate/internal/platform"
)

func TestPrepareInstructionsIncludesJob(t *testing.T) {
	got := PrepareInstructions(" Backend Engineer ", "Go, Postgres and Kubernetes")
	for _, want := range []string{
		"The job title is: Backend Engineer",
		"Go, Postgres and Kubernetes",
		`"overallScore"`,
		`"toneAndStyle"`,
		"JSON object only",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("instructions missing %q:\n%s", want, got)
		}
	}
}

func TestPrepareInstructionsOmitsEmptyJob(t *testing.T) {
	got := PrepareInstructions("", "")
	if strings.Contains(got, "The job title is") || strings.Contains(got, "The job description is") {
		t.Fatalf("expected job lines omitted:\n%s", got)
	}
}

type slowAI struct{}

func (slowAI) Feedback(ctx context.Context, req platform.FeedbackRequest) (*platform.ChatResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeoutCancels(t *testing.T) {
	client := WithTimeout(slowAI{}, 10*time.Millisecond)
	_, err := client.Feedback(context.Background(), platform.FeedbackRequest{UserID: "u", Path: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPlaceholder(t *testing.T) {
	if _, err := (Placeholder{}).Feedback(context.Background(), platform.FeedbackRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
