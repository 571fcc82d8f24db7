package resumes

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"resurate/internal/convert"
	"resurate/internal/kv"
	"resurate/internal/platform"
	"resurate/internal/shared/storage/object/local"
)

const feedbackJSON = `{
  "overallScore": 82,
  "ATS": {"score": 70, "tips": [{"type": "improve", "tip": "Add keywords"}]},
  "toneAndStyle": {"score": 85, "tips": [{"type": "good", "tip": "Clear", "explanation": "Concise sentences."}]},
  "content": {"score": 78, "tips": [{"type": "improve", "tip": "Quantify", "explanation": "Use numbers."}]},
  "structure": {"score": 90, "tips": [{"type": "good", "tip": "Readable", "explanation": ""}]},
  "skills": {"score": 55, "tips": [{"type": "improve", "tip": "Match stack", "explanation": "Mention Go."}]}
}`

var errBoom = errors.New("boom")

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake-image")

// flakyFiles fails the n-th Upload call (1-based); zero never fails.
type flakyFiles struct {
	platform.Files
	mu         sync.Mutex
	uploads    int
	failUpload int
}

func (f *flakyFiles) Upload(ctx context.Context, userID, name string, r io.Reader) (platform.FSItem, error) {
	f.mu.Lock()
	f.uploads++
	n := f.uploads
	f.mu.Unlock()
	if n == f.failUpload {
		return platform.FSItem{}, errBoom
	}
	return f.Files.Upload(ctx, userID, name, r)
}

type flakyKV struct {
	platform.KV
	failSet bool
}

func (k *flakyKV) Set(ctx context.Context, namespace, key, value string) error {
	if k.failSet {
		return errBoom
	}
	return k.KV.Set(ctx, namespace, key, value)
}

type fakeAI struct {
	calls  int
	last   platform.FeedbackRequest
	resp   *platform.ChatResponse
	err    error
	before func(req platform.FeedbackRequest)
}

func (f *fakeAI) Feedback(ctx context.Context, req platform.FeedbackRequest) (*platform.ChatResponse, error) {
	f.calls++
	f.last = req
	if f.before != nil {
		f.before(req)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func stringReply(text string) *platform.ChatResponse {
	return &platform.ChatResponse{Message: platform.ChatMessage{Role: "assistant", Content: platform.StringContent(text)}}
}

type fixture struct {
	files     *flakyFiles
	kv        *flakyKV
	ai        *fakeAI
	converts  int
	convertFn func() ([]byte, error)
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		files: &flakyFiles{Files: &platform.ObjectFiles{Store: local.New(t.TempDir())}},
		kv:    &flakyKV{KV: kv.NewMemoryStore()},
		ai:    &fakeAI{resp: stringReply(feedbackJSON)},
	}
	f.convertFn = func() ([]byte, error) { return fakePNG, nil }
	p := &platform.Platform{Files: f.files, KV: f.kv, AI: f.ai}
	conv := convert.Func(func(ctx context.Context, pdf []byte) ([]byte, error) {
		f.converts++
		return f.convertFn()
	})
	f.svc = NewService(p, conv, time.Second)
	ids := []string{
		"0b7f3c1e-9a54-4d8e-8f57-1f3b2d6c9a01",
		"0b7f3c1e-9a54-4d8e-8f57-1f3b2d6c9a02",
		"0b7f3c1e-9a54-4d8e-8f57-1f3b2d6c9a03",
	}
	next := 0
	f.svc.Workflow.NewID = func() string {
		id := ids[next%len(ids)]
		next++
		return id
	}
	return f
}
