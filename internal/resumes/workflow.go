package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resurate/internal/ai"
	"resurate/internal/convert"
	"resurate/internal/feedback"
	"resurate/internal/platform"
	"resurate/internal/shared/metrics"
	"resurate/internal/shared/telemetry"
)

// State is a step of the upload workflow.
type State string

const (
	StateIdle           State = "idle"
	StateUploading      State = "uploading"
	StateConverting     State = "converting"
	StateUploadingImage State = "uploading_image"
	StatePersisting     State = "persisting"
	StateInferring      State = "inferring"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Status texts shown to the user while the workflow runs.
const (
	StatusUploading      = "Uploading the file..."
	StatusConverting     = "Converting to image..."
	StatusUploadingImage = "Uploading the image..."
	StatusPersisting     = "Preparing data..."
	StatusInferring      = "Analyzing..."
	StatusDone           = "Analysis complete, redirecting..."

	StatusUploadFailed  = "Error: Failed to upload file"
	StatusConvertFailed = "Error: Failed to convert PDF to image"
	StatusImageFailed   = "Error: Failed to upload image"
	StatusPersistFailed = "Error: Failed to save resume data"
	StatusAnalyzeFailed = "Error: Failed to analyze resume"
	StatusParseFailed   = "Error: Failed to parse feedback"
)

// Observer is told about every state transition.
type Observer func(state State, status string)

// Result is the outcome of one workflow run. ID is set once the record has
// been persisted, even if a later step failed.
type Result struct {
	ID       string
	State    State
	FailedAt State
	Status   string
	Err      error
}

// OK reports whether the workflow reached Done.
func (r Result) OK() bool {
	return r.State == StateDone
}

// Workflow runs upload, conversion, persistence and inference in order.
// Any failure halts the run; earlier uploads are not rolled back.
type Workflow struct {
	Files          platform.Files
	AI             platform.AI
	Converter      convert.Converter
	Store          *Store
	ConvertTimeout time.Duration
	NewID          func() string
	Now            func() time.Time
}

type run struct {
	userID   string
	state    State
	observer Observer
}

func (r *run) enter(state State, status string) {
	r.state = state
	telemetry.Info("resume.workflow.state", map[string]any{
		"user_id": r.userID,
		"state":   string(state),
		"status":  status,
	})
	if r.observer != nil {
		r.observer(state, status)
	}
}

func (r *run) fail(res *Result, status string, err error) Result {
	res.FailedAt = r.state
	res.State = StateFailed
	res.Status = status
	res.Err = err
	telemetry.Error("resume.workflow.failed", map[string]any{
		"user_id":   r.userID,
		"state":     string(res.FailedAt),
		"status":    status,
		"resume_id": res.ID,
		"error":     err,
	})
	metrics.IncWorkflowFailed(string(res.FailedAt))
	if r.observer != nil {
		r.observer(StateFailed, status)
	}
	return *res
}

// Run executes the workflow for an already validated submission.
func (w *Workflow) Run(ctx context.Context, userID string, in Input, observer Observer) Result {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	newID := w.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	start := now()
	metrics.IncWorkflowStarted()
	defer func() {
		metrics.ObserveWorkflowDurationMs(float64(now().Sub(start).Milliseconds()))
	}()

	r := &run{userID: userID, state: StateIdle, observer: observer}
	res := Result{State: StateIdle}

	r.enter(StateUploading, StatusUploading)
	resumeItem, err := w.Files.Upload(ctx, userID, in.FileName, bytes.NewReader(in.Data))
	if err != nil {
		return r.fail(&res, StatusUploadFailed, fmt.Errorf("upload resume: %w", err))
	}

	r.enter(StateConverting, StatusConverting)
	png, err := w.convert(ctx, in.Data)
	if err != nil {
		return r.fail(&res, StatusConvertFailed, fmt.Errorf("convert resume: %w", err))
	}

	r.enter(StateUploadingImage, StatusUploadingImage)
	imageItem, err := w.Files.Upload(ctx, userID, convert.ImageName(in.FileName), bytes.NewReader(png))
	if err != nil {
		return r.fail(&res, StatusImageFailed, fmt.Errorf("upload image: %w", err))
	}

	r.enter(StatePersisting, StatusPersisting)
	rec := Record{
		ID:             newID(),
		ResumePath:     resumeItem.Path,
		ImagePath:      imageItem.Path,
		CompanyName:    in.CompanyName,
		JobTitle:       in.JobTitle,
		JobDescription: in.JobDescription,
	}
	if err := w.Store.Save(ctx, userID, rec); err != nil {
		return r.fail(&res, StatusPersistFailed, err)
	}
	res.ID = rec.ID

	r.enter(StateInferring, StatusInferring)
	resp, err := w.AI.Feedback(ctx, platform.FeedbackRequest{
		UserID:       userID,
		Path:         resumeItem.Path,
		Instructions: ai.PrepareInstructions(in.JobTitle, in.JobDescription),
	})
	if err != nil {
		return r.fail(&res, StatusAnalyzeFailed, fmt.Errorf("request feedback: %w", err))
	}
	if resp == nil {
		return r.fail(&res, StatusAnalyzeFailed, errors.New("request feedback: empty response"))
	}

	text, err := resp.Message.Content.Text()
	if err != nil {
		return r.fail(&res, StatusParseFailed, fmt.Errorf("feedback content: %w", err))
	}
	fb, err := feedback.Parse(text)
	if err != nil {
		return r.fail(&res, StatusParseFailed, err)
	}

	rec.Feedback = &fb
	if err := w.Store.Save(ctx, userID, rec); err != nil {
		return r.fail(&res, StatusPersistFailed, err)
	}

	r.enter(StateDone, StatusDone)
	metrics.IncWorkflowCompleted()
	res.State = StateDone
	res.Status = StatusDone
	return res
}

func (w *Workflow) convert(ctx context.Context, pdf []byte) ([]byte, error) {
	if w.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.ConvertTimeout)
		defer cancel()
	}
	png, err := w.Converter.Convert(ctx, pdf)
	if err != nil {
		return nil, err
	}
	if !convert.IsPNG(png) {
		return nil, convert.ErrNotPNG
	}
	return png, nil
}
