package resumes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"resurate/internal/ai"
	"resurate/internal/convert"
	"resurate/internal/extract"
	"resurate/internal/feedback"
	"resurate/internal/files"
	"resurate/internal/platform"
)

// MaxFileBytes is the largest accepted résumé.
const MaxFileBytes = ai.MaxFileBytes

// Service validates submissions, runs the workflow and reads records back.
type Service struct {
	Platform *platform.Platform
	Store    *Store
	Workflow *Workflow
}

// NewService wires a service over the platform capabilities.
func NewService(p *platform.Platform, conv convert.Converter, convertTimeout time.Duration) *Service {
	store := &Store{KV: p.KV}
	return &Service{
		Platform: p,
		Store:    store,
		Workflow: &Workflow{
			Files:          p.Files,
			AI:             p.AI,
			Converter:      conv,
			Store:          store,
			ConvertTimeout: convertTimeout,
		},
	}
}

// Validate trims the text fields and checks the file is a PDF within limits.
func Validate(in Input) (Input, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.JobDescription = strings.TrimSpace(in.JobDescription)
	in.FileName = strings.TrimSpace(in.FileName)

	switch {
	case in.CompanyName == "":
		return in, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	case in.JobTitle == "":
		return in, fmt.Errorf("%w: job title is required", ErrInvalidInput)
	case in.JobDescription == "":
		return in, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	case len(in.Data) == 0:
		return in, fmt.Errorf("%w: file is required", ErrInvalidInput)
	case len(in.Data) > MaxFileBytes:
		return in, fmt.Errorf("%w: file exceeds %d MB", ErrInvalidInput, MaxFileBytes>>20)
	}
	if in.FileName == "" {
		in.FileName = "resume.pdf"
	}
	if mime := http.DetectContentType(in.Data); mime != "application/pdf" {
		return in, fmt.Errorf("%w: file must be a PDF", ErrInvalidInput)
	}
	if _, err := extract.Inspect(in.Data); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return in, nil
}

// Submit validates the input and runs the upload workflow. Validation
// failures are returned as errors; workflow failures are reported in Result.
func (s *Service) Submit(ctx context.Context, userID string, in Input, observer Observer) (Result, error) {
	if userID == "" {
		return Result{}, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	in, err := Validate(in)
	if err != nil {
		return Result{}, err
	}
	return s.Workflow.Run(ctx, userID, in, observer), nil
}

// View is a record prepared for display.
type View struct {
	Record
	ResumeURL string
	ImageURL  string
	Status    string
}

// OverallTier is the tier of the overall score, empty while analyzing.
func (v View) OverallTier() feedback.Tier {
	if v.Feedback == nil {
		return ""
	}
	return feedback.TierFor(v.Feedback.OverallScore)
}

func newView(rec Record) View {
	return View{
		Record:    rec,
		ResumeURL: files.ContentURL(rec.ResumePath),
		ImageURL:  files.ContentURL(rec.ImagePath),
		Status:    rec.Status(),
	}
}

// Get loads one record. Unknown and malformed ids are both ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return View{}, ErrNotFound
	}
	rec, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return View{}, err
	}
	return newView(rec), nil
}

// Summary is one row of the dashboard.
type Summary struct {
	ID           string        `json:"id"`
	CompanyName  string        `json:"companyName"`
	JobTitle     string        `json:"jobTitle"`
	ImageURL     string        `json:"imageUrl"`
	Status       string        `json:"status"`
	OverallScore *int          `json:"overallScore"`
	Tier         feedback.Tier `json:"tier,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// List returns the user's submissions, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	entries, err := s.Store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		sum := Summary{
			ID:          e.ID,
			CompanyName: e.CompanyName,
			JobTitle:    e.JobTitle,
			ImageURL:    files.ContentURL(e.ImagePath),
			Status:      e.Status(),
			UpdatedAt:   e.UpdatedAt,
		}
		if e.Feedback != nil {
			score := e.Feedback.OverallScore
			sum.OverallScore = &score
			sum.Tier = feedback.TierFor(score)
		}
		out = append(out, sum)
	}
	return out, nil
}
