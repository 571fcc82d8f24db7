package resumes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"resurate/internal/feedback"
)

// KeyPrefix namespaces résumé records in the key-value store.
const KeyPrefix = "resume:"

const (
	StatusAnalyzing = "analyzing"
	StatusComplete  = "complete"
)

// Record is the persisted submission. A nil Feedback means the review has
// not been stored yet and is encoded as "" on the wire.
type Record struct {
	ID             string
	ResumePath     string
	ImagePath      string
	CompanyName    string
	JobTitle       string
	JobDescription string
	Feedback       *feedback.Feedback
}

type recordJSON struct {
	ID             string          `json:"id"`
	ResumePath     string          `json:"resumePath"`
	ImagePath      string          `json:"imagePath"`
	CompanyName    string          `json:"companyName"`
	JobTitle       string          `json:"jobTitle"`
	JobDescription string          `json:"jobDescription"`
	Feedback       json.RawMessage `json:"feedback"`
}

var emptyFeedback = json.RawMessage(`""`)

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:             r.ID,
		ResumePath:     r.ResumePath,
		ImagePath:      r.ImagePath,
		CompanyName:    r.CompanyName,
		JobTitle:       r.JobTitle,
		JobDescription: r.JobDescription,
		Feedback:       emptyFeedback,
	}
	if r.Feedback != nil {
		raw, err := json.Marshal(r.Feedback)
		if err != nil {
			return nil, err
		}
		out.Feedback = raw
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Record{
		ID:             in.ID,
		ResumePath:     in.ResumePath,
		ImagePath:      in.ImagePath,
		CompanyName:    in.CompanyName,
		JobTitle:       in.JobTitle,
		JobDescription: in.JobDescription,
	}
	raw := bytes.TrimSpace(in.Feedback)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, emptyFeedback) {
		return nil
	}
	var fb feedback.Feedback
	if err := json.Unmarshal(raw, &fb); err != nil {
		return fmt.Errorf("decode feedback: %w", err)
	}
	r.Feedback = &fb
	return nil
}

// Status reports whether the review is still pending.
func (r Record) Status() string {
	if r.Feedback == nil {
		return StatusAnalyzing
	}
	return StatusComplete
}

// Entry is a stored record with its last write time.
type Entry struct {
	Record
	UpdatedAt time.Time
}

// Input is one submission from the upload form.
type Input struct {
	CompanyName    string
	JobTitle       string
	JobDescription string
	FileName       string
	Data           []byte
}
