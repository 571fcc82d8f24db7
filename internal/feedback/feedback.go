// Package feedback defines the structured résumé review and how it is parsed
// and graded.
package feedback

// TipType classifies a tip as a strength or an improvement.
type TipType string

const (
	TipGood    TipType = "good"
	TipImprove TipType = "improve"
)

// Tip is one piece of advice. Explanation is nil when the model sent none,
// which is the case for ATS tips.
type Tip struct {
	Type        TipType `json:"type"`
	Tip         string  `json:"tip"`
	Explanation *string `json:"explanation,omitempty"`
}

// Detail returns the explanation text, or "" when there is none.
func (t Tip) Detail() string {
	if t.Explanation == nil {
		return ""
	}
	return *t.Explanation
}

// Section is a scored review category.
type Section struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// Feedback is the full review of one résumé.
type Feedback struct {
	OverallScore int     `json:"overallScore"`
	ATS          Section `json:"ATS"`
	ToneAndStyle Section `json:"toneAndStyle"`
	Content      Section `json:"content"`
	Structure    Section `json:"structure"`
	Skills       Section `json:"skills"`
}

// Category is a named detail section for display.
type Category struct {
	Key     string
	Title   string
	Section Section
}

// Categories returns the detail sections in display order.
func (f Feedback) Categories() []Category {
	return []Category{
		{Key: "toneAndStyle", Title: "Tone & Style", Section: f.ToneAndStyle},
		{Key: "content", Title: "Content", Section: f.Content},
		{Key: "structure", Title: "Structure", Section: f.Structure},
		{Key: "skills", Title: "Skills", Section: f.Skills},
	}
}

// Good returns the section's strength tips.
func (s Section) Good() []Tip { return s.filter(TipGood) }

// Improve returns the section's improvement tips.
func (s Section) Improve() []Tip { return s.filter(TipImprove) }

func (s Section) filter(t TipType) []Tip {
	out := make([]Tip, 0, len(s.Tips))
	for _, tip := range s.Tips {
		if tip.Type == t {
			out = append(out, tip)
		}
	}
	return out
}
