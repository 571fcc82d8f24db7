package ai

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/feedback.tmpl
var feedbackPrompt string

var feedbackTmpl = template.Must(template.New("feedback").Parse(feedbackPrompt))

// PrepareInstructions renders the review instructions for a job posting.
func PrepareInstructions(jobTitle, jobDescription string) string {
	var buf bytes.Buffer
	data := struct {
		JobTitle       string
		JobDescription string
	}{
		JobTitle:       strings.TrimSpace(jobTitle),
		JobDescription: strings.TrimSpace(jobDescription),
	}
	if err := feedbackTmpl.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}
