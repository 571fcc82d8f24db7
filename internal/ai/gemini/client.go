package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resurate/internal/ai"
	"resurate/internal/platform"
)

const defaultModel = "gemini-2.5-flash"

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client reviews résumés with Gemini, sending the PDF inline so the model
// sees the original layout.
type Client struct {
	models generator
	model  string
	files  platform.Files
}

// NewClient creates a client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string, files platform.Files) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if files == nil {
		return nil, errors.New("gemini client needs file access")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithGenerator(client.Models, model, files), nil
}

func newWithGenerator(models generator, model string, files platform.Files) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{models: models, model: model, files: files}
}

// Feedback reviews the PDF stored at req.Path. The reply is returned as
// list-shaped content with one text part.
func (c *Client) Feedback(ctx context.Context, req platform.FeedbackRequest) (*platform.ChatResponse, error) {
	data, err := ai.ReadFile(ctx, c.files, req.UserID, req.Path)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, "application/pdf"),
			genai.NewPartFromText(req.Instructions),
		}, genai.RoleUser),
	}
	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	text := collectText(resp)
	if text == "" {
		return nil, errors.New("gemini api returned empty response")
	}
	return &platform.ChatResponse{
		Message: platform.ChatMessage{
			Role:    "assistant",
			Content: platform.PartsContent(platform.ContentPart{Type: "text", Text: text}),
		},
	}, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
		if builder.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(builder.String())
}

var _ platform.AI = (*Client)(nil)
