package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resurate/internal/ai"
	"resurate/internal/extract"
	"resurate/internal/platform"
	"resurate/internal/shared/telemetry"
)

const defaultModel = "gpt-4o-mini"

var (
	apiURL                 = "https://api.openai.com/v1/chat/completions"
	maxResponseBytes int64 = 4 << 20
)

// Client reviews résumés with OpenAI Chat Completions. The PDF's text is
// extracted locally and sent alongside the instructions.
type Client struct {
	apiKey     string
	model      string
	files      platform.Files
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, files platform.Files) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if files == nil {
		return nil, fmt.Errorf("openai client needs file access")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		files:      files,
		httpClient: &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Feedback reviews the PDF stored at req.Path.
func (c *Client) Feedback(ctx context.Context, req platform.FeedbackRequest) (*platform.ChatResponse, error) {
	data, err := ai.ReadFile(ctx, c.files, req.UserID, req.Path)
	if err != nil {
		return nil, err
	}
	text, err := extract.PDFText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract resume text: %w", err)
	}
	if text == "" {
		return nil, errors.New("resume has no extractable text")
	}

	messages := []chatMessage{
		{Role: "system", Content: req.Instructions},
		{Role: "user", Content: "Résumé text:\n\n" + text},
	}
	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &platform.ChatResponse{
		Message: platform.ChatMessage{Role: "assistant", Content: platform.StringContent(content)},
	}, nil
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if supportsTemperature(c.model) {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > maxResponseBytes {
		return "", fmt.Errorf("openai response exceeds %d bytes (status %d)", maxResponseBytes, resp.StatusCode)
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)
	if parseErr == nil && parsed.Error != nil {
		return "", fmt.Errorf("openai error (status %d): %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode, snippet(body))
	}
	if parseErr != nil {
		return "", fmt.Errorf("openai response parse: %w", parseErr)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}

	fields := map[string]any{"model": c.model}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("openai.usage", fields)
	return content, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// supportsTemperature reports whether the model accepts a temperature override.
// Reasoning models (o-series, gpt-5) only allow the default.
func supportsTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return !(strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4"))
}

var _ platform.AI = (*Client)(nil)
