package platform

import (
	"encoding/json"
	"errors"
)

// ChatResponse is the AI reply envelope.
type ChatResponse struct {
	Message ChatMessage `json:"message"`
}

// ChatMessage carries either plain string content or a list of parts.
type ChatMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// ContentPart is one element of list-shaped content.
type ContentPart struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// Content is a string or a list of parts on the wire.
type Content struct {
	Str   string
	Parts []ContentPart
	list  bool
}

// StringContent builds string-shaped content.
func StringContent(s string) Content {
	return Content{Str: s}
}

// PartsContent builds list-shaped content.
func PartsContent(parts ...ContentPart) Content {
	return Content{Parts: parts, list: true}
}

// Text returns the string content, or the first part's text for list content.
func (c Content) Text() (string, error) {
	if !c.list {
		return c.Str, nil
	}
	if len(c.Parts) == 0 {
		return "", errors.New("content has no parts")
	}
	return c.Parts[0].Text, nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.list {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Str)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = StringContent(s)
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.New("content must be a string or a list of parts")
	}
	*c = PartsContent(parts...)
	return nil
}
