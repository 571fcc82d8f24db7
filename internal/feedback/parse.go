package feedback

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformed is returned when model output is not a valid Feedback document.
var ErrMalformed = errors.New("malformed feedback")

//go:embed schema.json
var schemaJSON string

var schema = mustSchema()

func mustSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("feedback schema: %v", err))
	}
	return s
}

// Parse decodes model output into Feedback after validating it against the
// schema. Markdown code fences around the JSON are tolerated, and integral
// scores written with a fraction (85.0) decode as integers.
func Parse(text string) (Feedback, error) {
	raw := stripFences(text)
	if raw == "" {
		return Feedback{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if !json.Valid([]byte(raw)) {
		return Feedback{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	res, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return Feedback{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Feedback{}, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
	}

	normalized, err := normalizeNumbers(raw)
	if err != nil {
		return Feedback{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var fb Feedback
	if err := json.Unmarshal(normalized, &fb); err != nil {
		return Feedback{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fb, nil
}

func normalizeNumbers(raw string) ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return json.Marshal(integralNumbers(doc))
}

func integralNumbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = integralNumbers(e)
		}
	case []any:
		for i, e := range x {
			x[i] = integralNumbers(e)
		}
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return x
		}
		f, err := x.Float64()
		if err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return json.Number(strconv.FormatInt(int64(f), 10))
		}
	}
	return v
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
