package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedResponse indicates model output that did not match the expected
// structure. Callers treat it like a failed call and substitute defaults.
var ErrMalformedResponse = errors.New("malformed model response")

const verdictSchema = `{
	"type": "object",
	"required": ["issues", "needs_revision"],
	"properties": {
		"issues": {"type": "array", "items": {"type": "string"}},
		"needs_revision": {"type": "boolean"},
		"accuracy_score": {"type": "number", "minimum": 0, "maximum": 1},
		"consistency_score": {"type": "number", "minimum": 0, "maximum": 1},
		"strengths": {"type": "array", "items": {"type": "string"}}
	}
}`

const profileSchema = `{
	"type": "object",
	"required": ["tone", "voice"],
	"properties": {
		"tone": {"type": "string"},
		"voice": {"type": "string"},
		"vocabulary_level": {"type": "string"},
		"sentence_structure": {"type": "string"},
		"paragraph_length": {"type": "string"},
		"common_phrases": {"type": "array", "items": {"type": "string"}},
		"writing_patterns": {"type": "array", "items": {"type": "string"}},
		"examples": {"type": "array", "items": {"type": "string"}}
	}
}`

var (
	verdictSchemaLoader = gojsonschema.NewStringLoader(verdictSchema)
	profileSchemaLoader = gojsonschema.NewStringLoader(profileSchema)
)

// extractJSON pulls the JSON object out of model output that may wrap it in
// prose or a fenced code block.
func extractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")

		if idx := strings.Index(content, "```"); idx >= 0 {
			content = content[:idx]
		}

		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	return content[start : end+1], nil
}

// decodeValidated extracts, schema-validates and decodes model JSON into out.
func decodeValidated(content string, schema gojsonschema.JSONLoader, out any) error {
	raw, err := extractJSON(content)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(details, "; "))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}
