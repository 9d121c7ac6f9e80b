// Package gemini implements the model-backed pipeline stages using
// Google Gemini: primary field extraction, escalation inference,
// search-answer re-extraction, and classification calls.
package gemini

import (
	"encoding/json"
	"strings"

	"github.com/waypointhq/waypoint"
	"google.golang.org/genai"
)

// DefaultModel is the model used for all calls unless overridden.
const DefaultModel = "gemini-2.5-flash"

// jsonConfig returns the GenerateContentConfig for calls that must
// answer with a single JSON object.
func jsonConfig(system string) *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// textContents wraps a prompt as user content.
func textContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

// usedTokens extracts total token usage from a response, zero when the
// backend omits usage metadata.
func usedTokens(result *genai.GenerateContentResponse) int {
	if result == nil || result.UsageMetadata == nil {
		return 0
	}
	return int(result.UsageMetadata.TotalTokenCount)
}

// ParseFieldJSON parses a model answer into a flat field map. Markdown
// code fences are tolerated. Returns EINTERNAL on empty or malformed
// output so the orchestrator's retry policy can engage.
func ParseFieldJSON(raw string) (map[string]any, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "model returned empty output")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "model returned malformed JSON: %v", err)
	}
	if len(fields) == 0 {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "model returned no fields")
	}

	return fields, nil
}

// stripFences removes a wrapping markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
