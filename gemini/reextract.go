package gemini

import (
	"context"
	"strings"

	"github.com/waypointhq/waypoint"
	"google.golang.org/genai"
)

// Ensure ReExtractor implements waypoint.ReExtractor at compile time.
var _ waypoint.ReExtractor = (*ReExtractor)(nil)

// ReExtractor parses a web-search answer into still-missing schema fields.
type ReExtractor struct {
	client   *genai.Client
	registry waypoint.SchemaRegistry
	model    string
}

// NewReExtractor creates a new ReExtractor.
func NewReExtractor(client *genai.Client, registry waypoint.SchemaRegistry) *ReExtractor {
	return &ReExtractor{client: client, registry: registry, model: DefaultModel}
}

// ReExtract maps a search answer onto the named missing fields. Fields
// the answer does not cover come back null.
func (r *ReExtractor) ReExtract(ctx context.Context, answer string, domain waypoint.Domain, missing []string) (*waypoint.Extraction, error) {
	if answer == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "answer required")
	}
	if len(missing) == 0 {
		return &waypoint.Extraction{Fields: map[string]any{}}, nil
	}

	var sb strings.Builder
	sb.WriteString(r.registry.ReextractionPrompt(domain))
	sb.WriteString("\n\nFields to fill: ")
	sb.WriteString(strings.Join(missing, ", "))
	sb.WriteString("\n\n<answer>\n")
	sb.WriteString(answer)
	sb.WriteString("\n</answer>\n")

	result, err := r.client.Models.GenerateContent(ctx, r.model, textContents(sb.String()),
		jsonConfig("You extract structured fields from a research answer. Answer only with JSON. Use null for fields the answer does not cover."))
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "re-extraction call: %v", err)
	}
	if result == nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "re-extraction call returned nil result")
	}

	fields, err := ParseFieldJSON(result.Text())
	if err != nil {
		return nil, err
	}

	return &waypoint.Extraction{Fields: fields, Tokens: usedTokens(result)}, nil
}
