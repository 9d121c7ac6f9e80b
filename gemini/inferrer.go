package gemini

import (
	"context"
	"strings"

	"github.com/waypointhq/waypoint"
	"google.golang.org/genai"
)

// Ensure Inferrer implements waypoint.Inferrer at compile time.
var _ waypoint.Inferrer = (*Inferrer)(nil)

// Inferrer performs escalation calls that derive missing fields from the
// already-extracted record and the full page content.
type Inferrer struct {
	client   *genai.Client
	registry waypoint.SchemaRegistry
	model    string
}

// NewInferrer creates a new Inferrer.
func NewInferrer(client *genai.Client, registry waypoint.SchemaRegistry) *Inferrer {
	return &Inferrer{client: client, registry: registry, model: DefaultModel}
}

// InferFields asks the model to fill only the named missing fields,
// answering null for anything the content genuinely does not support.
func (i *Inferrer) InferFields(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
	if record == nil {
		return nil, waypoint.Errorf(waypoint.EINVALID, "record required")
	}
	if len(missing) == 0 {
		return &waypoint.Extraction{Fields: map[string]any{}}, nil
	}

	prompt := BuildInferencePrompt(i.registry.InferencePrompt(record.Domain), record, missing, content)

	result, err := i.client.Models.GenerateContent(ctx, i.model, textContents(prompt),
		jsonConfig("You infer missing structured fields from context. Answer only with JSON. Use null when the content does not support a value."))
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "inference call: %v", err)
	}
	if result == nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "inference call returned nil result")
	}

	fields, err := ParseFieldJSON(result.Text())
	if err != nil {
		return nil, err
	}

	return &waypoint.Extraction{Fields: fields, Tokens: usedTokens(result)}, nil
}

// BuildInferencePrompt combines the registry template, record context,
// missing field list, and the full content.
func BuildInferencePrompt(template string, record *waypoint.Record, missing []string, content string) string {
	var sb strings.Builder
	sb.WriteString(template)
	sb.WriteString("\n\nFields to infer: ")
	sb.WriteString(strings.Join(missing, ", "))
	sb.WriteString("\n\n")
	sb.WriteString(BuildRecordContext(record))
	sb.WriteString("\n<content>\n")
	sb.WriteString(content)
	sb.WriteString("\n</content>\n")
	return sb.String()
}
