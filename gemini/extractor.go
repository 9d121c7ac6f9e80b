package gemini

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/waypointhq/waypoint"
	"google.golang.org/genai"
)

// Ensure Extractor implements waypoint.FieldExtractor at compile time.
var _ waypoint.FieldExtractor = (*Extractor)(nil)

// Extractor performs the schema-guided primary extraction call.
type Extractor struct {
	client   *genai.Client
	registry waypoint.SchemaRegistry
	model    string
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client, registry waypoint.SchemaRegistry) *Extractor {
	return &Extractor{client: client, registry: registry, model: DefaultModel}
}

// ExtractFields runs the primary extraction call for the given content.
func (e *Extractor) ExtractFields(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error) {
	if content == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "content required")
	}

	prompt := BuildExtractionPrompt(e.registry.ExtractionPrompt(domain, granularity), content)

	result, err := e.client.Models.GenerateContent(ctx, e.model, textContents(prompt),
		jsonConfig("You extract structured data from web content. Answer only with JSON."))
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "extraction call: %v", err)
	}
	if result == nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "extraction call returned nil result")
	}

	fields, err := ParseFieldJSON(result.Text())
	if err != nil {
		return nil, err
	}

	return &waypoint.Extraction{Fields: fields, Tokens: usedTokens(result)}, nil
}

// BuildExtractionPrompt combines a registry template with the cleaned
// page content.
func BuildExtractionPrompt(template, content string) string {
	var sb strings.Builder
	sb.WriteString(template)
	sb.WriteString("\n\n<content>\n")
	sb.WriteString(content)
	sb.WriteString("\n</content>\n")
	return sb.String()
}

// BuildRecordContext renders the current record fields for follow-up
// calls.
func BuildRecordContext(record *waypoint.Record) string {
	names := make([]string, 0, len(record.Fields))
	for name := range record.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("<record>\n")
	for _, name := range names {
		if waypoint.IsEmpty(record.Fields[name]) {
			continue
		}
		fmt.Fprintf(&sb, "%s: %v\n", name, record.Fields[name])
	}
	sb.WriteString("</record>\n")
	return sb.String()
}
