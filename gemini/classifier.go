package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/waypointhq/waypoint"
	"google.golang.org/genai"
)

// Ensure the model-backed detectors satisfy the cascade interfaces at
// compile time.
var (
	_ waypoint.GranularityDetector = (*GranularityConfirmer)(nil)
	_ waypoint.DomainParser        = (*DomainParser)(nil)
)

// granularityConfidence is the confidence attached to an unambiguous
// model answer. The cascade stops at this value.
const granularityConfidence = 0.85

// maxClassifyContent bounds the content excerpt passed to classification
// calls. Classification needs far less context than extraction.
const maxClassifyContent = 4000

// GranularityConfirmer is the model-backed tail of the granularity
// cascade. It runs only when the URL heuristics decline, and itself
// declines on anything but an unambiguous answer.
type GranularityConfirmer struct {
	client *genai.Client
	model  string
}

// NewGranularityConfirmer creates a new GranularityConfirmer.
func NewGranularityConfirmer(client *genai.Client) *GranularityConfirmer {
	return &GranularityConfirmer{client: client, model: DefaultModel}
}

// DetectGranularity asks the model whether the page describes a single
// item or a guide/listing. Call errors and ambiguous answers decline
// rather than fail.
func (c *GranularityConfirmer) DetectGranularity(ctx context.Context, url, content string) (waypoint.Granularity, float64, string, bool) {
	prompt := fmt.Sprintf(`Does this page describe ONE specific item (a single property, tour, restaurant, or route) or is it a guide or listing covering MANY items?

URL: %s

<content>
%s
</content>

Answer with exactly one word: SPECIFIC or GENERAL.`, url, clip(content, maxClassifyContent))

	result, err := c.client.Models.GenerateContent(ctx, c.model, textContents(prompt), nil)
	if err != nil || result == nil {
		return "", 0, "", false
	}

	switch parseKeyword(result.Text()) {
	case "SPECIFIC":
		return waypoint.GranularitySpecific, granularityConfidence, "llm", true
	case "GENERAL":
		return waypoint.GranularityGeneral, granularityConfidence, "llm", true
	}
	return "", 0, "", false
}

// DomainParser maps free-form classification text onto the closed domain
// set with a compact enum-constrained model call.
type DomainParser struct {
	client *genai.Client
	model  string
}

// NewDomainParser creates a new DomainParser.
func NewDomainParser(client *genai.Client) *DomainParser {
	return &DomainParser{client: client, model: DefaultModel}
}

// ParseDomain resolves text to one of the supported domains.
func (p *DomainParser) ParseDomain(ctx context.Context, text string) (waypoint.Domain, error) {
	if text == "" {
		return "", waypoint.Errorf(waypoint.EINVALID, "text required")
	}

	prompt := fmt.Sprintf(`Classify the website described below into exactly one category:
property, tour, restaurant, transport, tip, general

<description>
%s
</description>

Answer with the category name only.`, clip(text, maxClassifyContent))

	result, err := p.client.Models.GenerateContent(ctx, p.model, textContents(prompt), nil)
	if err != nil {
		return "", waypoint.Errorf(waypoint.EINTERNAL, "domain parse call: %v", err)
	}
	if result == nil {
		return "", waypoint.Errorf(waypoint.EINTERNAL, "domain parse call returned nil result")
	}

	d := waypoint.Domain(strings.ToLower(parseKeyword(result.Text())))
	if !d.Valid() {
		return "", waypoint.Errorf(waypoint.EINTERNAL, "model returned unknown domain %q", d)
	}
	return d, nil
}

// parseKeyword reduces a model answer to its first word, stripped of
// fences and punctuation.
func parseKeyword(raw string) string {
	s := stripFences(raw)
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, ".,:;\"'")
}

// clip truncates s to at most n bytes on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
