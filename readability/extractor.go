package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/waypointhq/waypoint"
)

// Ensure Extractor implements waypoint.TextExtractor at compile time.
var _ waypoint.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*waypoint.ExtractResult, error) {
	if rawHTML == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &waypoint.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
		Text:        article.TextContent,
	}, nil
}
