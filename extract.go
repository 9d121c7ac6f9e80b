package waypoint

import "context"

// Extraction is the raw outcome of a single model call: a flat field map
// (possibly including _evidence and _confidence companions) plus the
// tokens the call consumed.
type Extraction struct {
	Fields map[string]any
	Tokens int
}

// FieldExtractor performs the schema-guided primary extraction call.
// Returns EINTERNAL on malformed or empty model output; the orchestrator
// wraps this call in its retry policy.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, content string, domain Domain, granularity Granularity) (*Extraction, error)
}

// Inferrer performs an escalation call that derives only the named
// missing fields from the current record and full content, returning
// null for anything truly unrecoverable.
type Inferrer interface {
	InferFields(ctx context.Context, record *Record, missing []string, content string) (*Extraction, error)
}

// ReExtractor parses a web-search answer into still-missing schema fields.
type ReExtractor interface {
	ReExtract(ctx context.Context, answer string, domain Domain, missing []string) (*Extraction, error)
}

// SearchAnswer is the result of an external search call.
type SearchAnswer struct {
	Answer    string
	Sources   []string
	Citations []string
	Tokens    int
}

// Searcher issues an external web search and returns a synthesized
// answer with its sources.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchAnswer, error)
}

// Preextractor parses embedded machine-readable data (JSON-LD, OpenGraph)
// from HTML into high-trust field values. Deterministic: identical HTML
// yields identical output.
type Preextractor interface {
	Preextract(html string) (map[string]any, error)
}

// Cleaner reduces raw HTML to the semantic fragments handed to the
// primary extraction call.
type Cleaner interface {
	Clean(html string) (string, error)
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML, boilerplate removed.
	ContentHTML string

	// Text is the main content as plain text.
	Text string
}

// TextExtractor extracts main content from HTML pages, removing boilerplate.
type TextExtractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// LanguageDetector identifies the language of a text.
// Returns an ISO 639-1 code and false when detection is unreliable.
type LanguageDetector interface {
	DetectLanguage(text string) (code string, ok bool)
}
