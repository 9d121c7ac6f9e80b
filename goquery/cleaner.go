package goquery

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/waypointhq/waypoint"
)

// Ensure Cleaner implements waypoint.Cleaner at compile time.
var _ waypoint.Cleaner = (*Cleaner)(nil)

// Cleaner defaults.
const (
	DefaultMaxChars     = 50000
	DefaultMinFragments = 10
	maxParagraphs       = 20

	truncationMarker = "\n[content truncated]"
)

// sectionKeywords flag class/id substrings whose sections tend to carry
// the fields we extract.
var sectionKeywords = []string{
	"detail", "price", "schedule", "feature", "info", "amenit",
	"spec", "review", "itinerary", "menu",
}

// Cleaner reduces raw HTML to the semantic fragments handed to the
// primary extraction call: headings, keyword-flagged sections, embedded
// structured data, inline-script JSON, list items, table rows, and the
// leading paragraphs. Pages yielding too few fragments fall back to the
// full extracted text.
type Cleaner struct {
	text      waypoint.TextExtractor
	converter waypoint.Converter

	maxChars     int
	minFragments int
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithMaxChars caps the combined fragment length.
func WithMaxChars(n int) CleanerOption {
	return func(c *Cleaner) { c.maxChars = n }
}

// WithMinFragments sets the fragment count below which the cleaner
// falls back to the full page text.
func WithMinFragments(n int) CleanerOption {
	return func(c *Cleaner) { c.minFragments = n }
}

// NewCleaner creates a Cleaner. The text extractor supplies the
// full-text fallback; the converter renders table fragments as markdown
// and may be nil.
func NewCleaner(text waypoint.TextExtractor, converter waypoint.Converter, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		text:         text,
		converter:    converter,
		maxChars:     DefaultMaxChars,
		minFragments: DefaultMinFragments,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean returns the semantic fragments of the page, one per line.
func (c *Cleaner) Clean(html string) (string, error) {
	if html == "" {
		return "", waypoint.Errorf(waypoint.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var fragments []string
	add := func(s string) {
		s = strings.TrimSpace(collapseSpace(s))
		if s != "" {
			fragments = append(fragments, s)
		}
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})

	doc.Find("section, div, article").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if !matchesKeyword(strings.ToLower(class + " " + id)) {
			return
		}
		// Keyword sections keep table structure when a converter is set.
		if c.converter != nil {
			if h, err := s.Html(); err == nil {
				if md, err := c.converter.Convert(h); err == nil {
					add(md)
					return
				}
			}
		}
		add(s.Text())
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})

	doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		for _, fragment := range inlineJSONObjects(s.Text()) {
			add(fragment)
		}
	})

	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})
	doc.Find("tr").Each(func(_ int, s *goquery.Selection) {
		add(strings.Join(s.Find("td, th").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		}), " | "))
	})

	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxParagraphs {
			return false
		}
		add(s.Text())
		return true
	})

	if len(fragments) < c.minFragments {
		return c.fallback(html)
	}

	return c.cap(strings.Join(fragments, "\n")), nil
}

// fallback returns the full page text when too few fragments survived.
func (c *Cleaner) fallback(html string) (string, error) {
	result, err := c.text.Extract(html)
	if err != nil {
		return "", err
	}
	return c.cap(result.Text), nil
}

func (c *Cleaner) cap(s string) string {
	if len(s) <= c.maxChars {
		return s
	}
	return s[:c.maxChars] + truncationMarker
}

func matchesKeyword(classAndID string) bool {
	for _, kw := range sectionKeywords {
		if strings.Contains(classAndID, kw) {
			return true
		}
	}
	return false
}

// inlineJSONObjects scans script text for balanced {...} spans that
// parse as JSON objects. Long scripts rarely hide useful data past the
// first few objects, so scanning stops after three hits.
func inlineJSONObjects(script string) []string {
	var out []string
	for i := 0; i < len(script) && len(out) < 3; {
		start := strings.IndexByte(script[i:], '{')
		if start < 0 {
			break
		}
		start += i
		end := balancedEnd(script, start)
		if end < 0 {
			break
		}
		candidate := script[start : end+1]
		if len(candidate) >= 20 && json.Valid([]byte(candidate)) {
			out = append(out, candidate)
		}
		i = end + 1
	}
	return out
}

// balancedEnd returns the index of the brace closing the object opened
// at start, ignoring braces inside double-quoted strings.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
