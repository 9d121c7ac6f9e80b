package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/waypointhq/waypoint"
)

// Ensure PageParser implements waypoint.PageParser at compile time.
var _ waypoint.PageParser = (*PageParser)(nil)

// PageParser derives title, plain text, and image URLs from raw HTML.
// Plain text comes from the injected TextExtractor; title and images are
// read directly from the DOM.
type PageParser struct {
	text waypoint.TextExtractor
}

// NewPageParser creates a PageParser backed by the given text extractor.
func NewPageParser(text waypoint.TextExtractor) *PageParser {
	return &PageParser{text: text}
}

// ParsePage extracts the title, plain text, and up to
// waypoint.MaxImageURLs image URLs, resolving relative references
// against baseURL.
func (p *PageParser) ParsePage(html, baseURL string) (*waypoint.PageInfo, error) {
	if html == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	info := &waypoint.PageInfo{
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		ImageURLs: imageURLs(doc, baseURL, waypoint.MaxImageURLs),
	}

	result, err := p.text.Extract(html)
	if err == nil {
		info.Text = result.Text
		if info.Title == "" {
			info.Title = result.Title
		}
	} else {
		// Boilerplate removal failed; degrade to the full DOM text.
		info.Text = collapseSpace(doc.Text())
	}

	return info, nil
}

// imageURLs collects up to max visible image URLs. Data URIs, SVGs, and
// tracking pixels are skipped; duplicates are removed.
func imageURLs(doc *goquery.Document, baseURL string, max int) []string {
	base, _ := url.Parse(baseURL)

	seen := make(map[string]struct{})
	var urls []string

	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") || strings.HasSuffix(src, ".svg") {
			return true
		}
		if w, ok := s.Attr("width"); ok && (w == "1" || w == "0") {
			return true
		}

		if base != nil {
			if ref, err := url.Parse(src); err == nil {
				src = base.ResolveReference(ref).String()
			}
		}

		if _, dup := seen[src]; dup {
			return true
		}
		seen[src] = struct{}{}
		urls = append(urls, src)
		return len(urls) < max
	})

	return urls
}
