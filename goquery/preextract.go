// Package goquery provides HTML-level implementations: structured-data
// pre-extraction, content cleaning, and page metadata parsing.
package goquery

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/waypointhq/waypoint"
)

// Ensure Preextractor implements waypoint.Preextractor at compile time.
var _ waypoint.Preextractor = (*Preextractor)(nil)

// Preextractor parses embedded JSON-LD blocks and OpenGraph metadata for
// a curated set of high-value fields. Purely additive and deterministic:
// identical HTML always yields identical output. Values here serve as
// high-trust fallbacks; a positive model answer always wins at merge.
type Preextractor struct{}

// NewPreextractor creates a new Preextractor.
func NewPreextractor() *Preextractor {
	return &Preextractor{}
}

// Preextract parses structured data from HTML into field values.
func (p *Preextractor) Preextract(html string) (map[string]any, error) {
	if html == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return
		}
		walkLinkedData(payload, fields)
	})

	mergeOpenGraph(html, fields)

	return fields, nil
}

// walkLinkedData descends into JSON-LD payloads, including @graph arrays
// and nested objects, collecting curated fields. Existing keys are never
// overwritten so the first (outermost) value wins deterministically.
func walkLinkedData(payload any, fields map[string]any) {
	switch t := payload.(type) {
	case []any:
		for _, item := range t {
			walkLinkedData(item, fields)
		}
	case map[string]any:
		if graph, ok := t["@graph"]; ok {
			walkLinkedData(graph, fields)
		}
		collectObject(t, fields)
	}
}

func collectObject(obj map[string]any, fields map[string]any) {
	if name, ok := obj["name"].(string); ok {
		put(fields, "name", name)
	}
	if desc, ok := obj["description"].(string); ok {
		put(fields, "description", desc)
	}
	if phone, ok := obj["telephone"].(string); ok {
		put(fields, "phone", phone)
	}
	if tier, ok := obj["priceRange"].(string); ok {
		put(fields, "price_tier", tier)
	}
	if cuisine := stringList(obj["servesCuisine"]); len(cuisine) > 0 {
		put(fields, "cuisine", cuisine)
	}
	switch v := obj["acceptsReservations"].(type) {
	case bool:
		put(fields, "accepts_reservations", v)
	case string:
		switch strings.ToLower(v) {
		case "true", "yes":
			put(fields, "accepts_reservations", true)
		case "false", "no":
			put(fields, "accepts_reservations", false)
		}
	}

	if rating, ok := obj["aggregateRating"].(map[string]any); ok {
		if v, ok := toFloat(rating["ratingValue"]); ok {
			put(fields, "rating", v)
		}
		if v, ok := toFloat(rating["reviewCount"]); ok {
			put(fields, "review_count", int(v))
		} else if v, ok := toFloat(rating["ratingCount"]); ok {
			put(fields, "review_count", int(v))
		}
	}

	if addr, ok := obj["address"].(map[string]any); ok {
		if formatted := formatAddress(addr); formatted != "" {
			put(fields, "address", formatted)
		}
	} else if addr, ok := obj["address"].(string); ok {
		put(fields, "address", addr)
	}
}

// mergeOpenGraph fills name and images from OpenGraph meta tags when the
// JSON-LD blocks did not provide them.
func mergeOpenGraph(html string, fields map[string]any) {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(html)); err != nil {
		return
	}
	if og.Title != "" {
		put(fields, "name", og.Title)
	}
	if og.Description != "" {
		put(fields, "description", og.Description)
	}
	if len(og.Images) > 0 {
		urls := make([]string, 0, len(og.Images))
		for _, img := range og.Images {
			if img.URL != "" {
				urls = append(urls, img.URL)
			}
		}
		if len(urls) > 0 {
			put(fields, "images", urls)
		}
	}
}

func put(fields map[string]any, key string, value any) {
	if _, exists := fields[key]; !exists {
		fields[key] = value
	}
}

func formatAddress(addr map[string]any) string {
	var parts []string
	for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
		if v, ok := addr[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
