package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/waypointhq/waypoint"
)

// Classification confidence levels per detection method. A cascade stops
// at the first result at or above stopConfidence; lower-confidence
// results are kept as fallbacks.
const (
	urlHeuristicConfidence  = 0.6
	keywordConfidence       = 0.7
	searchDomainConfidence  = 0.75
	defaultSpecificFallback = 0.5
	defaultDomainFallback   = 0.3
	stopConfidence          = 0.6
)

var _ waypoint.Classifier = (*CascadeClassifier)(nil)

// CascadeClassifier resolves domain and granularity by running two
// independent detector chains. Each detector either produces a tagged
// result with a confidence or declines; the chain stops at the first
// sufficiently confident result and otherwise keeps the best declineable
// answer as a fallback. The classifier never fails: with no signal at
// all it degrades to low-confidence defaults.
type CascadeClassifier struct {
	granularity []waypoint.GranularityDetector
	domain      []waypoint.DomainDetector
}

// NewCascadeClassifier creates a classifier from ordered detector
// chains. Detectors should be ordered cheapest first.
func NewCascadeClassifier(granularity []waypoint.GranularityDetector, domain []waypoint.DomainDetector) *CascadeClassifier {
	return &CascadeClassifier{granularity: granularity, domain: domain}
}

// Classify runs both cascades and combines their results.
func (c *CascadeClassifier) Classify(ctx context.Context, url, content string) *waypoint.Classification {
	out := &waypoint.Classification{}
	out.Domain, out.DomainConfidence, out.DomainMethod = c.ClassifyDomain(ctx, url, content)
	out.Granularity, out.GranularityConfidence, out.GranularityMethod = c.ClassifyGranularity(ctx, url, content)
	out.Reasoning = fmt.Sprintf("domain via %s, granularity via %s", out.DomainMethod, out.GranularityMethod)
	return out
}

// ClassifyGranularity runs only the granularity cascade.
func (c *CascadeClassifier) ClassifyGranularity(ctx context.Context, url, content string) (waypoint.Granularity, float64, string) {
	g, conf, method := waypoint.GranularitySpecific, defaultSpecificFallback, "default"

	var best float64
	for _, d := range c.granularity {
		dg, dconf, dmethod, ok := d.DetectGranularity(ctx, url, content)
		if !ok || dconf <= best {
			continue
		}
		best = dconf
		g, conf, method = dg, dconf, dmethod
		if dconf >= stopConfidence {
			break
		}
	}
	return g, conf, method
}

// ClassifyDomain runs only the domain cascade.
func (c *CascadeClassifier) ClassifyDomain(ctx context.Context, url, content string) (waypoint.Domain, float64, string) {
	dom, conf, method := waypoint.DomainGeneral, defaultDomainFallback, "default"

	var best float64
	for _, d := range c.domain {
		dd, dconf, dmethod, ok := d.DetectDomain(ctx, url, content)
		if !ok || dconf <= best {
			continue
		}
		best = dconf
		dom, conf, method = dd, dconf, dmethod
		if dconf >= stopConfidence {
			break
		}
	}
	return dom, conf, method
}

var _ waypoint.GranularityDetector = (*URLGranularityDetector)(nil)

// specificMarkers are path substrings that indicate a single-item page.
// Checked before the general markers so "/tour/123-sunrise" wins over a
// later "/tours/" match.
var specificMarkers = []string{
	"/tour/", "/property/", "/listing/", "/restaurant/", "/route/",
	"/detail/", "/item/", "/villa/", "/activity/",
}

// generalMarkers are path substrings that indicate a guide or listing.
var generalMarkers = []string{
	"/tours/", "/properties/", "/listings/", "/restaurants/", "/routes/",
	"/search", "/list", "/guide", "/category/", "/collection", "/blog/",
	"/best-", "/top-",
}

// URLGranularityDetector matches the URL path against curated marker
// substrings. It declines when no marker matches, letting the chain fall
// through to the model-backed detector.
type URLGranularityDetector struct{}

// DetectGranularity classifies the URL path by marker match.
func (URLGranularityDetector) DetectGranularity(_ context.Context, pageURL, _ string) (waypoint.Granularity, float64, string, bool) {
	path := pathOf(pageURL)
	if path == "" {
		return "", 0, "", false
	}

	for _, m := range specificMarkers {
		if strings.Contains(path, m) {
			return waypoint.GranularitySpecific, urlHeuristicConfidence, "url_heuristic", true
		}
	}
	for _, m := range generalMarkers {
		if strings.Contains(path, m) {
			return waypoint.GranularityGeneral, urlHeuristicConfidence, "url_heuristic", true
		}
	}
	return "", 0, "", false
}

var _ waypoint.DomainDetector = (*KeywordDomainDetector)(nil)

// domainKeywords maps URL substrings to content domains. Order matters:
// earlier entries win, so the more distinctive markers come first.
var domainKeywords = []struct {
	keyword string
	domain  waypoint.Domain
}{
	{"real-estate", waypoint.DomainProperty},
	{"realestate", waypoint.DomainProperty},
	{"property", waypoint.DomainProperty},
	{"villa", waypoint.DomainProperty},
	{"apartment", waypoint.DomainProperty},
	{"land-for-sale", waypoint.DomainProperty},
	{"getyourguide", waypoint.DomainTour},
	{"viator", waypoint.DomainTour},
	{"excursion", waypoint.DomainTour},
	{"activity", waypoint.DomainTour},
	{"/tour", waypoint.DomainTour},
	{"restaurant", waypoint.DomainRestaurant},
	{"dining", waypoint.DomainRestaurant},
	{"/menu", waypoint.DomainRestaurant},
	{"12go", waypoint.DomainTransport},
	{"ferry", waypoint.DomainTransport},
	{"/bus", waypoint.DomainTransport},
	{"/train", waypoint.DomainTransport},
	{"transfer", waypoint.DomainTransport},
	{"travel-tip", waypoint.DomainTip},
	{"/tips", waypoint.DomainTip},
	{"advice", waypoint.DomainTip},
}

// KeywordDomainDetector matches the URL against a keyword table.
type KeywordDomainDetector struct{}

// DetectDomain classifies the URL by keyword match.
func (KeywordDomainDetector) DetectDomain(_ context.Context, pageURL, _ string) (waypoint.Domain, float64, string, bool) {
	u := strings.ToLower(pageURL)
	for _, e := range domainKeywords {
		if strings.Contains(u, e.keyword) {
			return e.domain, keywordConfidence, "keyword", true
		}
	}
	return "", 0, "", false
}

var _ waypoint.DomainDetector = (*SearchDomainDetector)(nil)

// SearchDomainDetector asks an external search backend what a site is
// about and parses the answer onto the closed domain set. Any failure
// declines rather than propagating: the cascade absorbs backend outages.
type SearchDomainDetector struct {
	searcher waypoint.Searcher
	parser   waypoint.DomainParser
}

// NewSearchDomainDetector creates a new SearchDomainDetector.
func NewSearchDomainDetector(searcher waypoint.Searcher, parser waypoint.DomainParser) *SearchDomainDetector {
	return &SearchDomainDetector{searcher: searcher, parser: parser}
}

// DetectDomain issues one search call and one compact classification
// call.
func (d *SearchDomainDetector) DetectDomain(ctx context.Context, pageURL, _ string) (waypoint.Domain, float64, string, bool) {
	if d.searcher == nil || d.parser == nil {
		return "", 0, "", false
	}

	answer, err := d.searcher.Search(ctx, fmt.Sprintf("What kind of website is %s? Describe in one or two sentences what the page is about.", pageURL))
	if err != nil || answer == nil || answer.Answer == "" {
		return "", 0, "", false
	}

	dom, err := d.parser.ParseDomain(ctx, answer.Answer)
	if err != nil {
		return "", 0, "", false
	}
	return dom, searchDomainConfidence, "search", true
}

// pathOf returns the lowercased path component of a URL, or "" when the
// URL does not parse.
func pathOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Path)
}
