package waypoint

import "context"

// Classification is the combined outcome of the domain and granularity
// cascades. Both confidences are in [0,1]; methods record which detector
// produced each tag.
type Classification struct {
	Domain           Domain  `json:"domain"`
	DomainConfidence float64 `json:"domainConfidence"`
	DomainMethod     string  `json:"domainMethod"`

	Granularity           Granularity `json:"granularity"`
	GranularityConfidence float64     `json:"granularityConfidence"`
	GranularityMethod     string      `json:"granularityMethod"`

	Reasoning string `json:"reasoning,omitempty"`
}

// Classifier resolves a page's domain and granularity. Implementations
// never fail: absence of a confident signal degrades to a low-confidence
// default. The single-cascade methods exist so a caller that already
// knows one tag can skip the other cascade and its backend calls.
type Classifier interface {
	Classify(ctx context.Context, url, content string) *Classification
	ClassifyDomain(ctx context.Context, url, content string) (d Domain, confidence float64, method string)
	ClassifyGranularity(ctx context.Context, url, content string) (g Granularity, confidence float64, method string)
}

// GranularityDetector is one strategy in the granularity cascade.
// A detector that cannot produce a result declines by returning ok=false;
// errors are absorbed by the implementation.
type GranularityDetector interface {
	DetectGranularity(ctx context.Context, url, content string) (g Granularity, confidence float64, method string, ok bool)
}

// DomainDetector is one strategy in the domain cascade.
type DomainDetector interface {
	DetectDomain(ctx context.Context, url, content string) (d Domain, confidence float64, method string, ok bool)
}

// DomainParser maps free-form classification text onto the closed domain
// set. Used to parse the answer of a search-backed classification call.
type DomainParser interface {
	ParseDomain(ctx context.Context, text string) (Domain, error)
}
