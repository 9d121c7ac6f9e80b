package waypoint

import (
	"context"
	"reflect"
	"time"
)

// Domain identifies the content vertical a record belongs to.
type Domain string

// Supported content domains. DomainGeneral is the fail-closed default for
// pages that match no vertical.
const (
	DomainProperty   Domain = "property"
	DomainTour       Domain = "tour"
	DomainRestaurant Domain = "restaurant"
	DomainTransport  Domain = "transport"
	DomainTip        Domain = "tip"
	DomainGeneral    Domain = "general"
)

// Valid reports whether d is a member of the closed domain set.
func (d Domain) Valid() bool {
	switch d {
	case DomainProperty, DomainTour, DomainRestaurant, DomainTransport, DomainTip, DomainGeneral:
		return true
	}
	return false
}

// Granularity indicates whether a page describes one item or a
// guide/listing of many.
type Granularity string

// Granularity values.
const (
	GranularitySpecific Granularity = "specific"
	GranularityGeneral  Granularity = "general"
)

// Provenance tags recorded in the evidence map for values that do not
// originate from a verbatim source quote.
const (
	ProvenanceStructured = "structured_data"
	ProvenanceInferred   = "inferred"
	ProvenanceWebSearch  = "web_search"
	ProvenanceModel      = "model_output"
)

// ExtractionRequest describes a single extraction run.
type ExtractionRequest struct {
	URL string `json:"url"`

	// RawHTML, when set, skips the fetch stage entirely.
	RawHTML string `json:"raw_html,omitempty"`

	// Hints skip the corresponding classification cascade.
	DomainHint      Domain      `json:"domain_hint,omitempty"`
	GranularityHint Granularity `json:"granularity_hint,omitempty"`
}

// Validate returns an error if the request contains invalid fields.
func (r *ExtractionRequest) Validate() error {
	if r.URL == "" && r.RawHTML == "" {
		return Errorf(EINVALID, "extraction request requires a URL or raw HTML")
	}
	if r.DomainHint != "" && !r.DomainHint.Valid() {
		return Errorf(EINVALID, "unknown domain hint %q", r.DomainHint)
	}
	return nil
}

// Enrichment holds the raw outcome of a web-search enrichment pass,
// attached before structured re-extraction.
type Enrichment struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources,omitempty"`
	Citations []string `json:"citations,omitempty"`
}

// Record is the sole durable output of a pipeline run. Fields only ever
// contains keys from the active domain schema's allowed set, and every
// non-empty field carries provenance in Evidence: either a verbatim
// source quote or one of the provenance tags.
type Record struct {
	ID        string `json:"id"`
	SourceURL string `json:"sourceUrl"`

	Domain      Domain      `json:"contentDomain"`
	Granularity Granularity `json:"pageGranularity"`

	Fields     map[string]any     `json:"fields"`
	Evidence   map[string]string  `json:"evidence,omitempty"`
	Confidence map[string]float64 `json:"confidence,omitempty"`

	// ExtractionConfidence is the record-level confidence in [0,1].
	ExtractionConfidence float64 `json:"extractionConfidence"`

	// RawSnapshot holds a truncated copy of the fetched content.
	RawSnapshot string `json:"rawSnapshot,omitempty"`
	ContentHash string `json:"contentHash,omitempty"`
	Language    string `json:"language,omitempty"`

	TokensUsed int         `json:"tokensUsed"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`

	ExtractedAt time.Time `json:"extractedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.SourceURL == "" {
		return Errorf(EINVALID, "record source URL required")
	}
	if !r.Domain.Valid() {
		return Errorf(EINVALID, "record domain %q not in closed set", r.Domain)
	}
	if r.ExtractionConfidence < 0 || r.ExtractionConfidence > 1 {
		return Errorf(EINVALID, "extraction confidence %v out of range", r.ExtractionConfidence)
	}
	return nil
}

// Field returns the value for a field, or nil if absent.
func (r *Record) Field(name string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// SetField stores a value with its provenance and confidence.
func (r *Record) SetField(name string, value any, provenance string, confidence float64) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[name] = value
	if provenance != "" {
		if r.Evidence == nil {
			r.Evidence = make(map[string]string)
		}
		r.Evidence[name] = provenance
	}
	if r.Confidence == nil {
		r.Confidence = make(map[string]float64)
	}
	r.Confidence[name] = ClampConfidence(confidence)
}

// MissingFields returns the subset of candidates that are empty on the record.
func (r *Record) MissingFields(candidates []string) []string {
	var missing []string
	for _, name := range candidates {
		if IsEmpty(r.Field(name)) {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsEmpty reports whether a field value counts as absent for merge and
// escalation purposes: nil, empty string, or zero-length slice/map.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ClampConfidence forces a confidence score into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// RecordStore persists extracted records. Persistence is a collaborator
// concern; implementations are responsible for upsert/dedup keyed by
// source URL.
type RecordStore interface {
	SaveRecord(ctx context.Context, record *Record) error
}
