// Package pipeline implements the adaptive extraction pipeline: tiered
// fetching, cascading classification, normalization, escalation,
// enrichment, and the orchestrator that sequences them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/waypointhq/waypoint"
)

// snapshotLimit caps the raw-content snapshot attached to a record.
const snapshotLimit = 10000

// structuredConfidence is assigned to values recovered from embedded
// machine-readable data. Structured data is high trust.
const structuredConfidence = 0.9

// Config wires the pipeline's collaborators. Fetcher, Preextractor,
// Cleaner, Classifier, Extractor, Registry, and Normalizer are
// required; the rest are optional and their stages degrade to no-ops.
type Config struct {
	Fetcher      waypoint.PageFetcher
	Parser       waypoint.PageParser // used when raw HTML is supplied
	Preextractor waypoint.Preextractor
	Cleaner      waypoint.Cleaner
	Classifier   waypoint.Classifier
	Extractor    waypoint.FieldExtractor
	Registry     waypoint.SchemaRegistry
	Normalizer   *Normalizer
	Escalator    *Escalator
	Enricher     *Enricher
	Language     waypoint.LanguageDetector
	Store        waypoint.RecordStore
	Retry        RetryPolicy
	Logger       *slog.Logger
}

// Pipeline sequences the extraction stages for one URL at a time. Runs
// are independent; callers may run multiple URLs concurrently.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline from the config, applying defaults for the
// retry policy and logger.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Fetcher == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires a fetcher")
	case cfg.Preextractor == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires a preextractor")
	case cfg.Cleaner == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires a cleaner")
	case cfg.Classifier == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires a classifier")
	case cfg.Extractor == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires an extractor")
	case cfg.Registry == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires a schema registry")
	case cfg.Normalizer == nil:
		return nil, waypoint.Errorf(waypoint.EINVALID, "pipeline requires a normalizer")
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg}, nil
}

// Run executes one extraction end to end. The only terminal failures
// are an invalid request, a fetch failure, and primary extraction
// failing after its retries are exhausted; every other stage degrades
// to a partial record.
func (p *Pipeline) Run(ctx context.Context, req *waypoint.ExtractionRequest) (*waypoint.Record, error) {
	if req == nil {
		return nil, waypoint.Errorf(waypoint.EINVALID, "extraction request required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fetch, err := p.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	structured, err := p.cfg.Preextractor.Preextract(fetch.HTML)
	if err != nil {
		p.cfg.Logger.Warn("structured-data pre-extraction failed", "url", req.URL, "err", err)
		structured = nil
	}

	cleaned, err := p.cfg.Cleaner.Clean(fetch.HTML)
	if err != nil || cleaned == "" {
		cleaned = fetch.Text
	}
	if cleaned == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "no extractable content at %q", req.URL)
	}

	classification := p.classify(ctx, req, cleaned)

	extraction, err := extractWithRetry(ctx, p.cfg.Retry, func(ctx context.Context) (*waypoint.Extraction, error) {
		return p.cfg.Extractor.ExtractFields(ctx, cleaned, classification.Domain, classification.Granularity)
	})
	if err != nil {
		return nil, err
	}

	if extraction.Fields == nil {
		extraction.Fields = map[string]any{}
	}
	mergeStructured(extraction.Fields, structured)

	record := p.cfg.Normalizer.Normalize(extraction.Fields, classification.Domain)
	record.TokensUsed += extraction.Tokens
	VerifyEvidence(record, cleaned)

	if p.cfg.Escalator != nil {
		record = p.cfg.Escalator.Escalate(ctx, record, cleaned)
	}
	if p.cfg.Enricher != nil {
		record = p.cfg.Enricher.Enrich(ctx, record, req.URL)
	}

	p.attachMetadata(record, req, fetch, classification)

	if p.cfg.Store != nil {
		if err := p.cfg.Store.SaveRecord(ctx, record); err != nil {
			return record, waypoint.Errorf(waypoint.EINTERNAL, "save record: %v", err)
		}
	}

	return record, nil
}

// fetch retrieves the page, or derives a result from caller-supplied
// HTML when present.
func (p *Pipeline) fetch(ctx context.Context, req *waypoint.ExtractionRequest) (*waypoint.RawFetchResult, error) {
	if req.RawHTML == "" {
		return p.cfg.Fetcher.FetchPage(ctx, req.URL)
	}

	result := &waypoint.RawFetchResult{
		HTML:    req.RawHTML,
		Method:  waypoint.FetchProvided,
		Success: true,
	}
	if p.cfg.Parser != nil {
		if info, err := p.cfg.Parser.ParsePage(req.RawHTML, req.URL); err == nil {
			result.Title = info.Title
			result.Text = info.Text
			result.ImageURLs = info.ImageURLs
		}
	}
	return result, nil
}

// classify resolves domain and granularity, honoring hints: a supplied
// hint skips the corresponding cascade entirely, so a hinted tag never
// costs a model call.
func (p *Pipeline) classify(ctx context.Context, req *waypoint.ExtractionRequest, content string) *waypoint.Classification {
	classification := &waypoint.Classification{
		Domain:                req.DomainHint,
		DomainConfidence:      1,
		DomainMethod:          "hint",
		Granularity:           req.GranularityHint,
		GranularityConfidence: 1,
		GranularityMethod:     "hint",
	}
	if req.DomainHint == "" {
		classification.Domain, classification.DomainConfidence, classification.DomainMethod = p.cfg.Classifier.ClassifyDomain(ctx, req.URL, content)
	}
	if req.GranularityHint == "" {
		classification.Granularity, classification.GranularityConfidence, classification.GranularityMethod = p.cfg.Classifier.ClassifyGranularity(ctx, req.URL, content)
	}
	classification.Reasoning = fmt.Sprintf("domain via %s, granularity via %s", classification.DomainMethod, classification.GranularityMethod)
	return classification
}

// mergeStructured fills model fields from pre-extracted structured data.
// The model's positive answer always wins; a structured value lands only
// on a null or empty model field. Merged values carry the structured
// provenance tag and the structured-data confidence.
func mergeStructured(fields map[string]any, structured map[string]any) {
	for name, v := range structured {
		if !waypoint.IsEmpty(fields[name]) || waypoint.IsEmpty(v) {
			continue
		}
		fields[name] = v
		fields[name+evidenceSuffix] = waypoint.ProvenanceStructured
		fields[name+confidenceSuffix] = structuredConfidence
	}
}

func (p *Pipeline) attachMetadata(record *waypoint.Record, req *waypoint.ExtractionRequest, fetch *waypoint.RawFetchResult, classification *waypoint.Classification) {
	record.ID = uuid.New().String()
	record.SourceURL = req.URL
	record.Granularity = classification.Granularity
	record.ContentHash = fmt.Sprintf("%016x", xxhash.Sum64String(fetch.HTML))
	record.ExtractedAt = time.Now().UTC()

	snapshot := fetch.Text
	if snapshot == "" {
		snapshot = fetch.HTML
	}
	if len(snapshot) > snapshotLimit {
		snapshot = snapshot[:snapshotLimit]
	}
	record.RawSnapshot = snapshot

	if p.cfg.Language != nil {
		if code, ok := p.cfg.Language.DetectLanguage(fetch.Text); ok {
			record.Language = code
		}
	}
}
