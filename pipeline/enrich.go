package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/waypointhq/waypoint"
)

// webSearchConfidence is assigned to values recovered from an external
// search answer.
const webSearchConfidence = 0.5

// Enricher recovers critical fields missing after escalation by issuing
// one external search call and structuring its answer with a follow-up
// re-extraction call. It never fails the pipeline: on any error the
// record keeps its prior state, with a successfully fetched answer still
// attached as enrichment context.
type Enricher struct {
	searcher    waypoint.Searcher
	reextractor waypoint.ReExtractor
	registry    waypoint.SchemaRegistry
	normalizer  *Normalizer
	logger      *slog.Logger
}

// NewEnricher creates a new Enricher.
func NewEnricher(searcher waypoint.Searcher, reextractor waypoint.ReExtractor, registry waypoint.SchemaRegistry, normalizer *Normalizer, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{searcher: searcher, reextractor: reextractor, registry: registry, normalizer: normalizer, logger: logger}
}

// Enrich runs the conditional enrichment pass in place and returns the
// record. It is a no-op when every critical field is populated or no
// search backend is configured.
func (e *Enricher) Enrich(ctx context.Context, record *waypoint.Record, pageURL string) *waypoint.Record {
	if e.searcher == nil {
		return record
	}

	schema := e.registry.Schema(record.Domain)
	missing := record.MissingFields(schema.Critical)
	if len(missing) == 0 {
		return record
	}

	query := buildEnrichmentQuery(record, pageURL, missing)
	answer, err := e.searcher.Search(ctx, query)
	if err != nil || answer == nil || answer.Answer == "" {
		e.logger.Warn("enrichment search failed",
			"domain", record.Domain,
			"missing", len(missing),
			"err", err,
		)
		return record
	}

	record.Enrichment = &waypoint.Enrichment{
		Answer:    answer.Answer,
		Sources:   answer.Sources,
		Citations: answer.Citations,
	}
	record.TokensUsed += answer.Tokens

	if e.reextractor == nil {
		return record
	}
	extraction, err := e.reextractor.ReExtract(ctx, answer.Answer, record.Domain, missing)
	if err != nil {
		e.logger.Warn("enrichment re-extraction failed", "domain", record.Domain, "err", err)
		return record
	}
	record.TokensUsed += extraction.Tokens
	mergeInferred(record, extraction.Fields, missing, e.normalizer, waypoint.ProvenanceWebSearch, webSearchConfidence)

	return record
}

// buildEnrichmentQuery combines the record's identifying fields with the
// missing field names into a short search query.
func buildEnrichmentQuery(record *waypoint.Record, pageURL string, missing []string) string {
	var parts []string
	for _, name := range []string{"name", "location", "address", "city", "country"} {
		if v, ok := record.Field(name).(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, pageURL)
	}

	var sb strings.Builder
	sb.WriteString(string(record.Domain))
	sb.WriteString(" ")
	sb.WriteString(strings.Join(parts, " "))
	sb.WriteString(": ")
	sb.WriteString(strings.Join(missing, ", "))
	return sb.String()
}
