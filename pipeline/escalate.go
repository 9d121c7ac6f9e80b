package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/waypointhq/waypoint"
)

// inferredConfidence is assigned to values produced by escalation; they
// carry less weight than values backed by an evidence quote.
const inferredConfidence = 0.55

// EscalationPolicy governs how many inference rounds run and which
// domains get the extra aggressive pass. The aggressive pass applies
// domain heuristics before one final inference call.
type EscalationPolicy struct {
	MaxRounds         int
	AggressiveDomains []waypoint.Domain
}

// DefaultEscalationPolicy returns one standard round, with the
// aggressive pass enabled for property listings.
func DefaultEscalationPolicy() EscalationPolicy {
	return EscalationPolicy{
		MaxRounds:         1,
		AggressiveDomains: []waypoint.Domain{waypoint.DomainProperty},
	}
}

func (p EscalationPolicy) aggressive(d waypoint.Domain) bool {
	for _, a := range p.AggressiveDomains {
		if a == d {
			return true
		}
	}
	return false
}

// Escalator runs follow-up inference passes targeting only the
// inferable critical fields still empty after validation. It never fails
// the pipeline: any error is logged and the record keeps its prior
// state. Token usage accumulates on the record regardless of outcome.
type Escalator struct {
	inferrer   waypoint.Inferrer
	registry   waypoint.SchemaRegistry
	normalizer *Normalizer
	policy     EscalationPolicy
	logger     *slog.Logger
}

// NewEscalator creates a new Escalator.
func NewEscalator(inferrer waypoint.Inferrer, registry waypoint.SchemaRegistry, normalizer *Normalizer, policy EscalationPolicy, logger *slog.Logger) *Escalator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Escalator{inferrer: inferrer, registry: registry, normalizer: normalizer, policy: policy, logger: logger}
}

// Escalate fills missing inferable critical fields in place and returns
// the record.
func (e *Escalator) Escalate(ctx context.Context, record *waypoint.Record, content string) *waypoint.Record {
	schema := e.registry.Schema(record.Domain)
	candidates := intersect(schema.Inferable, schema.Critical)
	if len(candidates) == 0 {
		return record
	}

	for round := 0; round < e.policy.MaxRounds; round++ {
		missing := record.MissingFields(candidates)
		if len(missing) == 0 {
			return record
		}
		if !e.infer(ctx, record, missing, content) {
			return record
		}
	}

	if e.policy.aggressive(record.Domain) {
		if missing := record.MissingFields(candidates); len(missing) > 0 {
			e.applyHeuristics(record, schema)
			if missing = record.MissingFields(candidates); len(missing) > 0 {
				e.infer(ctx, record, missing, content)
			}
		}
	}

	return record
}

// infer issues one inference call and merges the answer. Returns false
// when the call failed and further rounds would be pointless.
func (e *Escalator) infer(ctx context.Context, record *waypoint.Record, missing []string, content string) bool {
	extraction, err := e.inferrer.InferFields(ctx, record, missing, content)
	if err != nil {
		e.logger.Warn("escalation inference failed",
			"domain", record.Domain,
			"missing", len(missing),
			"err", err,
		)
		return false
	}

	record.TokensUsed += extraction.Tokens
	mergeInferred(record, extraction.Fields, missing, e.normalizer, waypoint.ProvenanceInferred, inferredConfidence)
	return true
}

// applyHeuristics fills fields derivable without a model call. Land and
// plot listings carry no rooms, so the counts default to zero; a missing
// description is synthesized from the already-known fields.
func (e *Escalator) applyHeuristics(record *waypoint.Record, schema *waypoint.FieldSchema) {
	if isLandListing(record) {
		for _, name := range []string{"bedrooms", "bathrooms", "parking_spaces"} {
			if _, ok := schema.Allowed()[name]; ok && waypoint.IsEmpty(record.Field(name)) {
				record.SetField(name, 0, waypoint.ProvenanceInferred, inferredConfidence)
			}
		}
	}

	if waypoint.IsEmpty(record.Field("description")) {
		if desc := synthesizeDescription(record); desc != "" {
			record.SetField("description", desc, waypoint.ProvenanceInferred, inferredConfidence)
		}
	}
}

// mergeInferred copies answer values onto the record, filling empty
// fields only. Fields outside the requested missing set are ignored, and
// populated fields are never touched.
func mergeInferred(record *waypoint.Record, fields map[string]any, missing []string, normalizer *Normalizer, provenance string, defaultConf float64) {
	wanted := make(map[string]bool, len(missing))
	for _, name := range missing {
		wanted[name] = true
	}

	for name, v := range fields {
		if !wanted[name] || !waypoint.IsEmpty(record.Field(name)) {
			continue
		}
		coerced := normalizer.CoerceField(record.Domain, name, v)
		if waypoint.IsEmpty(coerced) {
			continue
		}
		conf := defaultConf
		if raw, ok := fields[name+confidenceSuffix]; ok {
			conf = parseConfidence(raw)
		}
		record.SetField(name, coerced, provenance, conf)
	}
	record.ExtractionConfidence = meanConfidence(record)
}

func isLandListing(record *waypoint.Record) bool {
	for _, name := range []string{"property_type", "categories", "name"} {
		v := record.Field(name)
		var text string
		switch t := v.(type) {
		case string:
			text = t
		case []string:
			text = strings.Join(t, " ")
		}
		text = strings.ToLower(text)
		if strings.Contains(text, "land") || strings.Contains(text, "plot") {
			return true
		}
	}
	return false
}

func synthesizeDescription(record *waypoint.Record) string {
	name, ok := record.Field("name").(string)
	if !ok || name == "" {
		return ""
	}
	parts := []string{name}
	if loc, ok := record.Field("location").(string); ok && loc != "" {
		parts = append(parts, "in "+loc)
	}
	if price := record.Field("price_usd"); !waypoint.IsEmpty(price) {
		parts = append(parts, fmt.Sprintf("priced at %v USD", price))
	}
	return strings.Join(parts, " ") + "."
}

// intersect returns the elements of a that also appear in b, preserving
// a's order.
func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if inB[s] {
			out = append(out, s)
		}
	}
	return out
}
