package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/waypointhq/waypoint"
)

// SqftToSqm converts square feet to square meters.
const SqftToSqm = 0.092903

// Suffixes that route a raw model field into the evidence and confidence
// side maps instead of the field map.
const (
	evidenceSuffix   = "_evidence"
	confidenceSuffix = "_confidence"
)

// defaultFieldConfidence is used when the model omits a confidence or
// returns one that does not parse.
const defaultFieldConfidence = 0.5

// ConversionRates supplies the externally configured exchange rate and
// unit conversions consumed by normalization.
type ConversionRates struct {
	// UnitsPerUSD is the source currency's units per US dollar. Zero
	// means amounts are already in USD.
	UnitsPerUSD float64

	// AreaInSqft indicates that area fields arrive in square feet and
	// must be converted to square meters.
	AreaInSqft bool
}

// Normalizer coerces raw model output into a schema-constrained record.
// Coercion failures degrade the individual field to absent; the record
// as a whole is never aborted.
type Normalizer struct {
	registry waypoint.SchemaRegistry
	rates    ConversionRates
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(registry waypoint.SchemaRegistry, rates ConversionRates) *Normalizer {
	return &Normalizer{registry: registry, rates: rates}
}

// Normalize validates raw fields against the domain schema and builds a
// record. Evidence and confidence companions are split into their side
// maps, values are coerced by field kind, fields outside the allowed set
// are dropped, and domain-specific fields are mirrored onto their
// generic aliases.
func (n *Normalizer) Normalize(fields map[string]any, domain waypoint.Domain) *waypoint.Record {
	schema := n.registry.Schema(domain)
	allowed := schema.Allowed()

	evidence := make(map[string]string)
	confidence := make(map[string]float64)
	values := make(map[string]any)

	for name, v := range fields {
		switch {
		case strings.HasSuffix(name, evidenceSuffix):
			base := strings.TrimSuffix(name, evidenceSuffix)
			if s, ok := v.(string); ok && s != "" {
				evidence[base] = s
			}
		case strings.HasSuffix(name, confidenceSuffix):
			base := strings.TrimSuffix(name, confidenceSuffix)
			confidence[base] = parseConfidence(v)
		default:
			values[name] = v
		}
	}

	record := &waypoint.Record{Domain: domain}
	for name, v := range values {
		if _, ok := allowed[name]; !ok {
			continue
		}
		coerced := n.coerce(schema.Kind(name), v)
		if waypoint.IsEmpty(coerced) {
			continue
		}
		conf, ok := confidence[name]
		if !ok {
			conf = defaultFieldConfidence
		}
		ev := evidence[name]
		if ev == "" {
			// Every populated field keeps a provenance entry even when
			// the model omitted its evidence quote.
			ev = waypoint.ProvenanceModel
		}
		record.SetField(name, coerced, ev, conf)
	}

	// Mirror specific fields onto their generic aliases. The copy is
	// non-destructive: the specific field stays, and a populated
	// generic field is never replaced.
	for _, alias := range schema.Aliases {
		v := record.Field(alias.Specific)
		if waypoint.IsEmpty(v) || !waypoint.IsEmpty(record.Field(alias.Generic)) {
			continue
		}
		record.SetField(alias.Generic, v, record.Evidence[alias.Specific], record.Confidence[alias.Specific])
	}

	record.ExtractionConfidence = meanConfidence(record)
	return record
}

// CoerceField coerces a single value by the kind the domain schema
// assigns to the field. Returns nil when the value does not parse.
func (n *Normalizer) CoerceField(domain waypoint.Domain, field string, value any) any {
	return n.coerce(n.registry.Schema(domain).Kind(field), value)
}

func (n *Normalizer) coerce(kind waypoint.FieldKind, v any) any {
	if v == nil {
		return nil
	}
	switch kind {
	case waypoint.KindPrice:
		f, ok := parseAmount(v)
		if !ok {
			return nil
		}
		if n.rates.UnitsPerUSD > 0 {
			f /= n.rates.UnitsPerUSD
		}
		return round2(f)
	case waypoint.KindInt:
		f, ok := parseAmount(v)
		if !ok {
			return nil
		}
		return int(math.Round(f))
	case waypoint.KindFloat:
		f, ok := parseAmount(v)
		if !ok {
			return nil
		}
		return f
	case waypoint.KindArea:
		f, ok := parseAmount(v)
		if !ok {
			return nil
		}
		if n.rates.AreaInSqft {
			f *= SqftToSqm
		}
		return round2(f)
	case waypoint.KindDate:
		return coerceDate(v)
	case waypoint.KindList:
		return coerceList(v)
	case waypoint.KindBool:
		return coerceBool(v)
	default:
		return coerceString(v)
	}
}

// VerifyEvidence checks that each verbatim evidence quote actually
// appears in the source content. An unverified quote downgrades that
// field's confidence by 0.1; provenance tags are exempt since they never
// claim to be quotes. The record-level confidence is recomputed.
func VerifyEvidence(record *waypoint.Record, content string) {
	for name, quote := range record.Evidence {
		switch quote {
		case waypoint.ProvenanceStructured, waypoint.ProvenanceInferred, waypoint.ProvenanceWebSearch, waypoint.ProvenanceModel:
			continue
		}
		if strings.Contains(content, quote) {
			continue
		}
		record.Confidence[name] = waypoint.ClampConfidence(record.Confidence[name] - 0.1)
	}
	record.ExtractionConfidence = meanConfidence(record)
}

// meanConfidence averages the per-field confidences of populated fields.
func meanConfidence(record *waypoint.Record) float64 {
	var sum float64
	var count int
	for name := range record.Fields {
		if waypoint.IsEmpty(record.Field(name)) {
			continue
		}
		conf, ok := record.Confidence[name]
		if !ok {
			conf = defaultFieldConfidence
		}
		sum += conf
		count++
	}
	if count == 0 {
		return defaultFieldConfidence
	}
	return waypoint.ClampConfidence(sum / float64(count))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// parseAmount extracts a numeric value, stripping currency symbols and
// thousands separators from strings.
func parseAmount(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		var sb strings.Builder
		for _, r := range t {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				sb.WriteRune(r)
			}
		}
		cleaned := sb.String()
		if cleaned == "" || cleaned == "-" || cleaned == "." {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func parseConfidence(v any) float64 {
	f, ok := parseAmount(v)
	if !ok {
		return defaultFieldConfidence
	}
	return waypoint.ClampConfidence(f)
}

func coerceDate(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		parsed, err := dateparse.ParseAny(t)
		if err != nil {
			return nil
		}
		return parsed.Format("2006-01-02")
	}
	return nil
}

func coerceList(v any) any {
	switch t := v.(type) {
	case []string:
		return compactStrings(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceString(item); s != nil {
				items = append(items, s.(string))
			}
		}
		return compactStrings(items)
	case string:
		return compactStrings(strings.Split(t, ","))
	}
	return nil
}

func compactStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceBool(v any) any {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	}
	return nil
}

func coerceString(v any) any {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
		return nil
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return nil
}
