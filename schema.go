package waypoint

// FieldKind drives type coercion during validation.
type FieldKind int

// Field kinds.
const (
	KindString FieldKind = iota
	KindPrice            // decimal amount normalized to USD
	KindInt
	KindFloat
	KindArea // decimal square meters
	KindDate // ISO calendar date string
	KindList // array of strings
	KindBool
)

// FieldAlias mirrors a domain-specific field onto a generic one.
// The copy is non-destructive: the specific field is retained.
type FieldAlias struct {
	Specific string
	Generic  string
}

// FieldSchema describes the allowed fields for one content domain.
type FieldSchema struct {
	Domain Domain

	// Generic fields shared by every domain.
	Generic []string

	// Specific fields only valid for this domain.
	Specific []string

	// Critical fields whose absence triggers escalation and enrichment.
	Critical []string

	// Inferable fields the escalation stage may derive from context.
	Inferable []string

	// Kinds maps field names to coercion kinds. Fields without an entry
	// are treated as strings.
	Kinds map[string]FieldKind

	Aliases []FieldAlias
}

// Allowed returns the set of fields (generic plus specific) that may
// appear on a record for this domain.
func (s *FieldSchema) Allowed() map[string]struct{} {
	allowed := make(map[string]struct{}, len(s.Generic)+len(s.Specific))
	for _, f := range s.Generic {
		allowed[f] = struct{}{}
	}
	for _, f := range s.Specific {
		allowed[f] = struct{}{}
	}
	return allowed
}

// Kind returns the coercion kind for a field, defaulting to KindString.
func (s *FieldSchema) Kind(field string) FieldKind {
	if k, ok := s.Kinds[field]; ok {
		return k
	}
	return KindString
}

// SchemaRegistry provides per-domain field schemas and prompt templates.
// Lookups fail closed: an unknown domain yields a default schema with an
// empty allowed-field list, and an unmatched prompt key yields a generic
// template. Registry methods never return errors.
type SchemaRegistry interface {
	// Schema returns the field schema for a domain.
	Schema(domain Domain) *FieldSchema

	// ExtractionPrompt returns the primary extraction template for a
	// (domain, granularity) pair.
	ExtractionPrompt(domain Domain, granularity Granularity) string

	// InferencePrompt returns the escalation template for a domain.
	InferencePrompt(domain Domain) string

	// ReextractionPrompt returns the template used to parse a search
	// answer into still-missing fields.
	ReextractionPrompt(domain Domain) string
}
