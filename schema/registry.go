// Package schema provides the static per-domain field schemas and prompt
// templates used across the extraction pipeline. The registry is built
// once at construction; lookups fail closed and never return errors.
package schema

import "github.com/waypointhq/waypoint"

// Ensure Registry implements waypoint.SchemaRegistry at compile time.
var _ waypoint.SchemaRegistry = (*Registry)(nil)

// genericFields are shared by every domain.
var genericFields = []string{
	"name", "description", "location", "address", "city", "country",
	"price_usd", "rating", "review_count", "images", "categories",
	"phone", "website", "opening_hours", "tips",
}

// genericKinds provides coercion kinds for the generic fields.
var genericKinds = map[string]waypoint.FieldKind{
	"price_usd":    waypoint.KindPrice,
	"rating":       waypoint.KindFloat,
	"review_count": waypoint.KindInt,
	"images":       waypoint.KindList,
	"categories":   waypoint.KindList,
	"tips":         waypoint.KindList,
}

// Registry is the static schema registry.
type Registry struct {
	schemas map[waypoint.Domain]*waypoint.FieldSchema
	prompts map[promptKey]string
	infer   map[waypoint.Domain]string
	reex    map[waypoint.Domain]string
	fallbck *waypoint.FieldSchema
}

type promptKey struct {
	domain      waypoint.Domain
	granularity waypoint.Granularity
}

// NewRegistry builds the registry with all domain schemas and the
// (domain, granularity) prompt lookup table.
func NewRegistry() *Registry {
	r := &Registry{
		schemas: make(map[waypoint.Domain]*waypoint.FieldSchema),
		prompts: make(map[promptKey]string),
		infer:   make(map[waypoint.Domain]string),
		reex:    make(map[waypoint.Domain]string),
		fallbck: &waypoint.FieldSchema{Domain: waypoint.DomainGeneral},
	}

	for _, s := range domainSchemas() {
		r.schemas[s.Domain] = s
	}
	for key, tmpl := range extractionPrompts() {
		r.prompts[key] = tmpl
	}
	for d, tmpl := range inferencePrompts() {
		r.infer[d] = tmpl
	}
	for d, tmpl := range reextractionPrompts() {
		r.reex[d] = tmpl
	}

	return r
}

// Schema returns the field schema for a domain. Unknown domains fail
// closed to a default schema with an empty allowed-field list.
func (r *Registry) Schema(domain waypoint.Domain) *waypoint.FieldSchema {
	if s, ok := r.schemas[domain]; ok {
		return s
	}
	return r.fallbck
}

// ExtractionPrompt returns the primary extraction template for a
// (domain, granularity) pair, falling back to the generic template.
func (r *Registry) ExtractionPrompt(domain waypoint.Domain, granularity waypoint.Granularity) string {
	if tmpl, ok := r.prompts[promptKey{domain, granularity}]; ok {
		return tmpl
	}
	if tmpl, ok := r.prompts[promptKey{domain, waypoint.GranularitySpecific}]; ok {
		return tmpl
	}
	return genericExtractionPrompt
}

// InferencePrompt returns the escalation template for a domain, falling
// back to the shared generic template.
func (r *Registry) InferencePrompt(domain waypoint.Domain) string {
	if tmpl, ok := r.infer[domain]; ok {
		return tmpl
	}
	return genericInferencePrompt
}

// ReextractionPrompt returns the search-answer parsing template for a
// domain, falling back to the shared generic template.
func (r *Registry) ReextractionPrompt(domain waypoint.Domain) string {
	if tmpl, ok := r.reex[domain]; ok {
		return tmpl
	}
	return genericReextractionPrompt
}

// domainSchemas defines the per-domain field tables.
func domainSchemas() []*waypoint.FieldSchema {
	return []*waypoint.FieldSchema{
		{
			Domain:  waypoint.DomainProperty,
			Generic: genericFields,
			Specific: []string{
				"property_title", "property_type", "bedrooms", "bathrooms",
				"parking_spaces", "area_sqm", "land_area_sqm", "floor",
				"year_built", "furnished", "tenure",
			},
			Critical:  []string{"name", "price_usd", "bedrooms", "bathrooms", "area_sqm", "location"},
			Inferable: []string{"bedrooms", "bathrooms", "parking_spaces", "area_sqm", "property_type", "description", "location"},
			Kinds: mergeKinds(map[string]waypoint.FieldKind{
				"bedrooms":       waypoint.KindInt,
				"bathrooms":      waypoint.KindInt,
				"parking_spaces": waypoint.KindInt,
				"area_sqm":       waypoint.KindArea,
				"land_area_sqm":  waypoint.KindArea,
				"floor":          waypoint.KindInt,
				"year_built":     waypoint.KindInt,
				"furnished":      waypoint.KindBool,
			}),
			Aliases: []waypoint.FieldAlias{
				{Specific: "property_title", Generic: "name"},
				{Specific: "property_type", Generic: "categories"},
			},
		},
		{
			Domain:  waypoint.DomainTour,
			Generic: genericFields,
			Specific: []string{
				"tour_name", "duration_hours", "group_size_max", "languages",
				"included", "excluded", "meeting_point", "difficulty",
				"departure_days", "child_friendly",
			},
			Critical:  []string{"name", "price_usd", "duration_hours", "location"},
			Inferable: []string{"duration_hours", "group_size_max", "difficulty", "description", "included"},
			Kinds: mergeKinds(map[string]waypoint.FieldKind{
				"duration_hours": waypoint.KindFloat,
				"group_size_max": waypoint.KindInt,
				"languages":      waypoint.KindList,
				"included":       waypoint.KindList,
				"excluded":       waypoint.KindList,
				"departure_days": waypoint.KindList,
				"child_friendly": waypoint.KindBool,
			}),
			Aliases: []waypoint.FieldAlias{
				{Specific: "tour_name", Generic: "name"},
				{Specific: "meeting_point", Generic: "address"},
			},
		},
		{
			Domain:  waypoint.DomainRestaurant,
			Generic: genericFields,
			Specific: []string{
				"cuisine", "price_tier", "accepts_reservations",
				"signature_dishes", "dietary_options", "seating_capacity",
				"dress_code",
			},
			Critical:  []string{"name", "cuisine", "address", "location"},
			Inferable: []string{"cuisine", "price_tier", "dietary_options", "description"},
			Kinds: mergeKinds(map[string]waypoint.FieldKind{
				"cuisine":              waypoint.KindList,
				"accepts_reservations": waypoint.KindBool,
				"signature_dishes":     waypoint.KindList,
				"dietary_options":      waypoint.KindList,
				"seating_capacity":     waypoint.KindInt,
			}),
			Aliases: []waypoint.FieldAlias{
				{Specific: "cuisine", Generic: "categories"},
			},
		},
		{
			Domain:  waypoint.DomainTransport,
			Generic: genericFields,
			Specific: []string{
				"origin", "destination", "duration_minutes", "operator",
				"frequency", "ticket_price_usd", "route_type",
				"first_departure", "last_departure",
			},
			Critical:  []string{"name", "origin", "destination", "ticket_price_usd"},
			Inferable: []string{"duration_minutes", "frequency", "route_type", "description"},
			Kinds: mergeKinds(map[string]waypoint.FieldKind{
				"duration_minutes": waypoint.KindInt,
				"ticket_price_usd": waypoint.KindPrice,
			}),
			Aliases: []waypoint.FieldAlias{
				{Specific: "ticket_price_usd", Generic: "price_usd"},
			},
		},
		{
			Domain:  waypoint.DomainTip,
			Generic: genericFields,
			Specific: []string{
				"topic", "audience", "season", "related_places", "published_date",
			},
			Critical:  []string{"name", "topic"},
			Inferable: []string{"topic", "audience", "season", "description"},
			Kinds: mergeKinds(map[string]waypoint.FieldKind{
				"related_places": waypoint.KindList,
				"published_date": waypoint.KindDate,
			}),
			Aliases: []waypoint.FieldAlias{
				{Specific: "topic", Generic: "categories"},
			},
		},
		{
			Domain:    waypoint.DomainGeneral,
			Generic:   genericFields,
			Critical:  []string{"name"},
			Inferable: []string{"description", "location"},
			Kinds:     mergeKinds(nil),
		},
	}
}

func mergeKinds(specific map[string]waypoint.FieldKind) map[string]waypoint.FieldKind {
	kinds := make(map[string]waypoint.FieldKind, len(genericKinds)+len(specific))
	for k, v := range genericKinds {
		kinds[k] = v
	}
	for k, v := range specific {
		kinds[k] = v
	}
	return kinds
}
