package mock

import "github.com/waypointhq/waypoint"

var _ waypoint.SchemaRegistry = (*SchemaRegistry)(nil)

// SchemaRegistry is a mock implementation of waypoint.SchemaRegistry.
type SchemaRegistry struct {
	SchemaFn             func(domain waypoint.Domain) *waypoint.FieldSchema
	ExtractionPromptFn   func(domain waypoint.Domain, granularity waypoint.Granularity) string
	InferencePromptFn    func(domain waypoint.Domain) string
	ReextractionPromptFn func(domain waypoint.Domain) string
}

func (r *SchemaRegistry) Schema(domain waypoint.Domain) *waypoint.FieldSchema {
	return r.SchemaFn(domain)
}

func (r *SchemaRegistry) ExtractionPrompt(domain waypoint.Domain, granularity waypoint.Granularity) string {
	if r.ExtractionPromptFn == nil {
		return ""
	}
	return r.ExtractionPromptFn(domain, granularity)
}

func (r *SchemaRegistry) InferencePrompt(domain waypoint.Domain) string {
	if r.InferencePromptFn == nil {
		return ""
	}
	return r.InferencePromptFn(domain)
}

func (r *SchemaRegistry) ReextractionPrompt(domain waypoint.Domain) string {
	if r.ReextractionPromptFn == nil {
		return ""
	}
	return r.ReextractionPromptFn(domain)
}
