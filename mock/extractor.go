package mock

import (
	"context"

	"github.com/waypointhq/waypoint"
)

var _ waypoint.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor is a mock implementation of waypoint.FieldExtractor.
type FieldExtractor struct {
	ExtractFieldsFn func(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error)
}

func (e *FieldExtractor) ExtractFields(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error) {
	return e.ExtractFieldsFn(ctx, content, domain, granularity)
}

var _ waypoint.Inferrer = (*Inferrer)(nil)

// Inferrer is a mock implementation of waypoint.Inferrer.
type Inferrer struct {
	InferFieldsFn func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error)
}

func (i *Inferrer) InferFields(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
	return i.InferFieldsFn(ctx, record, missing, content)
}

var _ waypoint.ReExtractor = (*ReExtractor)(nil)

// ReExtractor is a mock implementation of waypoint.ReExtractor.
type ReExtractor struct {
	ReExtractFn func(ctx context.Context, answer string, domain waypoint.Domain, missing []string) (*waypoint.Extraction, error)
}

func (r *ReExtractor) ReExtract(ctx context.Context, answer string, domain waypoint.Domain, missing []string) (*waypoint.Extraction, error) {
	return r.ReExtractFn(ctx, answer, domain, missing)
}

var _ waypoint.Preextractor = (*Preextractor)(nil)

// Preextractor is a mock implementation of waypoint.Preextractor.
type Preextractor struct {
	PreextractFn func(html string) (map[string]any, error)
}

func (p *Preextractor) Preextract(html string) (map[string]any, error) {
	return p.PreextractFn(html)
}

var _ waypoint.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of waypoint.Cleaner.
type Cleaner struct {
	CleanFn func(html string) (string, error)
}

func (c *Cleaner) Clean(html string) (string, error) {
	return c.CleanFn(html)
}

var _ waypoint.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of waypoint.TextExtractor.
type TextExtractor struct {
	ExtractFn func(html string) (*waypoint.ExtractResult, error)
}

func (t *TextExtractor) Extract(html string) (*waypoint.ExtractResult, error) {
	return t.ExtractFn(html)
}

var _ waypoint.Converter = (*Converter)(nil)

// Converter is a mock implementation of waypoint.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ waypoint.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of waypoint.PageParser.
type PageParser struct {
	ParsePageFn func(html, baseURL string) (*waypoint.PageInfo, error)
}

func (p *PageParser) ParsePage(html, baseURL string) (*waypoint.PageInfo, error) {
	return p.ParsePageFn(html, baseURL)
}
