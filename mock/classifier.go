package mock

import (
	"context"

	"github.com/waypointhq/waypoint"
)

var _ waypoint.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of waypoint.Classifier.
type Classifier struct {
	ClassifyFn            func(ctx context.Context, url, content string) *waypoint.Classification
	ClassifyDomainFn      func(ctx context.Context, url, content string) (waypoint.Domain, float64, string)
	ClassifyGranularityFn func(ctx context.Context, url, content string) (waypoint.Granularity, float64, string)
}

func (c *Classifier) Classify(ctx context.Context, url, content string) *waypoint.Classification {
	return c.ClassifyFn(ctx, url, content)
}

func (c *Classifier) ClassifyDomain(ctx context.Context, url, content string) (waypoint.Domain, float64, string) {
	return c.ClassifyDomainFn(ctx, url, content)
}

func (c *Classifier) ClassifyGranularity(ctx context.Context, url, content string) (waypoint.Granularity, float64, string) {
	return c.ClassifyGranularityFn(ctx, url, content)
}

var _ waypoint.GranularityDetector = (*GranularityDetector)(nil)

// GranularityDetector is a mock implementation of waypoint.GranularityDetector.
type GranularityDetector struct {
	DetectGranularityFn func(ctx context.Context, url, content string) (waypoint.Granularity, float64, string, bool)
}

func (d *GranularityDetector) DetectGranularity(ctx context.Context, url, content string) (waypoint.Granularity, float64, string, bool) {
	return d.DetectGranularityFn(ctx, url, content)
}

var _ waypoint.DomainDetector = (*DomainDetector)(nil)

// DomainDetector is a mock implementation of waypoint.DomainDetector.
type DomainDetector struct {
	DetectDomainFn func(ctx context.Context, url, content string) (waypoint.Domain, float64, string, bool)
}

func (d *DomainDetector) DetectDomain(ctx context.Context, url, content string) (waypoint.Domain, float64, string, bool) {
	return d.DetectDomainFn(ctx, url, content)
}

var _ waypoint.DomainParser = (*DomainParser)(nil)

// DomainParser is a mock implementation of waypoint.DomainParser.
type DomainParser struct {
	ParseDomainFn func(ctx context.Context, text string) (waypoint.Domain, error)
}

func (p *DomainParser) ParseDomain(ctx context.Context, text string) (waypoint.Domain, error) {
	return p.ParseDomainFn(ctx, text)
}

var _ waypoint.LanguageDetector = (*LanguageDetector)(nil)

// LanguageDetector is a mock implementation of waypoint.LanguageDetector.
type LanguageDetector struct {
	DetectLanguageFn func(text string) (string, bool)
}

func (d *LanguageDetector) DetectLanguage(text string) (string, bool) {
	return d.DetectLanguageFn(text)
}
