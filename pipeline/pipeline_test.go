package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
	"github.com/waypointhq/waypoint/mock"
	"github.com/waypointhq/waypoint/pipeline"
	"github.com/waypointhq/waypoint/schema"
)

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	registry := schema.NewRegistry()
	normalizer := pipeline.NewNormalizer(registry, pipeline.ConversionRates{})

	baseConfig := func() pipeline.Config {
		return pipeline.Config{
			Fetcher: &mock.PageFetcher{
				FetchPageFn: func(ctx context.Context, url string) (*waypoint.RawFetchResult, error) {
					return &waypoint.RawFetchResult{
						HTML:    "<html><body><p>Warung Nia serves Balinese food.</p></body></html>",
						Text:    "Warung Nia serves Balinese food.",
						Title:   "Warung Nia",
						Method:  waypoint.FetchHTTP,
						Success: true,
					}, nil
				},
			},
			Parser: &mock.PageParser{
				ParsePageFn: func(html, baseURL string) (*waypoint.PageInfo, error) {
					return &waypoint.PageInfo{Title: "Provided", Text: "provided text content"}, nil
				},
			},
			Preextractor: &mock.Preextractor{
				PreextractFn: func(html string) (map[string]any, error) {
					return nil, nil
				},
			},
			Cleaner: &mock.Cleaner{
				CleanFn: func(html string) (string, error) {
					return "Warung Nia serves Balinese food.", nil
				},
			},
			Classifier: pipeline.NewCascadeClassifier(
				[]waypoint.GranularityDetector{pipeline.URLGranularityDetector{}},
				[]waypoint.DomainDetector{pipeline.KeywordDomainDetector{}},
			),
			Extractor: &mock.FieldExtractor{
				ExtractFieldsFn: func(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error) {
					return &waypoint.Extraction{Fields: map[string]any{
						"name":          "Warung Nia",
						"name_evidence": "Warung Nia serves Balinese food.",
					}, Tokens: 120}, nil
				},
			},
			Registry:   registry,
			Normalizer: normalizer,
			Retry:      fastRetry(),
		}
	}

	t.Run("produces a complete record with metadata", func(t *testing.T) {
		t.Parallel()

		p, err := pipeline.New(baseConfig())
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		require.NoError(t, record.Validate())
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "https://example.com/restaurant/warung-nia", record.SourceURL)
		assert.Equal(t, waypoint.DomainRestaurant, record.Domain)
		assert.Equal(t, waypoint.GranularitySpecific, record.Granularity)
		assert.Equal(t, "Warung Nia", record.Field("name"))
		assert.Equal(t, 120, record.TokensUsed)
		assert.NotEmpty(t, record.ContentHash)
		assert.NotEmpty(t, record.RawSnapshot)
		assert.False(t, record.ExtractedAt.IsZero())
	})

	t.Run("structured data fills only empty model fields", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Preextractor = &mock.Preextractor{
			PreextractFn: func(html string) (map[string]any, error) {
				return map[string]any{
					"name":   "Name From JSON-LD",
					"rating": 4.5,
				}, nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		assert.Equal(t, "Warung Nia", record.Field("name"), "model's positive answer wins")
		assert.Equal(t, 4.5, record.Field("rating"), "structured value fills the empty field")
		assert.Equal(t, waypoint.ProvenanceStructured, record.Evidence["rating"])
	})

	t.Run("structured data merges into a nil extraction field map", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Preextractor = &mock.Preextractor{
			PreextractFn: func(html string) (map[string]any, error) {
				return map[string]any{"rating": 4.5}, nil
			},
		}
		cfg.Extractor = &mock.FieldExtractor{
			ExtractFieldsFn: func(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error) {
				return &waypoint.Extraction{}, nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		assert.Equal(t, 4.5, record.Field("rating"))
		assert.Equal(t, waypoint.ProvenanceStructured, record.Evidence["rating"])
	})

	t.Run("a single hint suppresses only its own cascade", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Classifier = &mock.Classifier{
			ClassifyDomainFn: func(ctx context.Context, url, content string) (waypoint.Domain, float64, string) {
				return waypoint.DomainRestaurant, 0.7, "keyword"
			},
			ClassifyGranularityFn: func(ctx context.Context, url, content string) (waypoint.Granularity, float64, string) {
				t.Error("granularity cascade should not run when hinted")
				return "", 0, ""
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL:             "https://example.com/anything",
			GranularityHint: waypoint.GranularityGeneral,
		})

		require.NoError(t, err)
		assert.Equal(t, waypoint.DomainRestaurant, record.Domain)
		assert.Equal(t, waypoint.GranularityGeneral, record.Granularity)
	})

	t.Run("hints skip classification", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Classifier = &mock.Classifier{
			ClassifyDomainFn: func(ctx context.Context, url, content string) (waypoint.Domain, float64, string) {
				t.Error("domain cascade should not run with both hints set")
				return "", 0, ""
			},
			ClassifyGranularityFn: func(ctx context.Context, url, content string) (waypoint.Granularity, float64, string) {
				t.Error("granularity cascade should not run with both hints set")
				return "", 0, ""
			},
		}
		var gotDomain waypoint.Domain
		var gotGranularity waypoint.Granularity
		cfg.Extractor = &mock.FieldExtractor{
			ExtractFieldsFn: func(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error) {
				gotDomain, gotGranularity = domain, granularity
				return &waypoint.Extraction{Fields: map[string]any{"name": "X"}}, nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL:             "https://example.com/anything",
			DomainHint:      waypoint.DomainTour,
			GranularityHint: waypoint.GranularityGeneral,
		})

		require.NoError(t, err)
		assert.Equal(t, waypoint.DomainTour, gotDomain)
		assert.Equal(t, waypoint.GranularityGeneral, gotGranularity)
		assert.Equal(t, waypoint.DomainTour, record.Domain)
		assert.Equal(t, waypoint.GranularityGeneral, record.Granularity)
	})

	t.Run("raw HTML skips the fetch stage", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Fetcher = &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*waypoint.RawFetchResult, error) {
				t.Fatal("fetcher should not run when raw HTML is supplied")
				return nil, nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL:     "https://example.com/restaurant/warung-nia",
			RawHTML: "<html><body><p>supplied</p></body></html>",
		})

		require.NoError(t, err)
		assert.Equal(t, "provided text content", record.RawSnapshot)
	})

	t.Run("fetch failure is terminal", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Fetcher = &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*waypoint.RawFetchResult, error) {
				return nil, waypoint.Errorf(waypoint.EUNAVAILABLE, "all tiers failed")
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		_, err = p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.Error(t, err)
		assert.Equal(t, waypoint.EUNAVAILABLE, waypoint.ErrorCode(err))
	})

	t.Run("pre-extraction failure degrades gracefully", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Preextractor = &mock.Preextractor{
			PreextractFn: func(html string) (map[string]any, error) {
				return nil, waypoint.Errorf(waypoint.EINTERNAL, "parse failure")
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		assert.Equal(t, "Warung Nia", record.Field("name"))
	})

	t.Run("cleaner failure falls back to page text", func(t *testing.T) {
		t.Parallel()

		cfg := baseConfig()
		cfg.Cleaner = &mock.Cleaner{
			CleanFn: func(html string) (string, error) {
				return "", waypoint.Errorf(waypoint.EINTERNAL, "cleaner blew up")
			},
		}
		var gotContent string
		cfg.Extractor = &mock.FieldExtractor{
			ExtractFieldsFn: func(ctx context.Context, content string, domain waypoint.Domain, granularity waypoint.Granularity) (*waypoint.Extraction, error) {
				gotContent = content
				return &waypoint.Extraction{Fields: map[string]any{"name": "X"}}, nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		_, err = p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		assert.Equal(t, "Warung Nia serves Balinese food.", gotContent)
	})

	t.Run("saves the record when a store is configured", func(t *testing.T) {
		t.Parallel()

		var saved *waypoint.Record
		cfg := baseConfig()
		cfg.Store = &mock.RecordStore{
			SaveRecordFn: func(ctx context.Context, record *waypoint.Record) error {
				saved = record
				return nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Same(t, record, saved)
	})

	t.Run("snapshot is capped", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", 25000)
		cfg := baseConfig()
		cfg.Fetcher = &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*waypoint.RawFetchResult, error) {
				return &waypoint.RawFetchResult{HTML: "<html>x</html>", Text: long, Method: waypoint.FetchHTTP, Success: true}, nil
			},
		}

		p, err := pipeline.New(cfg)
		require.NoError(t, err)

		record, err := p.Run(context.Background(), &waypoint.ExtractionRequest{
			URL: "https://example.com/restaurant/warung-nia",
		})

		require.NoError(t, err)
		assert.Len(t, record.RawSnapshot, 10000)
	})

	t.Run("rejects an empty request", func(t *testing.T) {
		t.Parallel()

		p, err := pipeline.New(baseConfig())
		require.NoError(t, err)

		_, err = p.Run(context.Background(), &waypoint.ExtractionRequest{})

		require.Error(t, err)
		assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
	})
}

func TestPipeline_New_RequiresCoreCollaborators(t *testing.T) {
	t.Parallel()

	_, err := pipeline.New(pipeline.Config{})

	require.Error(t, err)
	assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
}
