package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/waypointhq/waypoint"
	"github.com/waypointhq/waypoint/firecrawl"
	wpgemini "github.com/waypointhq/waypoint/gemini"
	"github.com/waypointhq/waypoint/goquery"
	"github.com/waypointhq/waypoint/htmltomarkdown"
	wphttp "github.com/waypointhq/waypoint/http"
	"github.com/waypointhq/waypoint/lingua"
	"github.com/waypointhq/waypoint/perplexity"
	"github.com/waypointhq/waypoint/pipeline"
	"github.com/waypointhq/waypoint/readability"
	"github.com/waypointhq/waypoint/rod"
	"github.com/waypointhq/waypoint/schema"
	wpslog "github.com/waypointhq/waypoint/slog"
	"github.com/waypointhq/waypoint/trafilatura"
	"google.golang.org/genai"
)

// requestsPerSecond is the per-host fetch rate limit.
const requestsPerSecond = 1.0

func main() {
	ctx := context.Background()

	m := NewMain()
	defer m.Close()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Closers collected while wiring, released on exit.
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("waypoint"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'waypoint --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Pipeline, err = m.buildPipeline(ctx, stderr)
	if err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// buildPipeline wires the full extraction pipeline from environment
// configuration. GEMINI_API_KEY is required; PERPLEXITY_API_KEY and
// FIRECRAWL_API_KEY enable the search and bypass tiers when set.
func (m *Main) buildPipeline(ctx context.Context, stderr io.Writer) (*pipeline.Pipeline, error) {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	registry := schema.NewRegistry()
	// Trafilatura feeds the cleaner's full-page fallback; readability is
	// the lighter extractor behind page metadata derivation.
	parser := goquery.NewPageParser(readability.NewExtractor())
	cleaner := goquery.NewCleaner(trafilatura.NewExtractor(), htmltomarkdown.NewConverter())

	browser, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.closers = append(m.closers, browser)

	limiter := pipeline.NewHostLimiter(requestsPerSecond)
	var strategyOpts []pipeline.StrategyOption
	if fcKey := os.Getenv("FIRECRAWL_API_KEY"); fcKey != "" {
		if hosts := os.Getenv("WAYPOINT_BYPASS_HOSTS"); hosts != "" {
			strategyOpts = append(strategyOpts, pipeline.WithBypass(firecrawl.NewFetcher(fcKey), splitHosts(hosts)...))
		}
	}
	if hosts := os.Getenv("WAYPOINT_JS_HOSTS"); hosts != "" {
		strategyOpts = append(strategyOpts, pipeline.WithJSHosts(splitHosts(hosts)...))
	}
	fetcher := pipeline.NewStrategyFetcher(wphttp.NewFetcher(), browser, parser, limiter, strategyOpts...)

	var searcher waypoint.Searcher
	if pplxKey := os.Getenv("PERPLEXITY_API_KEY"); pplxKey != "" {
		searcher = wpslog.NewLoggingSearcher(perplexity.NewSearcher(pplxKey), logger)
	}

	granularityDetectors := []waypoint.GranularityDetector{
		pipeline.URLGranularityDetector{},
		wpgemini.NewGranularityConfirmer(client),
	}
	domainDetectors := []waypoint.DomainDetector{
		pipeline.KeywordDomainDetector{},
	}
	if searcher != nil {
		domainDetectors = append(domainDetectors, pipeline.NewSearchDomainDetector(searcher, wpgemini.NewDomainParser(client)))
	}

	normalizer := pipeline.NewNormalizer(registry, pipeline.ConversionRates{})

	cfg := pipeline.Config{
		Fetcher:      wpslog.NewLoggingPageFetcher(fetcher, logger),
		Parser:       parser,
		Preextractor: goquery.NewPreextractor(),
		Cleaner:      cleaner,
		Classifier:   pipeline.NewCascadeClassifier(granularityDetectors, domainDetectors),
		Extractor:    wpgemini.NewExtractor(client, registry),
		Registry:     registry,
		Normalizer:   normalizer,
		Escalator:    pipeline.NewEscalator(wpgemini.NewInferrer(client, registry), registry, normalizer, pipeline.DefaultEscalationPolicy(), logger),
		Language:     lingua.NewDetector(),
		Logger:       logger,
	}
	if searcher != nil {
		cfg.Enricher = pipeline.NewEnricher(searcher, wpgemini.NewReExtractor(client, registry), registry, normalizer, logger)
	}

	return pipeline.New(cfg)
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
