package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/waypointhq/waypoint"
	"golang.org/x/sync/errgroup"
)

// Run executes the batch command. URLs are processed concurrently up to
// the configured limit; individual failures are reported and do not stop
// the batch.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := readURLs(c.File)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %q", c.File)
	}

	var mu sync.Mutex // guards stdout/stderr interleaving
	var failed int

	g, gctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)
	for _, url := range urls {
		g.Go(func() error {
			record, err := deps.Pipeline.Run(gctx, &waypoint.ExtractionRequest{URL: url})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(deps.Stderr, "error: %s: %s\n", url, waypoint.ErrorMessage(err))
				return nil
			}
			return json.NewEncoder(deps.Stdout).Encode(record)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stderr, "%d extracted, %d failed\n", len(urls)-failed, failed)
	return nil
}

// readURLs loads one URL per line, skipping blanks and # comments.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
