package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/waypointhq/waypoint"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	req := &waypoint.ExtractionRequest{
		URL:             c.URL,
		DomainHint:      waypoint.Domain(c.Domain),
		GranularityHint: waypoint.Granularity(c.Granularity),
	}
	if c.HTMLFile != "" {
		html, err := os.ReadFile(c.HTMLFile)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", c.HTMLFile, err)
		}
		req.RawHTML = string(html)
	}

	record, err := deps.Pipeline.Run(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", waypoint.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}
