package main

import (
	"context"
	"io"

	"github.com/waypointhq/waypoint/pipeline"
)

// Dependencies holds the wired pipeline and I/O for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Pipeline *pipeline.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract a structured record from a URL"`
	Batch   BatchCmd   `cmd:"" help:"Extract records for a file of URLs"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL         string `arg:"" help:"Page URL to extract"`
	Domain      string `short:"d" help:"Domain hint (property, tour, restaurant, transport, tip, general)"`
	Granularity string `short:"g" help:"Granularity hint (specific or general)"`
	HTMLFile    string `name:"html" help:"Read page HTML from a file instead of fetching"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string `arg:"" help:"File with one URL per line"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent extraction limit"`
}
