// Package waypoint provides an adaptive extraction pipeline for travel
// content. Given a URL it fetches the page through a tiered strategy,
// classifies the content's vertical and granularity, and runs a multi-stage
// LLM-assisted extraction that yields a typed, schema-constrained,
// confidence-scored record. Stages degrade gracefully: only a terminal
// fetch failure or an exhausted extraction retry aborts a run.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, gemini/, goquery/).
package waypoint
