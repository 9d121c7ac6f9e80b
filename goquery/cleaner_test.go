package goquery_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
	wpquery "github.com/waypointhq/waypoint/goquery"
	"github.com/waypointhq/waypoint/mock"
)

func listingHTML() string {
	var items strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&items, "<li>Feature %d</li>", i)
	}
	return `<html><head><title>Villa Aria</title></head><body>
	<h1>Villa Aria</h1>
	<h2>Details</h2>
	<div class="price-box">USD 250,000</div>
	<section id="property-details"><table><tr><td>Bedrooms</td><td>3</td></tr></table></section>
	<ul>` + items.String() + `</ul>
	<p>A bright villa close to the beach.</p>
	<p>Recently renovated.</p>
	<script>window.__DATA__ = {"bedrooms": 3, "bathrooms": 2, "area": 150};</script>
	</body></html>`
}

func TestCleaner_CollectsSemanticFragments(t *testing.T) {
	t.Parallel()

	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		t.Fatal("fallback should not be used")
		return nil, nil
	}}

	cleaner := wpquery.NewCleaner(text, nil)
	out, err := cleaner.Clean(listingHTML())
	require.NoError(t, err)

	assert.Contains(t, out, "Villa Aria")
	assert.Contains(t, out, "USD 250,000")
	assert.Contains(t, out, "Bedrooms | 3")
	assert.Contains(t, out, "Feature 0")
	assert.Contains(t, out, `"bedrooms": 3`)
	assert.Contains(t, out, "bright villa")
}

func TestCleaner_FallsBackOnSparsePages(t *testing.T) {
	t.Parallel()

	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		return &waypoint.ExtractResult{Text: "full page text"}, nil
	}}

	cleaner := wpquery.NewCleaner(text, nil)
	out, err := cleaner.Clean("<html><body><p>only one paragraph</p></body></html>")
	require.NoError(t, err)

	assert.Equal(t, "full page text", out)
}

func TestCleaner_CapsLength(t *testing.T) {
	t.Parallel()

	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		return &waypoint.ExtractResult{Text: strings.Repeat("x", 500)}, nil
	}}

	cleaner := wpquery.NewCleaner(text, nil, wpquery.WithMaxChars(100))
	out, err := cleaner.Clean("<html><body><p>sparse</p></body></html>")
	require.NoError(t, err)

	assert.Contains(t, out, "[content truncated]")
	assert.Len(t, out, 100+len("\n[content truncated]"))
}

func TestCleaner_ConverterKeepsTableStructure(t *testing.T) {
	t.Parallel()

	converter := &mock.Converter{ConvertFn: func(html string) (string, error) {
		return "| Bedrooms | 3 |", nil
	}}
	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		return &waypoint.ExtractResult{Text: "fallback"}, nil
	}}

	cleaner := wpquery.NewCleaner(text, converter, wpquery.WithMinFragments(1))
	out, err := cleaner.Clean(`<html><body>
	<div class="detail-table"><table><tr><td>Bedrooms</td><td>3</td></tr></table></div>
	</body></html>`)
	require.NoError(t, err)

	assert.Contains(t, out, "| Bedrooms | 3 |")
}

func TestCleaner_EmptyInput(t *testing.T) {
	t.Parallel()

	cleaner := wpquery.NewCleaner(nil, nil)
	_, err := cleaner.Clean("")
	require.Error(t, err)
	assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
}
