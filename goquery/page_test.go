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

func TestPageParser_TitleTextAndImages(t *testing.T) {
	t.Parallel()

	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		return &waypoint.ExtractResult{Title: "meta title", Text: "main text"}, nil
	}}

	html := `<html><head><title> Villa Aria </title></head><body>
	<img src="/photos/1.jpg"><img src="https://cdn.example.com/2.jpg">
	<img src="/photos/1.jpg"><img src="data:image/png;base64,xx">
	<img src="/logo.svg"><img src="/pixel.gif" width="1">
	</body></html>`

	info, err := wpquery.NewPageParser(text).ParsePage(html, "https://example.com/listing/1")
	require.NoError(t, err)

	assert.Equal(t, "Villa Aria", info.Title)
	assert.Equal(t, "main text", info.Text)
	assert.Equal(t, []string{
		"https://example.com/photos/1.jpg",
		"https://cdn.example.com/2.jpg",
	}, info.ImageURLs)
}

func TestPageParser_CapsImageCount(t *testing.T) {
	t.Parallel()

	var imgs strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&imgs, `<img src="/img/%d.jpg">`, i)
	}

	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		return &waypoint.ExtractResult{Text: "t"}, nil
	}}

	info, err := wpquery.NewPageParser(text).ParsePage(
		"<html><body>"+imgs.String()+"</body></html>", "https://example.com")
	require.NoError(t, err)

	assert.Len(t, info.ImageURLs, waypoint.MaxImageURLs)
}

func TestPageParser_DegradesWhenTextExtractionFails(t *testing.T) {
	t.Parallel()

	text := &mock.TextExtractor{ExtractFn: func(string) (*waypoint.ExtractResult, error) {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "boom")
	}}

	info, err := wpquery.NewPageParser(text).ParsePage(
		"<html><head><title>T</title></head><body><p>visible text</p></body></html>",
		"https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "T", info.Title)
	assert.Contains(t, info.Text, "visible text")
}
