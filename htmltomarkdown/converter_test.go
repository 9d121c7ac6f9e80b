package htmltomarkdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
	"github.com/waypointhq/waypoint/htmltomarkdown"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	md, err := htmltomarkdown.NewConverter().Convert(
		"<h2>Details</h2><p>Three bedrooms, <strong>two</strong> bathrooms.</p>")
	require.NoError(t, err)

	assert.Contains(t, md, "## Details")
	assert.Contains(t, md, "**two**")
}

func TestConverter_PreservesTables(t *testing.T) {
	t.Parallel()

	md, err := htmltomarkdown.NewConverter().Convert(
		"<table><tr><th>Field</th><th>Value</th></tr><tr><td>Bedrooms</td><td>3</td></tr></table>")
	require.NoError(t, err)

	assert.Contains(t, md, "| Bedrooms | 3 |")
}

func TestConverter_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := htmltomarkdown.NewConverter().Convert("   ")
	require.Error(t, err)
	assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
}
