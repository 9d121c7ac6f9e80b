package goquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
	wpquery "github.com/waypointhq/waypoint/goquery"
)

const restaurantHTML = `<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Casa Lumen"/>
<meta property="og:image" content="https://cdn.example.com/hero.jpg"/>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Restaurant",
  "name": "Casa Lumen",
  "telephone": "+34 911 22 33 44",
  "servesCuisine": ["Spanish", "Tapas"],
  "priceRange": "$$",
  "acceptsReservations": "True",
  "address": {
    "@type": "PostalAddress",
    "streetAddress": "Calle Mayor 12",
    "addressLocality": "Madrid",
    "addressCountry": "ES"
  },
  "aggregateRating": {"ratingValue": "4.6", "reviewCount": 412}
}
</script>
</head><body><h1>Casa Lumen</h1></body></html>`

func TestPreextractor_ParsesLinkedData(t *testing.T) {
	t.Parallel()

	fields, err := wpquery.NewPreextractor().Preextract(restaurantHTML)
	require.NoError(t, err)

	assert.Equal(t, "Casa Lumen", fields["name"])
	assert.Equal(t, "+34 911 22 33 44", fields["phone"])
	assert.Equal(t, []string{"Spanish", "Tapas"}, fields["cuisine"])
	assert.Equal(t, "$$", fields["price_tier"])
	assert.Equal(t, true, fields["accepts_reservations"])
	assert.Equal(t, "Calle Mayor 12, Madrid, ES", fields["address"])
	assert.Equal(t, 4.6, fields["rating"])
	assert.Equal(t, 412, fields["review_count"])
	assert.Equal(t, []string{"https://cdn.example.com/hero.jpg"}, fields["images"])
}

func TestPreextractor_Idempotent(t *testing.T) {
	t.Parallel()

	p := wpquery.NewPreextractor()

	first, err := p.Preextract(restaurantHTML)
	require.NoError(t, err)
	second, err := p.Preextract(restaurantHTML)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPreextractor_GraphArray(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">
	{"@graph": [{"@type": "LocalBusiness", "name": "Harbor Tours",
	  "aggregateRating": {"ratingValue": 4.9, "ratingCount": 80}}]}
	</script></head><body></body></html>`

	fields, err := wpquery.NewPreextractor().Preextract(html)
	require.NoError(t, err)

	assert.Equal(t, "Harbor Tours", fields["name"])
	assert.Equal(t, 4.9, fields["rating"])
	assert.Equal(t, 80, fields["review_count"])
}

func TestPreextractor_MalformedBlockIgnored(t *testing.T) {
	t.Parallel()

	html := `<html><head><script type="application/ld+json">{not json</script></head>
	<body></body></html>`

	fields, err := wpquery.NewPreextractor().Preextract(html)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestPreextractor_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := wpquery.NewPreextractor().Preextract("")
	require.Error(t, err)
	assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
}
