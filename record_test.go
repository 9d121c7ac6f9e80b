package waypoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
)

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"string", "x", false},
		{"empty slice", []string{}, true},
		{"slice", []string{"a"}, false},
		{"empty any slice", []any{}, true},
		{"empty map", map[string]any{}, true},
		{"zero int", 0, false},
		{"float", 1.5, false},
		{"false", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, waypoint.IsEmpty(tt.value))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, waypoint.ClampConfidence(-0.3))
	assert.Equal(t, 1.0, waypoint.ClampConfidence(1.7))
	assert.Equal(t, 0.5, waypoint.ClampConfidence(0.5))
}

func TestRecord_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		rec := &waypoint.Record{
			SourceURL:            "https://example.com/tour/1",
			Domain:               waypoint.DomainTour,
			ExtractionConfidence: 0.8,
		}
		require.NoError(t, rec.Validate())
	})

	t.Run("missing source URL", func(t *testing.T) {
		t.Parallel()
		rec := &waypoint.Record{Domain: waypoint.DomainTour}
		err := rec.Validate()
		require.Error(t, err)
		assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
	})

	t.Run("unknown domain", func(t *testing.T) {
		t.Parallel()
		rec := &waypoint.Record{SourceURL: "https://example.com", Domain: "hotel"}
		err := rec.Validate()
		require.Error(t, err)
		assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		t.Parallel()
		rec := &waypoint.Record{
			SourceURL:            "https://example.com",
			Domain:               waypoint.DomainGeneral,
			ExtractionConfidence: 1.2,
		}
		err := rec.Validate()
		require.Error(t, err)
		assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
	})
}

func TestRecord_SetField_TracksProvenance(t *testing.T) {
	t.Parallel()

	rec := &waypoint.Record{}
	rec.SetField("rating", 4.5, "Rated 4.5 out of 5", 0.9)
	rec.SetField("bedrooms", 2, waypoint.ProvenanceInferred, 2.0)

	assert.Equal(t, 4.5, rec.Field("rating"))
	assert.Equal(t, "Rated 4.5 out of 5", rec.Evidence["rating"])
	assert.Equal(t, waypoint.ProvenanceInferred, rec.Evidence["bedrooms"])
	assert.Equal(t, 1.0, rec.Confidence["bedrooms"]) // clamped
}

func TestRecord_MissingFields(t *testing.T) {
	t.Parallel()

	rec := &waypoint.Record{Fields: map[string]any{
		"name":     "Villa Aria",
		"bedrooms": nil,
		"images":   []string{},
	}}

	missing := rec.MissingFields([]string{"name", "bedrooms", "images", "price_usd"})
	assert.Equal(t, []string{"bedrooms", "images", "price_usd"}, missing)
}

func TestExtractionRequest_Validate(t *testing.T) {
	t.Parallel()

	req := &waypoint.ExtractionRequest{}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))

	req = &waypoint.ExtractionRequest{URL: "https://example.com", DomainHint: "castle"}
	err = req.Validate()
	require.Error(t, err)

	req = &waypoint.ExtractionRequest{URL: "https://example.com", DomainHint: waypoint.DomainTour}
	require.NoError(t, req.Validate())
}
