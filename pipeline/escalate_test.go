package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
	"github.com/waypointhq/waypoint/mock"
	"github.com/waypointhq/waypoint/pipeline"
	"github.com/waypointhq/waypoint/schema"
)

func TestEscalator_Escalate(t *testing.T) {
	t.Parallel()

	registry := schema.NewRegistry()
	normalizer := pipeline.NewNormalizer(registry, pipeline.ConversionRates{})

	t.Run("fills only the missing fields", func(t *testing.T) {
		t.Parallel()

		inferrer := &mock.Inferrer{
			InferFieldsFn: func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
				assert.Contains(t, missing, "bedrooms")
				assert.NotContains(t, missing, "location", "populated fields are not requested")
				return &waypoint.Extraction{Fields: map[string]any{"bedrooms": 3}, Tokens: 50}, nil
			},
		}

		e := pipeline.NewEscalator(inferrer, registry, normalizer, pipeline.DefaultEscalationPolicy(), nil)
		record := &waypoint.Record{Domain: waypoint.DomainProperty}
		record.SetField("location", "Ubud", "quote", 0.8)

		e.Escalate(context.Background(), record, "content")

		assert.Equal(t, 3, record.Field("bedrooms"))
		assert.Equal(t, waypoint.ProvenanceInferred, record.Evidence["bedrooms"])
		assert.Equal(t, 50, record.TokensUsed)
	})

	t.Run("never overwrites a populated field", func(t *testing.T) {
		t.Parallel()

		inferrer := &mock.Inferrer{
			InferFieldsFn: func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
				return &waypoint.Extraction{Fields: map[string]any{
					"location": "WRONG PLACE",
					"bedrooms": 2,
				}}, nil
			},
		}

		e := pipeline.NewEscalator(inferrer, registry, normalizer, pipeline.DefaultEscalationPolicy(), nil)
		record := &waypoint.Record{Domain: waypoint.DomainProperty}
		record.SetField("location", "Canggu", "quote", 0.9)

		e.Escalate(context.Background(), record, "content")

		assert.Equal(t, "Canggu", record.Field("location"))
		assert.Equal(t, 2, record.Field("bedrooms"))
	})

	t.Run("no-op when nothing is missing", func(t *testing.T) {
		t.Parallel()

		inferrer := &mock.Inferrer{
			InferFieldsFn: func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
				t.Fatal("inference should not run")
				return nil, nil
			},
		}

		e := pipeline.NewEscalator(inferrer, registry, normalizer, pipeline.DefaultEscalationPolicy(), nil)
		record := &waypoint.Record{Domain: waypoint.DomainGeneral}
		record.SetField("description", "A general page.", "quote", 0.7)
		record.SetField("location", "Bali", "quote", 0.7)

		e.Escalate(context.Background(), record, "content")
	})

	t.Run("inference failure keeps the prior record state", func(t *testing.T) {
		t.Parallel()

		inferrer := &mock.Inferrer{
			InferFieldsFn: func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
				return nil, waypoint.Errorf(waypoint.EINTERNAL, "backend down")
			},
		}

		e := pipeline.NewEscalator(inferrer, registry, normalizer, pipeline.DefaultEscalationPolicy(), nil)
		record := &waypoint.Record{Domain: waypoint.DomainProperty}
		record.SetField("name", "Villa Aruna", "quote", 0.9)

		out := e.Escalate(context.Background(), record, "content")

		require.Same(t, record, out)
		assert.Equal(t, "Villa Aruna", record.Field("name"))
	})

	t.Run("land listings default room counts to zero in the aggressive pass", func(t *testing.T) {
		t.Parallel()

		// First call answers nothing useful so the aggressive pass runs.
		inferrer := &mock.Inferrer{
			InferFieldsFn: func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
				return &waypoint.Extraction{Fields: map[string]any{"bedrooms": nil}}, nil
			},
		}

		e := pipeline.NewEscalator(inferrer, registry, normalizer, pipeline.DefaultEscalationPolicy(), nil)
		record := &waypoint.Record{Domain: waypoint.DomainProperty}
		record.SetField("name", "Beachfront Land Plot", "quote", 0.9)
		record.SetField("property_type", "land", "quote", 0.9)

		e.Escalate(context.Background(), record, "content")

		assert.Equal(t, 0, record.Field("bedrooms"))
		assert.Equal(t, 0, record.Field("bathrooms"))
		assert.Equal(t, 0, record.Field("parking_spaces"))
		assert.NotEmpty(t, record.Field("description"), "description synthesized from known fields")
	})

	t.Run("aggressive pass is limited to configured domains", func(t *testing.T) {
		t.Parallel()

		var calls int
		inferrer := &mock.Inferrer{
			InferFieldsFn: func(ctx context.Context, record *waypoint.Record, missing []string, content string) (*waypoint.Extraction, error) {
				calls++
				return &waypoint.Extraction{Fields: map[string]any{}}, nil
			},
		}

		policy := pipeline.EscalationPolicy{MaxRounds: 1}
		e := pipeline.NewEscalator(inferrer, registry, normalizer, policy, nil)
		record := &waypoint.Record{Domain: waypoint.DomainTour}

		e.Escalate(context.Background(), record, "content")

		assert.Equal(t, 1, calls, "no aggressive round without policy opt-in")
	})
}
