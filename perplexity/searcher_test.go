package perplexity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint"
	"github.com/waypointhq/waypoint/perplexity"
)

func TestSearcher_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer pk-test", r.Header.Get("Authorization"))

		var req perplexity.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar-pro", req.Model)
		require.Len(t, req.Messages, 2)

		_ = json.NewEncoder(w).Encode(perplexity.ChatCompletionResponse{
			Choices: []perplexity.Choice{{
				Message: perplexity.Message{Role: "assistant", Content: "Villa Aria has 3 bedrooms [1]."},
			}},
			Citations: []string{"[1] example.com/listing"},
			SearchResults: []perplexity.SearchResult{
				{Title: "Listing", URL: "https://example.com/listing"},
			},
			Usage: perplexity.Usage{PromptTokens: 40, CompletionTokens: 25},
		})
	}))
	defer srv.Close()

	s := perplexity.NewSearcher("pk-test", perplexity.WithBaseURL(srv.URL))

	answer, err := s.Search(context.Background(), "How many bedrooms does Villa Aria have?")
	require.NoError(t, err)

	assert.Contains(t, answer.Answer, "3 bedrooms")
	assert.Equal(t, []string{"https://example.com/listing"}, answer.Sources)
	assert.Equal(t, []string{"[1] example.com/listing"}, answer.Citations)
	assert.Equal(t, 65, answer.Tokens)
}

func TestSearcher_Search_EmptyQuery(t *testing.T) {
	t.Parallel()

	s := perplexity.NewSearcher("pk-test")
	_, err := s.Search(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, waypoint.EINVALID, waypoint.ErrorCode(err))
}

func TestSearcher_Search_BackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := perplexity.NewSearcher("pk-test", perplexity.WithBaseURL(srv.URL))
	_, err := s.Search(context.Background(), "query")
	require.Error(t, err)
	assert.Equal(t, waypoint.EUNAVAILABLE, waypoint.ErrorCode(err))
}

func TestSearcher_Search_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(perplexity.ChatCompletionResponse{})
	}))
	defer srv.Close()

	s := perplexity.NewSearcher("pk-test", perplexity.WithBaseURL(srv.URL))
	_, err := s.Search(context.Background(), "query")
	require.Error(t, err)
	assert.Equal(t, waypoint.EINTERNAL, waypoint.ErrorCode(err))
}
