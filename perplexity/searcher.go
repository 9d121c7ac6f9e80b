// Package perplexity provides a waypoint.Searcher backed by the
// Perplexity chat-completions API, which answers queries from live web
// search and reports its sources.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/waypointhq/waypoint"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "sonar-pro"
)

// ChatCompletionRequest is the request body for POST /chat/completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the response from POST /chat/completions.
type ChatCompletionResponse struct {
	ID            string         `json:"id"`
	Choices       []Choice       `json:"choices"`
	Citations     []string       `json:"citations"`
	SearchResults []SearchResult `json:"search_results"`
	Usage         Usage          `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

// SearchResult is one consulted source.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Ensure Searcher implements waypoint.Searcher at compile time.
var _ waypoint.Searcher = (*Searcher)(nil)

// Searcher issues web searches through the Perplexity API.
type Searcher struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(s *Searcher) {
		s.baseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(s *Searcher) {
		s.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Searcher) {
		s.http = hc
	}
}

// NewSearcher creates a Perplexity-backed Searcher.
func NewSearcher(apiKey string, opts ...Option) *Searcher {
	s := &Searcher{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search issues one search-backed completion and returns the answer
// with its consulted sources.
func (s *Searcher) Search(ctx context.Context, query string) (*waypoint.SearchAnswer, error) {
	if query == "" {
		return nil, waypoint.Errorf(waypoint.EINVALID, "search query required")
	}

	temp := 0.2
	req := ChatCompletionRequest{
		Model:       s.model,
		Temperature: &temp,
		Messages: []Message{
			{Role: "system", Content: "Answer concisely with facts. Cite sources."},
			{Role: "user", Content: query},
		},
	}

	resp, err := s.chatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "search returned no choices")
	}

	answer := &waypoint.SearchAnswer{
		Answer:    resp.Choices[0].Message.Content,
		Citations: resp.Citations,
		Tokens:    resp.Usage.PromptTokens + resp.Usage.CompletionTokens,
	}
	for _, sr := range resp.SearchResults {
		if sr.URL != "" {
			answer.Sources = append(answer.Sources, sr.URL)
		}
	}

	return answer, nil
}

func (s *Searcher) chatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "marshal search request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "create search request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EUNAVAILABLE, "search backend: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, waypoint.Errorf(waypoint.EUNAVAILABLE, "read search response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, waypoint.Errorf(waypoint.EUNAVAILABLE, "search backend status %d: %s", resp.StatusCode, respBody)
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, waypoint.Errorf(waypoint.EINTERNAL, "decode search response: %v", err)
	}

	return &result, nil
}
