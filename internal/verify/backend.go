package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Backend is the external truthfulness-scoring dependency. Implementations
// return the free-text analysis plus whatever structured search results the
// service surfaced alongside it.
type Backend interface {
	Query(ctx context.Context, prompt, statement string) (*BackendResponse, error)
}

// BackendResponse is the shape the client consumes, opaque beyond this.
type BackendResponse struct {
	Content       string
	SearchResults []SearchResult
}

// SearchResult is one structured citation from the backend's web search.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date,omitempty"`
}

// PerplexityBackend queries Perplexity's chat completions API. The call is
// made with plain net/http because the response carries a `search_results`
// field outside the standard chat-completions schema.
type PerplexityBackend struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewPerplexityBackend creates a backend against the given endpoint.
func NewPerplexityBackend(apiKey, baseURL, model string, timeout time.Duration) *PerplexityBackend {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PerplexityBackend{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model                  string        `json:"model"`
	Messages               []chatMessage `json:"messages"`
	Temperature            float64       `json:"temperature"`
	MaxTokens              int           `json:"max_tokens"`
	SearchMode             string        `json:"search_mode,omitempty"`
	SearchRecencyFilter    string        `json:"search_recency_filter,omitempty"`
	ReturnRelatedQuestions bool          `json:"return_related_questions"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	SearchResults []SearchResult `json:"search_results"`
}

// Query sends one fact-check request and decodes content plus search results.
func (b *PerplexityBackend) Query(ctx context.Context, prompt, statement string) (*BackendResponse, error) {
	reqBody := chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: fmt.Sprintf("Fact-check this statement: %s", statement)},
		},
		Temperature:         0.1,
		MaxTokens:           1000,
		SearchMode:          "web",
		SearchRecencyFilter: "month",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty response from backend")
	}

	return &BackendResponse{
		Content:       parsed.Choices[0].Message.Content,
		SearchResults: parsed.SearchResults,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
