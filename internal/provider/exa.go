package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

const exaSearchURL = "https://api.exa.ai/search"

// ExaClient wraps the Exa semantic search API. Exa ranks by meaning rather
// than keywords, which suits free-text research tasks.
type ExaClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewExaClient(apiKey string) *ExaClient {
	return &ExaClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type exaRequest struct {
	Query      string       `json:"query"`
	NumResults int          `json:"numResults"`
	Category   string       `json:"category,omitempty"`
	Contents   *exaContents `json:"contents,omitempty"`
}

type exaContents struct {
	Text       bool `json:"text"`
	Highlights bool `json:"highlights"`
}

type exaResponse struct {
	Results []struct {
		Title         string   `json:"title"`
		URL           string   `json:"url"`
		PublishedDate string   `json:"publishedDate"`
		Text          string   `json:"text"`
		Highlights    []string `json:"highlights"`
		Score         float64  `json:"score"`
	} `json:"results"`
}

// Search runs one semantic search. category may be empty, "news" or
// "research paper" per Exa's category filter.
func (c *ExaClient) Search(ctx context.Context, query, category string, numResults int) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("exa: API key is missing")
	}

	body, err := json.Marshal(exaRequest{
		Query:      query,
		NumResults: numResults,
		Category:   category,
		Contents:   &exaContents{Text: true, Highlights: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal exa request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, exaSearchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create exa request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exa request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read exa response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exa API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result exaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal exa response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(result.Results))
	for _, r := range result.Results {
		snippet := r.Text
		if len(r.Highlights) > 0 {
			snippet = r.Highlights[0]
		}
		sr := domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
			Score:   r.Score,
		}
		if t, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			sr.PublishedAt = &t
		}
		results = append(results, sr)
	}
	return results, nil
}
