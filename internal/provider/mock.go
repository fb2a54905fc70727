package provider

import (
	"context"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// MockSearcher returns canned results for tests and keyless local runs.
type MockSearcher struct {
	Results []domain.SearchResult
	Err     error
	Calls   []string
}

func NewMockSearcher() *MockSearcher {
	return &MockSearcher{
		Results: []domain.SearchResult{
			{
				Title:   "Mock result",
				URL:     "https://example.org/mock",
				Snippet: "Mock evidence snippet.",
			},
		},
	}
}

func (m *MockSearcher) Search(ctx context.Context, query, category string, numResults int) ([]domain.SearchResult, error) {
	m.Calls = append(m.Calls, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}
