package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// Searcher is the shape shared by the search-style provider clients.
type Searcher interface {
	Search(ctx context.Context, query, category string, numResults int) ([]domain.SearchResult, error)
}

// Summarizer is the shape of context/background providers.
type Summarizer interface {
	Summary(ctx context.Context, topic string) (text string, url string, err error)
}

// Built-in agent ids.
const (
	AgentExaSearch      = "exa-search"
	AgentTavilySearch   = "tavily-search"
	AgentNewsSearch     = "news-search"
	AgentAcademicSearch = "academic-search"
	AgentWikiContext    = "wiki-context"
	AgentAggregate      = "aggregate"
)

// groupWebSearch marks the two general web search agents as mutually
// exclusive: running both in one selection buys duplicate evidence for double
// the external cost.
const groupWebSearch = "web-search"

const resultsPerSearch = 5

// NewBuiltin assembles the standard agent catalogue over the given provider
// clients. The aggregate agent is the registry's catch-all: it must never be
// part of an exclusive group and every fallback chain terminates in it.
func NewBuiltin(web, news Searcher, wiki Summarizer) *Registry {
	r := New()

	r.MustRegister(Entry{
		Descriptor: domain.Descriptor{
			ID:             AgentExaSearch,
			DisplayName:    "Web Search (Exa)",
			Description:    "semantic web search for evidence on any topic",
			ExclusiveGroup: groupWebSearch,
			FallbackChain:  []string{AgentTavilySearch, AgentAggregate},
			CostWeight:     3,
		},
		Handler:  searchHandler(web, ""),
		Validate: SearchValidator,
	})

	r.MustRegister(Entry{
		Descriptor: domain.Descriptor{
			ID:             AgentTavilySearch,
			DisplayName:    "Web Search (Tavily)",
			Description:    "keyword web search for evidence on any topic",
			ExclusiveGroup: groupWebSearch,
			FallbackChain:  []string{AgentExaSearch, AgentAggregate},
			CostWeight:     3,
		},
		Handler:  searchHandler(news, ""),
		Validate: SearchValidator,
	})

	r.MustRegister(Entry{
		Descriptor: domain.Descriptor{
			ID:            AgentNewsSearch,
			DisplayName:   "News Search",
			Description:   "recent news coverage of the topic",
			FallbackChain: []string{AgentAggregate},
			CostWeight:    2,
		},
		Handler:  searchHandler(news, "news"),
		Validate: SearchValidator,
	})

	r.MustRegister(Entry{
		Descriptor: domain.Descriptor{
			ID:            AgentAcademicSearch,
			DisplayName:   "Academic Search",
			Description:   "papers and academic sources on the topic",
			FallbackChain: []string{AgentExaSearch, AgentAggregate},
			CostWeight:    3,
		},
		Handler:  searchHandler(web, "research paper"),
		Validate: SearchValidator,
	})

	r.MustRegister(Entry{
		Descriptor: domain.Descriptor{
			ID:            AgentWikiContext,
			DisplayName:   "Background Context",
			Description:   "encyclopedic background and definitions for the topic",
			FallbackChain: []string{AgentAggregate},
			CostWeight:    1,
		},
		Handler:  contextHandler(wiki),
		Validate: TextValidator(minContextChars),
	})

	r.MustRegister(Entry{
		Descriptor: domain.Descriptor{
			ID:          AgentAggregate,
			DisplayName: "Aggregator",
			Description: "catch-all summary over whichever source responds",
			CostWeight:  1,
		},
		Handler:  aggregateHandler(web, wiki),
		Validate: AnyContentValidator,
	})

	return r
}

func searchHandler(s Searcher, category string) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context, task string) (*domain.RawResult, error) {
		results, err := s.Search(ctx, task, category, resultsPerSearch)
		if err != nil {
			return nil, err
		}
		return &domain.RawResult{Kind: domain.ResultKindSearch, Results: results}, nil
	})
}

func contextHandler(wiki Summarizer) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context, task string) (*domain.RawResult, error) {
		text, pageURL, err := wiki.Summary(ctx, task)
		if err != nil {
			return nil, err
		}
		if pageURL != "" {
			text = text + "\n\nSource: " + pageURL
		}
		return &domain.RawResult{Kind: domain.ResultKindText, Text: text}, nil
	})
}

// aggregateHandler is the last-resort source: a shallow search digest, with
// an encyclopedic summary when the search side is down too.
func aggregateHandler(web Searcher, wiki Summarizer) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context, task string) (*domain.RawResult, error) {
		results, err := web.Search(ctx, task, "", 3)
		if err == nil && len(results) > 0 {
			var sb strings.Builder
			for _, r := range results {
				fmt.Fprintf(&sb, "%s (%s): %s\n", r.Title, r.URL, r.Snippet)
			}
			return &domain.RawResult{Kind: domain.ResultKindText, Text: sb.String()}, nil
		}

		text, pageURL, wikiErr := wiki.Summary(ctx, task)
		if wikiErr != nil {
			if err != nil {
				return nil, fmt.Errorf("aggregate: search failed (%v), summary failed: %w", err, wikiErr)
			}
			return nil, fmt.Errorf("aggregate: %w", wikiErr)
		}
		if pageURL != "" {
			text = text + "\n\nSource: " + pageURL
		}
		return &domain.RawResult{Kind: domain.ResultKindText, Text: text}, nil
	})
}

// DefaultSelection is the documented deterministic fallback used whenever the
// planner's output cannot be parsed: a broad web search plus background
// context, so the pipeline never stalls on a malformed plan.
func DefaultSelection(query string) domain.Selection {
	return domain.Selection{
		Query: query,
		Slots: []domain.Task{
			{AgentID: AgentExaSearch, Text: "find recent evidence about: " + query},
			{AgentID: AgentWikiContext, Text: query},
		},
	}
}
