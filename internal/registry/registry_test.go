package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/provider"
)

func noopHandler() domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context, task string) (*domain.RawResult, error) {
		return &domain.RawResult{Kind: domain.ResultKindText, Text: "ok"}, nil
	})
}

func noopValidator(raw *domain.RawResult) (bool, string) { return true, "" }

func TestRegistry_Register_RejectsInvalidEntries(t *testing.T) {
	r := New()

	if err := r.Register(Entry{Handler: noopHandler(), Validate: noopValidator}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := r.Register(Entry{Descriptor: domain.Descriptor{ID: "a"}, Validate: noopValidator}); err == nil {
		t.Fatal("expected error for missing handler")
	}
	if err := r.Register(Entry{Descriptor: domain.Descriptor{ID: "a"}, Handler: noopHandler()}); err == nil {
		t.Fatal("expected error for missing validator")
	}
}

func TestRegistry_Register_RejectsDuplicateID(t *testing.T) {
	r := New()
	entry := Entry{Descriptor: domain.Descriptor{ID: "a"}, Handler: noopHandler(), Validate: noopValidator}

	if err := r.Register(entry); err != nil {
		t.Fatalf("expected first registration to succeed, got %v", err)
	}
	if err := r.Register(entry); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestRegistry_Catalog_PreservesRegistrationOrder(t *testing.T) {
	r := New()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		_ = r.Register(Entry{Descriptor: domain.Descriptor{ID: id}, Handler: noopHandler(), Validate: noopValidator})
	}

	catalog := r.Catalog()
	if len(catalog) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(catalog))
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if catalog[i].ID != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, catalog[i].ID)
		}
	}
}

func TestNewBuiltin_CataloguePropertiesHold(t *testing.T) {
	web := provider.NewMockSearcher()
	news := provider.NewMockSearcher()
	r := NewBuiltin(web, news, stubSummarizer{})

	if !r.Has(AgentAggregate) {
		t.Fatal("expected aggregate agent to be registered")
	}

	for _, d := range r.Catalog() {
		if d.ID == AgentAggregate {
			if d.ExclusiveGroup != "" {
				t.Fatal("aggregate must not be in an exclusive group")
			}
			continue
		}
		chain := d.FallbackChain
		if len(chain) == 0 || chain[len(chain)-1] != AgentAggregate {
			t.Fatalf("agent %q chain must end in aggregate, got %v", d.ID, chain)
		}
		for _, sub := range chain {
			if !r.Has(sub) {
				t.Fatalf("agent %q chain names unregistered agent %q", d.ID, sub)
			}
		}
	}
}

type stubSummarizer struct{}

func (stubSummarizer) Summary(ctx context.Context, topic string) (string, string, error) {
	return strings.Repeat("background context about the topic. ", 3), "https://en.wikipedia.org/wiki/Topic", nil
}

func TestSearchValidator(t *testing.T) {
	ok, _ := SearchValidator(&domain.RawResult{Kind: domain.ResultKindSearch, Results: []domain.SearchResult{
		{URL: "https://example.org/a", Snippet: "some content"},
	}})
	if !ok {
		t.Fatal("expected usable result to pass")
	}

	if ok, _ := SearchValidator(&domain.RawResult{Kind: domain.ResultKindSearch}); ok {
		t.Fatal("expected empty result list to fail")
	}
	if ok, _ := SearchValidator(&domain.RawResult{Kind: domain.ResultKindSearch, Results: []domain.SearchResult{
		{URL: "https://example.org/a", Snippet: "   "},
	}}); ok {
		t.Fatal("expected blank snippets to fail")
	}
	if ok, _ := SearchValidator(nil); ok {
		t.Fatal("expected nil payload to fail")
	}
}

func TestTextValidator(t *testing.T) {
	validate := TextValidator(minContextChars)

	long := strings.Repeat("enough context to be useful here. ", 3)
	if ok, _ := validate(&domain.RawResult{Kind: domain.ResultKindText, Text: long}); !ok {
		t.Fatal("expected long text to pass")
	}
	if ok, reason := validate(&domain.RawResult{Kind: domain.ResultKindText, Text: "too short"}); ok || reason == "" {
		t.Fatal("expected short text to fail with a reason")
	}
	if ok, _ := validate(&domain.RawResult{Kind: domain.ResultKindSearch}); ok {
		t.Fatal("expected wrong payload kind to fail")
	}
}

func TestAnyContentValidator(t *testing.T) {
	if ok, _ := AnyContentValidator(&domain.RawResult{Kind: domain.ResultKindText, Text: "anything"}); !ok {
		t.Fatal("expected non-empty text to pass")
	}
	if ok, _ := AnyContentValidator(&domain.RawResult{}); ok {
		t.Fatal("expected empty payload to fail")
	}
}
