package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/llm"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"github.com/crosscheck-ai/crosscheck/internal/scoring"
	"github.com/crosscheck-ai/crosscheck/internal/store"
)

func newHypothesisService(mock *llm.MockClient) *HypothesisService {
	exec := NewExecutorService(registry.New(), store.NewMemoryCache(), testLogger(),
		time.Second, time.Second, time.Minute)
	validator := scoring.NewValidator(10, 95, testLogger())
	return NewHypothesisService(exec, validator, mock, testLogger())
}

func providedSources() map[domain.Perspective][]domain.SourceRecord {
	return map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {
			{Title: "Study confirms effect", URL: "https://example.edu/a", Snippet: "The study confirms the effect holds.", Domain: "example.edu", ReliabilityScore: 85},
		},
		domain.PerspectiveOpposing: {
			{Title: "Claim refuted", URL: "https://example.org/b", Snippet: "Later work refutes the claim entirely.", Domain: "example.org", ReliabilityScore: 80},
		},
	}
}

func searchHandler(url, snippet string) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context, task string) (*domain.RawResult, error) {
		return &domain.RawResult{
			Kind:    domain.ResultKindSearch,
			Results: []domain.SearchResult{{Title: "result", URL: url, Snippet: snippet}},
		}, nil
	})
}

func newGatheringHypothesisService(mock *llm.MockClient) *HypothesisService {
	reg := registry.New()
	_ = reg.Register(registry.Entry{
		Descriptor: domain.Descriptor{ID: registry.AgentExaSearch},
		Handler:    searchHandler("https://example.edu/pro", "The study confirms the effect."),
		Validate:   acceptAll,
	})
	_ = reg.Register(registry.Entry{
		Descriptor: domain.Descriptor{ID: registry.AgentTavilySearch},
		Handler:    searchHandler("https://example.org/con", "Later work refutes the claim."),
		Validate:   acceptAll,
	})
	_ = reg.Register(registry.Entry{
		Descriptor: domain.Descriptor{ID: registry.AgentNewsSearch},
		Handler:    searchHandler("https://example.com/news", "Coverage of the ongoing debate."),
		Validate:   acceptAll,
	})
	exec := NewExecutorService(reg, store.NewMemoryCache(), testLogger(),
		time.Second, time.Second, time.Minute)
	validator := scoring.NewValidator(10, 95, testLogger())
	return NewHypothesisService(exec, validator, mock, testLogger())
}

func TestHypothesisService_Validate_UsesProvidedSources(t *testing.T) {
	mock := llm.NewMockClient()
	svc := newHypothesisService(mock)

	report, err := svc.Validate(context.Background(), "coffee improves memory", providedSources())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Result == nil {
		t.Fatal("expected a validation result")
	}
	if len(report.Result.Contradictions) == 0 {
		t.Fatal("expected the supporting/refuting pair to contradict")
	}
	if report.Resolution != "Mock resolution." {
		t.Fatalf("expected LLM resolution, got %q", report.Resolution)
	}
}

func TestHypothesisService_Validate_RuleBasedResolutionOnLLMFailure(t *testing.T) {
	mock := llm.NewMockClient()
	mock.ResolveConflictsError = errors.New("model unavailable")
	svc := newHypothesisService(mock)

	sources := providedSources()
	sources[domain.PerspectiveSupporting][0].ReliabilityScore = 95
	sources[domain.PerspectiveOpposing][0].ReliabilityScore = 40

	report, err := svc.Validate(context.Background(), "coffee improves memory", sources)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(report.Resolution, "Supporting sources") {
		t.Fatalf("expected rule-based resolution favoring supporting side, got %q", report.Resolution)
	}
}

func TestHypothesisService_Validate_NoConflictNarrativeWithoutContradictions(t *testing.T) {
	mock := llm.NewMockClient()
	svc := newHypothesisService(mock)

	sources := map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {
			{Title: "Study confirms effect", URL: "https://example.edu/a", Snippet: "The study confirms the effect.", Domain: "example.edu", ReliabilityScore: 85},
		},
	}

	report, err := svc.Validate(context.Background(), "coffee improves memory", sources)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mock.ResolveCalls) != 0 {
		t.Fatal("expected no LLM resolution call without contradictions")
	}
	if !strings.Contains(report.Resolution, "No significant conflicts") {
		t.Fatalf("unexpected resolution: %q", report.Resolution)
	}
}

func TestHypothesisService_Validate_ClampsProvidedReliabilityScores(t *testing.T) {
	mock := llm.NewMockClient()
	svc := newHypothesisService(mock)

	sources := providedSources()
	sources[domain.PerspectiveSupporting][0].ReliabilityScore = 150
	sources[domain.PerspectiveOpposing][0].ReliabilityScore = -40

	report, err := svc.Validate(context.Background(), "coffee improves memory", sources)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, recs := range report.Sources {
		for _, rec := range recs {
			if rec.ReliabilityScore < 0 || rec.ReliabilityScore > 100 {
				t.Fatalf("reliability score %v out of range for %s", rec.ReliabilityScore, rec.URL)
			}
		}
	}
	if len(report.Result.Contradictions) != 1 {
		t.Fatalf("expected one contradiction, got %d", len(report.Result.Contradictions))
	}
	// The clamped pair (100, 0) averages 50, under the medium threshold; the
	// raw pair would have averaged 55 and inflated the severity.
	if got := report.Result.Contradictions[0].Severity; got != domain.SeverityLow {
		t.Fatalf("expected low severity from clamped scores, got %s", got)
	}
}

func TestHypothesisService_Validate_GathersEvidencePerClaim(t *testing.T) {
	mock := llm.NewMockClient()
	mock.DecomposeClaimsResponse = []string{"claim one", "claim two"}
	svc := newGatheringHypothesisService(mock)

	report, err := svc.Validate(context.Background(), "a compound hypothesis", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mock.DecomposeCalls) != 1 {
		t.Fatalf("expected one decomposition call, got %d", len(mock.DecomposeCalls))
	}
	if len(report.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %v", report.Claims)
	}
	for _, p := range []domain.Perspective{domain.PerspectiveSupporting, domain.PerspectiveOpposing, domain.PerspectiveNeutral} {
		if len(report.Sources[p]) != 2 {
			t.Fatalf("expected one record per claim for %s, got %d", p, len(report.Sources[p]))
		}
	}
}

func TestHypothesisService_Validate_DecompositionFailureFallsBackToSingleClaim(t *testing.T) {
	mock := llm.NewMockClient()
	mock.DecomposeClaimsError = errors.New("model unavailable")
	svc := newGatheringHypothesisService(mock)

	report, err := svc.Validate(context.Background(), "coffee improves memory", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Claims) != 1 || report.Claims[0] != "coffee improves memory" {
		t.Fatalf("expected the hypothesis as the single claim, got %v", report.Claims)
	}
}

func TestHypothesisService_Decompose_CapsAndTrimsClaims(t *testing.T) {
	mock := llm.NewMockClient()
	mock.DecomposeClaimsResponse = []string{" one ", "", "two", "three", "four"}
	svc := newHypothesisService(mock)

	claims := svc.decompose(context.Background(), "h")
	if len(claims) != maxClaims {
		t.Fatalf("expected %d claims, got %v", maxClaims, claims)
	}
	if claims[0] != "one" {
		t.Fatalf("expected trimmed first claim, got %q", claims[0])
	}
}

func TestRuleBasedResolution_ComparableReliabilityStaysUnresolved(t *testing.T) {
	supporting := []domain.SourceRecord{{ReliabilityScore: 70}}
	opposing := []domain.SourceRecord{{ReliabilityScore: 65}}

	got := ruleBasedResolution(supporting, opposing)
	if !strings.Contains(got, "comparable reliability") {
		t.Fatalf("expected unresolved narrative, got %q", got)
	}
}
