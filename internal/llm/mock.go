package llm

import (
	"context"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	PlanSelectionResponse    *domain.SelectionPlan
	PlanSelectionError       error
	PlanRetryResponse        map[string]string
	PlanRetryError           error
	SynthesizeResponse       string
	SynthesizeError          error
	DecomposeClaimsResponse  []string
	DecomposeClaimsError     error
	ResolveConflictsResponse string
	ResolveConflictsError    error

	// Call tracking for assertions
	PlanSelectionCalls []string
	PlanRetryCalls     [][]domain.FailedSlot
	SynthesizeCalls    []string
	DecomposeCalls     []string
	ResolveCalls       []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		SynthesizeResponse:       "Mock synthesis.",
		ResolveConflictsResponse: "Mock resolution.",
	}
}

func (c *MockClient) PlanSelection(ctx context.Context, query string, catalog []domain.Descriptor) (*domain.SelectionPlan, error) {
	c.PlanSelectionCalls = append(c.PlanSelectionCalls, query)
	if c.PlanSelectionError != nil {
		return nil, c.PlanSelectionError
	}
	if c.PlanSelectionResponse != nil {
		return c.PlanSelectionResponse, nil
	}
	// Default: one slot per catalog entry, task = query.
	plan := &domain.SelectionPlan{}
	for _, d := range catalog {
		plan.Slots = append(plan.Slots, domain.PlannedSlot{AgentID: d.ID, Task: query})
	}
	return plan, nil
}

func (c *MockClient) PlanRetry(ctx context.Context, query string, failures []domain.FailedSlot) (map[string]string, error) {
	c.PlanRetryCalls = append(c.PlanRetryCalls, failures)
	if c.PlanRetryError != nil {
		return nil, c.PlanRetryError
	}
	if c.PlanRetryResponse != nil {
		return c.PlanRetryResponse, nil
	}
	plan := make(map[string]string, len(failures))
	for _, f := range failures {
		plan[f.AgentID] = "simplified: " + f.Task
	}
	return plan, nil
}

func (c *MockClient) Synthesize(ctx context.Context, query string, outcomes []domain.AgentOutcome, onDelta func(string)) (string, error) {
	c.SynthesizeCalls = append(c.SynthesizeCalls, query)
	if c.SynthesizeError != nil {
		return "", c.SynthesizeError
	}
	if onDelta != nil {
		onDelta(c.SynthesizeResponse)
	}
	return c.SynthesizeResponse, nil
}

func (c *MockClient) DecomposeClaims(ctx context.Context, hypothesis string) ([]string, error) {
	c.DecomposeCalls = append(c.DecomposeCalls, hypothesis)
	if c.DecomposeClaimsError != nil {
		return nil, c.DecomposeClaimsError
	}
	if c.DecomposeClaimsResponse != nil {
		return c.DecomposeClaimsResponse, nil
	}
	return []string{hypothesis}, nil
}

func (c *MockClient) ResolveConflicts(ctx context.Context, hypothesis string, supporting, opposing []domain.SourceRecord) (string, error) {
	c.ResolveCalls = append(c.ResolveCalls, hypothesis)
	if c.ResolveConflictsError != nil {
		return "", c.ResolveConflictsError
	}
	return c.ResolveConflictsResponse, nil
}
