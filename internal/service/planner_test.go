package service

import (
	"context"
	"errors"
	"testing"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/llm"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func okHandler(text string) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context, task string) (*domain.RawResult, error) {
		return &domain.RawResult{Kind: domain.ResultKindText, Text: text}, nil
	})
}

func acceptAll(raw *domain.RawResult) (bool, string) { return true, "" }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	entries := []registry.Entry{
		{
			Descriptor: domain.Descriptor{ID: "alpha", ExclusiveGroup: "search", FallbackChain: []string{"gamma"}},
			Handler:    okHandler("alpha result text that is long enough"),
			Validate:   acceptAll,
		},
		{
			Descriptor: domain.Descriptor{ID: "beta", ExclusiveGroup: "search"},
			Handler:    okHandler("beta result text that is long enough"),
			Validate:   acceptAll,
		},
		{
			Descriptor: domain.Descriptor{ID: "gamma"},
			Handler:    okHandler("gamma result text that is long enough"),
			Validate:   acceptAll,
		},
		{
			Descriptor: domain.Descriptor{ID: "delta"},
			Handler:    okHandler("delta result text that is long enough"),
			Validate:   acceptAll,
		},
	}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			t.Fatalf("register %s: %v", e.Descriptor.ID, err)
		}
	}
	return r
}

func TestPlannerService_Enforce_DropsUnknownAndDuplicates(t *testing.T) {
	reg := testRegistry(t)
	svc := NewPlannerService(llm.NewMockClient(), reg, 5, testLogger())

	plan := &domain.SelectionPlan{Slots: []domain.PlannedSlot{
		{AgentID: "alpha", Task: "first"},
		{AgentID: "nonexistent", Task: "skip me"},
		{AgentID: "alpha", Task: "duplicate"},
		{AgentID: "gamma", Task: "third"},
	}}

	sel := svc.Enforce("query", plan)
	if len(sel.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d: %+v", len(sel.Slots), sel.Slots)
	}
	if sel.Slots[0].AgentID != "alpha" || sel.Slots[1].AgentID != "gamma" {
		t.Fatalf("unexpected slot order: %+v", sel.Slots)
	}
	if sel.Slots[0].Text != "first" {
		t.Fatalf("duplicate overwrote the first task: %q", sel.Slots[0].Text)
	}
}

func TestPlannerService_Enforce_CollapsesExclusiveGroup(t *testing.T) {
	reg := testRegistry(t)
	svc := NewPlannerService(llm.NewMockClient(), reg, 5, testLogger())

	plan := &domain.SelectionPlan{Slots: []domain.PlannedSlot{
		{AgentID: "beta", Task: "b"},
		{AgentID: "alpha", Task: "a"},
		{AgentID: "delta", Task: "d"},
	}}

	sel := svc.Enforce("query", plan)
	if len(sel.Slots) != 2 {
		t.Fatalf("expected 2 slots after group collapse, got %d", len(sel.Slots))
	}
	// beta came first, so it survives the web-search group
	if sel.Slots[0].AgentID != "beta" || sel.Slots[1].AgentID != "delta" {
		t.Fatalf("unexpected survivors: %+v", sel.Slots)
	}
}

func TestPlannerService_Enforce_TruncatesToMaxAgents(t *testing.T) {
	reg := testRegistry(t)
	svc := NewPlannerService(llm.NewMockClient(), reg, 2, testLogger())

	plan := &domain.SelectionPlan{Slots: []domain.PlannedSlot{
		{AgentID: "alpha", Task: "a"},
		{AgentID: "gamma", Task: "c"},
		{AgentID: "delta", Task: "d"},
	}}

	sel := svc.Enforce("query", plan)
	if len(sel.Slots) != 2 {
		t.Fatalf("expected truncation to 2 slots, got %d", len(sel.Slots))
	}
}

func TestPlannerService_Enforce_EmptyTaskDefaultsToQuery(t *testing.T) {
	reg := testRegistry(t)
	svc := NewPlannerService(llm.NewMockClient(), reg, 5, testLogger())

	plan := &domain.SelectionPlan{Slots: []domain.PlannedSlot{{AgentID: "gamma"}}}
	sel := svc.Enforce("the query", plan)
	if sel.Slots[0].Text != "the query" {
		t.Fatalf("expected task to default to query, got %q", sel.Slots[0].Text)
	}
}

func TestPlannerService_Plan_FallsBackOnError(t *testing.T) {
	reg := testRegistry(t)
	mock := llm.NewMockClient()
	mock.PlanSelectionError = errors.New("malformed plan")
	svc := NewPlannerService(mock, reg, 5, testLogger())

	sel := svc.Plan(context.Background(), "query")
	if len(sel.Slots) == 0 {
		t.Fatal("expected a non-empty default selection")
	}
	// The built-in default names agents this registry lacks, so the
	// selection degrades to the first registered agent.
	if sel.Slots[0].AgentID != "alpha" {
		t.Fatalf("expected first registered agent, got %q", sel.Slots[0].AgentID)
	}
}

func TestPlannerService_Plan_FallsBackWhenAllSlotsUnknown(t *testing.T) {
	reg := testRegistry(t)
	mock := llm.NewMockClient()
	mock.PlanSelectionResponse = &domain.SelectionPlan{Slots: []domain.PlannedSlot{
		{AgentID: "no-such-agent", Task: "x"},
	}}
	svc := NewPlannerService(mock, reg, 5, testLogger())

	sel := svc.Plan(context.Background(), "query")
	if len(sel.Slots) == 0 {
		t.Fatal("expected fallback selection when plan has no usable agents")
	}
}
