package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResearchService drives a full research run: plan a selection, execute it,
// re-plan failed slots for a bounded number of retry rounds, walk each failed
// slot's fallback chain, then stream a synthesized answer. Progress is pushed
// through the Emitter; the terminal "complete" event is sent exactly once,
// including when the run dies early.
type ResearchService struct {
	planner  *PlannerService
	executor *ExecutorService
	llm      domain.LLMClient
	registry *registry.Registry
	logger   *zap.Logger

	RetryRounds int
}

func NewResearchService(planner *PlannerService, executor *ExecutorService, llm domain.LLMClient, reg *registry.Registry, retryRounds int, logger *zap.Logger) *ResearchService {
	return &ResearchService{
		planner:     planner,
		executor:    executor,
		llm:         llm,
		registry:    reg,
		logger:      logger,
		RetryRounds: retryRounds,
	}
}

// slotState tracks one selection slot across retry rounds and fallbacks.
// Outcomes are last-write-wins: a later success replaces an earlier failure.
type slotState struct {
	original domain.Task
	outcome  domain.AgentOutcome
	attempts int
}

func (s *slotState) record(out domain.AgentOutcome) {
	s.attempts++
	out.Attempts = s.attempts
	s.outcome = out
}

// Run executes a research query end to end, pushing progress events to emit.
func (s *ResearchService) Run(ctx context.Context, query string, emit domain.Emitter) {
	runID := uuid.NewString()
	completed := false
	send := func(event domain.Event) {
		event.RunID = runID
		event.Timestamp = time.Now()
		emitEvent(emit, event)
	}
	complete := func(text, errMsg string) {
		if completed {
			return
		}
		completed = true
		send(domain.Event{Type: domain.EventComplete, Text: text, Error: errMsg})
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("research run panicked", zap.String("run_id", runID), zap.Any("panic", r))
			complete("", fmt.Sprintf("internal error: %v", r))
		}
	}()

	s.logger.Info("research run started", zap.String("run_id", runID), zap.String("query", query))
	send(domain.Event{Type: domain.EventStart, Text: query})

	send(domain.Event{Type: domain.EventPlannerStart})
	selection := s.planner.Plan(ctx, query)
	send(domain.Event{Type: domain.EventPlannerDone, Selection: &selection})

	slots := make([]*slotState, 0, len(selection.Slots))
	for _, task := range selection.Slots {
		slots = append(slots, &slotState{original: task})
	}

	for i, out := range s.executor.ExecuteRound(ctx, query, selection.Slots, false, send) {
		slots[i].record(out)
	}

	for round := 1; round <= s.RetryRounds && ctx.Err() == nil; round++ {
		failed := failedOutcomes(slots)
		if len(failed) == 0 {
			break
		}
		send(domain.Event{
			Type:     domain.EventRetryRoundStart,
			Round:    round,
			AgentIDs: outcomeIDs(failed),
		})

		tasks := s.planRetryTasks(ctx, query, failed)
		send(domain.Event{Type: domain.EventRetryPlanReady, Round: round, Tasks: tasks})

		results := s.executor.ExecuteRound(ctx, query, tasks, true, send)
		for _, out := range results {
			if slot := findSlot(slots, out.AgentID); slot != nil {
				slot.record(out)
			}
		}
	}

	if ctx.Err() == nil {
		s.resolveFallbacks(ctx, query, slots, send)
	}

	if err := ctx.Err(); err != nil {
		s.logger.Warn("research run cancelled", zap.String("run_id", runID), zap.Error(err))
		complete("", fmt.Sprintf("run cancelled: %v", err))
		return
	}

	outcomes := make([]domain.AgentOutcome, 0, len(slots))
	for _, slot := range slots {
		outcomes = append(outcomes, slot.outcome)
	}

	send(domain.Event{Type: domain.EventSynthesisStart})
	summary, err := s.llm.Synthesize(ctx, query, outcomes, func(delta string) {
		send(domain.Event{Type: domain.EventSynthesisDelta, Text: delta})
	})
	if err != nil {
		s.logger.Error("synthesis failed", zap.String("run_id", runID), zap.Error(err))
		complete("", fmt.Sprintf("synthesis failed: %v", err))
		return
	}
	send(domain.Event{Type: domain.EventSynthesisDone})

	s.logger.Info("research run finished", zap.String("run_id", runID),
		zap.Int("agents", len(slots)), zap.Int("failed", len(failedOutcomes(slots))))
	complete(summary, "")
}

// resolveFallbacks substitutes alternates for slots that failed every retry
// round. Each declared chain member gets exactly one attempt; the first
// success ends the walk for that slot.
func (s *ResearchService) resolveFallbacks(ctx context.Context, query string, slots []*slotState, send domain.Emitter) {
	for _, slot := range slots {
		if slot.outcome.Success {
			continue
		}
		entry, ok := s.registry.Get(slot.original.AgentID)
		if !ok {
			continue
		}
		for _, substitute := range entry.Descriptor.FallbackChain {
			if ctx.Err() != nil {
				return
			}
			if !s.registry.Has(substitute) {
				s.logger.Warn("fallback chain names unregistered agent",
					zap.String("agent_id", slot.original.AgentID), zap.String("substitute", substitute))
				continue
			}
			send(domain.Event{
				Type:    domain.EventFallbackStart,
				AgentID: substitute,
				Task:    slot.outcome.Task,
			})
			task := domain.Task{AgentID: substitute, Text: slot.outcome.Task}
			out := s.executor.Execute(ctx, query, task, true, send)
			slot.record(out)
			if out.Success {
				break
			}
		}
	}
}

func failedOutcomes(slots []*slotState) []domain.AgentOutcome {
	var failed []domain.AgentOutcome
	for _, slot := range slots {
		if !slot.outcome.Success {
			failed = append(failed, slot.outcome)
		}
	}
	return failed
}

func outcomeIDs(outcomes []domain.AgentOutcome) []string {
	ids := make([]string, 0, len(outcomes))
	for _, out := range outcomes {
		ids = append(ids, out.AgentID)
	}
	return ids
}

func findSlot(slots []*slotState, agentID string) *slotState {
	for _, slot := range slots {
		if slot.outcome.AgentID == agentID {
			return slot
		}
	}
	return nil
}
