package service

import (
	"context"
	"fmt"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"go.uber.org/zap"
)

// planRetryTasks asks the LLM for a simpler replacement task per failed slot.
// If the plan is unusable or misses a slot, that slot falls back to a static
// simplified task so a retry round always has work for every failed agent.
func (s *ResearchService) planRetryTasks(ctx context.Context, query string, failed []domain.AgentOutcome) []domain.Task {
	failures := make([]domain.FailedSlot, 0, len(failed))
	for _, out := range failed {
		failures = append(failures, domain.FailedSlot{
			AgentID: out.AgentID,
			Task:    out.Task,
			Error:   out.Error,
		})
	}

	planned, err := s.llm.PlanRetry(ctx, query, failures)
	if err != nil {
		s.logger.Warn("retry plan unusable, using static tasks", zap.Error(err))
		planned = nil
	}

	tasks := make([]domain.Task, 0, len(failed))
	for _, out := range failed {
		text := planned[out.AgentID]
		if text == "" {
			text = staticRetryTask(out.AgentID, query)
		}
		tasks = append(tasks, domain.Task{AgentID: out.AgentID, Text: text})
	}
	return tasks
}

// staticRetryTask is the no-LLM fallback: strip the task back to the plainest
// phrasing the agent can act on.
func staticRetryTask(agentID, query string) string {
	switch agentID {
	case registry.AgentWikiContext:
		return query
	case registry.AgentNewsSearch:
		return fmt.Sprintf("news about %s", query)
	case registry.AgentAcademicSearch:
		return fmt.Sprintf("research on %s", query)
	default:
		return fmt.Sprintf("key facts about %s", query)
	}
}
