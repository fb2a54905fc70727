package service

import (
	"context"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"go.uber.org/zap"
)

// PlannerService asks the LLM which agents should investigate a query, then
// enforces the engine's hard constraints on whatever comes back. The planner
// output is never trusted as-is and planning never fails: a malformed plan
// degrades to the documented default selection.
type PlannerService struct {
	llm      domain.LLMClient
	registry *registry.Registry
	logger   *zap.Logger

	MaxAgents int
}

func NewPlannerService(llm domain.LLMClient, reg *registry.Registry, maxAgents int, logger *zap.Logger) *PlannerService {
	return &PlannerService{
		llm:       llm,
		registry:  reg,
		logger:    logger,
		MaxAgents: maxAgents,
	}
}

// Plan returns the constrained selection for a query.
func (s *PlannerService) Plan(ctx context.Context, query string) domain.Selection {
	plan, err := s.llm.PlanSelection(ctx, query, s.registry.Catalog())
	if err != nil {
		s.logger.Warn("planner output unusable, using default selection",
			zap.String("query", query), zap.Error(err))
		return s.defaultSelection(query)
	}

	selection := s.Enforce(query, plan)
	if len(selection.Slots) == 0 {
		s.logger.Warn("planner selected no usable agents, using default selection",
			zap.String("query", query))
		return s.defaultSelection(query)
	}
	return selection
}

// Enforce applies the selection constraints, preserving the planner's order:
// unknown and duplicate agent ids are dropped, mutually-exclusive groups
// collapse to their first surviving member, and the tail is truncated past
// MaxAgents.
func (s *PlannerService) Enforce(query string, plan *domain.SelectionPlan) domain.Selection {
	selection := domain.Selection{Query: query}
	seenIDs := make(map[string]bool)
	seenGroups := make(map[string]bool)

	for _, slot := range plan.Slots {
		entry, ok := s.registry.Get(slot.AgentID)
		if !ok {
			s.logger.Debug("dropping unknown agent from plan", zap.String("agent_id", slot.AgentID))
			continue
		}
		if seenIDs[slot.AgentID] {
			continue
		}
		if group := entry.Descriptor.ExclusiveGroup; group != "" {
			if seenGroups[group] {
				s.logger.Debug("collapsing exclusive group",
					zap.String("group", group), zap.String("dropped", slot.AgentID))
				continue
			}
			seenGroups[group] = true
		}

		task := slot.Task
		if task == "" {
			task = query
		}
		seenIDs[slot.AgentID] = true
		selection.Slots = append(selection.Slots, domain.Task{AgentID: slot.AgentID, Text: task})

		if len(selection.Slots) >= s.MaxAgents {
			break
		}
	}

	return selection
}

// defaultSelection filters the documented constant through the registry so a
// trimmed-down catalogue still yields a runnable selection.
func (s *PlannerService) defaultSelection(query string) domain.Selection {
	def := registry.DefaultSelection(query)
	selection := domain.Selection{Query: query}
	for _, slot := range def.Slots {
		if s.registry.Has(slot.AgentID) {
			selection.Slots = append(selection.Slots, slot)
		}
	}
	if len(selection.Slots) == 0 {
		if catalog := s.registry.Catalog(); len(catalog) > 0 {
			selection.Slots = append(selection.Slots, domain.Task{AgentID: catalog[0].ID, Text: query})
		}
	}
	return selection
}
