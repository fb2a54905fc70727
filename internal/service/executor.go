package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"github.com/crosscheck-ai/crosscheck/internal/store"
	"go.uber.org/zap"
)

// ExecutorService runs agent tasks sequentially with a per-call timeout and a
// cache in front of every provider call. It never returns an error for an
// individual agent: every failure mode (timeout, provider error, rejected
// result, panic) is folded into a failed AgentOutcome so the caller's retry
// machinery can react.
type ExecutorService struct {
	registry *registry.Registry
	cache    domain.Cache
	logger   *zap.Logger

	AgentTimeout time.Duration
	RetryTimeout time.Duration
	CacheTTL     time.Duration
}

func NewExecutorService(reg *registry.Registry, cache domain.Cache, logger *zap.Logger, agentTimeout, retryTimeout, cacheTTL time.Duration) *ExecutorService {
	return &ExecutorService{
		registry:     reg,
		cache:        cache,
		logger:       logger,
		AgentTimeout: agentTimeout,
		RetryTimeout: retryTimeout,
		CacheTTL:     cacheTTL,
	}
}

// ExecuteRound runs the given slots in order. If ctx is cancelled mid-round
// the remaining slots are marked failed without being invoked.
func (s *ExecutorService) ExecuteRound(ctx context.Context, query string, slots []domain.Task, isRetry bool, emit domain.Emitter) []domain.AgentOutcome {
	outcomes := make([]domain.AgentOutcome, 0, len(slots))
	for _, slot := range slots {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, domain.AgentOutcome{
				AgentID: slot.AgentID,
				Task:    slot.Text,
				IsRetry: isRetry,
				Error:   fmt.Sprintf("run cancelled: %v", err),
			})
			continue
		}
		outcomes = append(outcomes, s.Execute(ctx, query, slot, isRetry, emit))
	}
	return outcomes
}

// Execute runs a single slot: cache lookup, provider call under a timeout,
// validation, and cache write for accepted results.
func (s *ExecutorService) Execute(ctx context.Context, query string, slot domain.Task, isRetry bool, emit domain.Emitter) domain.AgentOutcome {
	outcome := domain.AgentOutcome{
		AgentID: slot.AgentID,
		Task:    slot.Text,
		IsRetry: isRetry,
	}

	entry, ok := s.registry.Get(slot.AgentID)
	if !ok {
		outcome.Error = fmt.Sprintf("agent %q is not registered", slot.AgentID)
		return outcome
	}

	emitEvent(emit, domain.Event{
		Type:    domain.EventAgentStart,
		AgentID: slot.AgentID,
		Task:    slot.Text,
		IsRetry: isRetry,
	})

	start := time.Now()
	key := store.CacheKey(query, slot.AgentID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var raw domain.RawResult
		if err := json.Unmarshal(cached, &raw); err == nil {
			outcome.Success = true
			outcome.Cached = true
			outcome.Data = &raw
			outcome.Duration = time.Since(start)
			s.finish(emit, &outcome)
			return outcome
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
	} else if !errors.Is(err, store.ErrCacheMiss) {
		s.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	}

	timeout := s.AgentTimeout
	if isRetry {
		timeout = s.RetryTimeout
	}
	raw, err := s.invoke(ctx, entry.Handler, slot.Text, timeout)
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Error = err.Error()
		s.finish(emit, &outcome)
		return outcome
	}

	if ok, reason := entry.Validate(raw); !ok {
		outcome.Error = fmt.Sprintf("result rejected: %s", reason)
		s.finish(emit, &outcome)
		return outcome
	}

	outcome.Success = true
	outcome.Data = raw

	if payload, err := json.Marshal(raw); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.CacheTTL); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.finish(emit, &outcome)
	return outcome
}

type invokeResult struct {
	raw *domain.RawResult
	err error
}

// invoke bounds a handler call with its own timeout. The handler runs in a
// goroutine so a handler that ignores ctx still cannot stall the round.
func (s *ExecutorService) invoke(ctx context.Context, h domain.Handler, task string, timeout time.Duration) (*domain.RawResult, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- invokeResult{err: fmt.Errorf("agent panic: %v", r)}
			}
		}()
		raw, err := h.Invoke(cctx, task)
		ch <- invokeResult{raw: raw, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.raw == nil {
			return nil, errors.New("agent returned no data")
		}
		return res.raw, nil
	case <-cctx.Done():
		return nil, fmt.Errorf("agent timed out after %s: %w", timeout, cctx.Err())
	}
}

func (s *ExecutorService) finish(emit domain.Emitter, outcome *domain.AgentOutcome) {
	if outcome.Success {
		s.logger.Info("agent completed",
			zap.String("agent_id", outcome.AgentID),
			zap.Bool("cached", outcome.Cached),
			zap.Bool("retry", outcome.IsRetry),
			zap.Duration("duration", outcome.Duration))
	} else {
		s.logger.Warn("agent failed",
			zap.String("agent_id", outcome.AgentID),
			zap.Bool("retry", outcome.IsRetry),
			zap.String("error", outcome.Error))
	}

	success := outcome.Success
	emitEvent(emit, domain.Event{
		Type:    domain.EventAgentDone,
		AgentID: outcome.AgentID,
		Task:    outcome.Task,
		IsRetry: outcome.IsRetry,
		Success: &success,
		Error:   outcome.Error,
	})
}

func emitEvent(emit domain.Emitter, event domain.Event) {
	if emit != nil {
		emit(event)
	}
}
