package domain

import (
	"context"
	"time"
)

// Cache is the key/value contract the executor consults before any external
// call. TTL is wall-clock and checked lazily on read; implementations are
// last-writer-wins and need no locking guarantees beyond single-key atomicity.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// PlannedSlot is one (agent, task) assignment proposed by the planner before
// constraint enforcement.
type PlannedSlot struct {
	AgentID string `json:"agent_id"`
	Task    string `json:"task"`
}

// SelectionPlan is the planner LLM's structured output.
type SelectionPlan struct {
	Slots []PlannedSlot `json:"slots"`
}

// FailedSlot describes one failed outcome handed to the retry planner.
type FailedSlot struct {
	AgentID string `json:"agent_id"`
	Task    string `json:"task"`
	Error   string `json:"error"`
}

// LLMClient is the prompt-in/structured-or-streaming-out contract to the
// hosted completion service. Structured responses are not contractually
// valid JSON; callers parse defensively and fall back to deterministic
// defaults on failure.
type LLMClient interface {
	// PlanSelection picks agents and writes one task per agent for the query.
	PlanSelection(ctx context.Context, query string, catalog []Descriptor) (*SelectionPlan, error)

	// PlanRetry proposes a simplified replacement task per failed agent.
	PlanRetry(ctx context.Context, query string, failures []FailedSlot) (map[string]string, error)

	// Synthesize writes prose over the collected outcomes, invoking onDelta
	// for each incremental text chunk, and returns the final text.
	Synthesize(ctx context.Context, query string, outcomes []AgentOutcome, onDelta func(string)) (string, error)

	// DecomposeClaims splits a hypothesis into discrete verifiable claims.
	DecomposeClaims(ctx context.Context, hypothesis string) ([]string, error)

	// ResolveConflicts writes a short resolution statement for contradictory
	// evidence around a hypothesis.
	ResolveConflicts(ctx context.Context, hypothesis string, supporting, opposing []SourceRecord) (string, error)
}
