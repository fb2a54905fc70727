package domain

import "time"

// EventType identifies one state transition in the research pipeline.
type EventType string

const (
	EventStart           EventType = "start"
	EventPlannerStart    EventType = "planner-start"
	EventPlannerDelta    EventType = "planner-delta"
	EventPlannerDone     EventType = "planner-done"
	EventAgentStart      EventType = "agent-start"
	EventAgentDone       EventType = "agent-done"
	EventRetryRoundStart EventType = "retry-round-start"
	EventRetryPlanReady  EventType = "retry-plan-ready"
	EventFallbackStart   EventType = "fallback-start"
	EventSynthesisStart  EventType = "synthesis-start"
	EventSynthesisDelta  EventType = "synthesis-delta"
	EventSynthesisDone   EventType = "synthesis-done"
	EventComplete        EventType = "complete"
)

// Event is one entry in the ordered progress stream. Every type may appear
// zero or more times except Complete, which appears exactly once and always
// terminates the stream.
type Event struct {
	Type      EventType  `json:"type"`
	RunID     string     `json:"run_id"`
	Timestamp time.Time  `json:"timestamp"`
	AgentID   string     `json:"agent_id,omitempty"`
	Task      string     `json:"task,omitempty"`
	IsRetry   bool       `json:"is_retry,omitempty"`
	Success   *bool      `json:"success,omitempty"`
	Error     string     `json:"error,omitempty"`
	Text      string     `json:"text,omitempty"`
	Round     int        `json:"round,omitempty"`
	AgentIDs  []string   `json:"agent_ids,omitempty"`
	Selection *Selection `json:"selection,omitempty"`
	Tasks     []Task     `json:"tasks,omitempty"`
}

// Emitter receives pipeline events in order. Implementations must not block
// indefinitely; the pipeline calls it synchronously.
type Emitter func(Event)
