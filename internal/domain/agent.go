package domain

import (
	"context"
	"time"
)

// Descriptor is the static catalogue entry for one research agent.
// Descriptors are defined at startup and never mutated.
type Descriptor struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"display_name"`
	Description    string   `json:"description"`
	ExclusiveGroup string   `json:"exclusive_group,omitempty"`
	FallbackChain  []string `json:"fallback_chain,omitempty"`
	CostWeight     int      `json:"cost_weight"`
}

// Task is one free-text instruction bound to an agent for a single query.
// Tasks are never mutated; a retry produces a new Task.
type Task struct {
	AgentID string `json:"agent_id"`
	Text    string `json:"text"`
}

// Selection is the ordered list of slots the planner produced for a query,
// after constraint enforcement.
type Selection struct {
	Query string `json:"query"`
	Slots []Task `json:"slots"`
}

// AgentIDs returns the ordered agent ids in the selection.
func (s Selection) AgentIDs() []string {
	ids := make([]string, 0, len(s.Slots))
	for _, slot := range s.Slots {
		ids = append(ids, slot.AgentID)
	}
	return ids
}

// SearchResult is one entry returned by a search-style agent.
type SearchResult struct {
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url"`
	Snippet     string     `json:"snippet,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Citations   int        `json:"citations,omitempty"`
	Score       float64    `json:"score,omitempty"`
}

// RawResult kinds.
const (
	ResultKindSearch = "search"
	ResultKindText   = "text"
)

// RawResult is the uninterpreted payload an agent handler returns. Search
// agents fill Results; context/summary agents fill Text. The per-agent
// validator decides whether the payload counts as usable content.
type RawResult struct {
	Kind    string         `json:"kind"`
	Results []SearchResult `json:"results,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// AgentOutcome is the structured result of one attempt at one slot.
// A later attempt for the same agent replaces the stored outcome.
type AgentOutcome struct {
	AgentID  string        `json:"agent_id"`
	Task     string        `json:"task"`
	Success  bool          `json:"success"`
	Data     *RawResult    `json:"data,omitempty"`
	Error    string        `json:"error,omitempty"`
	IsRetry  bool          `json:"is_retry"`
	Cached   bool          `json:"cached"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"-"`
}

// Handler is the capability an agent implementation provides. Invoke must
// respect ctx cancellation; the executor wraps it with a timeout and converts
// any error into a failed outcome, so implementations may return errors freely
// but must never panic across the boundary.
type Handler interface {
	Invoke(ctx context.Context, task string) (*RawResult, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, task string) (*RawResult, error)

func (f HandlerFunc) Invoke(ctx context.Context, task string) (*RawResult, error) {
	return f(ctx, task)
}

// ValidatorFunc decides whether a transport-level success actually carries
// usable content. It returns false plus a reason to route the slot into the
// retry path.
type ValidatorFunc func(raw *RawResult) (bool, string)
