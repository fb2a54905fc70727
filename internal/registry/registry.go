package registry

import (
	"fmt"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// Entry binds an agent's descriptor, its handler and its result validator in
// one place so execution and validation can never drift apart.
type Entry struct {
	Descriptor domain.Descriptor
	Handler    domain.Handler
	Validate   domain.ValidatorFunc
}

// Registry is the static catalogue of research agents. Adding an agent is a
// registration, not a code-path insertion. Registration happens once at
// startup; lookups afterwards are read-only.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds an entry. Duplicate ids and missing pieces are programming
// errors surfaced at startup.
func (r *Registry) Register(e Entry) error {
	id := e.Descriptor.ID
	if id == "" {
		return fmt.Errorf("registry: entry without id")
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("registry: duplicate agent id %q", id)
	}
	if e.Handler == nil {
		return fmt.Errorf("registry: agent %q has no handler", id)
	}
	if e.Validate == nil {
		return fmt.Errorf("registry: agent %q has no validator", id)
	}
	r.entries[id] = &e
	r.order = append(r.order, id)
	return nil
}

// MustRegister panics on registration error; used for the built-in catalogue.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(id string) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Catalog returns descriptors in registration order, for the planner prompt
// and the agents listing endpoint.
func (r *Registry) Catalog() []domain.Descriptor {
	catalog := make([]domain.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		catalog = append(catalog, r.entries[id].Descriptor)
	}
	return catalog
}

// Len reports the number of registered agents.
func (r *Registry) Len() int {
	return len(r.order)
}
