package handlers

import (
	"net/http"

	"github.com/crosscheck-ai/crosscheck/internal/registry"
)

type AgentsHandler struct {
	registry *registry.Registry
}

func NewAgentsHandler(reg *registry.Registry) *AgentsHandler {
	return &AgentsHandler{registry: reg}
}

// List returns the agent catalogue in registration order.
func (h *AgentsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": h.registry.Catalog()})
}
