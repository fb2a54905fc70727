package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/service"
	"go.uber.org/zap"
)

type ResearchHandler struct {
	svc    *service.ResearchService
	logger *zap.Logger
}

func NewResearchHandler(svc *service.ResearchService, logger *zap.Logger) *ResearchHandler {
	return &ResearchHandler{svc: svc, logger: logger}
}

type researchRequest struct {
	Query string `json:"query"`
}

// Run streams a research run as Server-Sent Events. The stream always ends
// with a "complete" event, even when the run fails partway.
func (h *ResearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(event domain.Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("failed to encode event", zap.String("type", string(event.Type)), zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
		flusher.Flush()
	}

	h.svc.Run(r.Context(), req.Query, emit)
}
