package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/service"
)

type HypothesisHandler struct {
	svc *service.HypothesisService
}

func NewHypothesisHandler(svc *service.HypothesisService) *HypothesisHandler {
	return &HypothesisHandler{svc: svc}
}

type validateHypothesisRequest struct {
	Hypothesis string                                       `json:"hypothesis"`
	Sources    map[domain.Perspective][]domain.SourceRecord `json:"sources,omitempty"`
}

func (h *HypothesisHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateHypothesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Hypothesis = strings.TrimSpace(req.Hypothesis)
	if req.Hypothesis == "" {
		writeError(w, http.StatusBadRequest, "hypothesis is required")
		return
	}
	for perspective := range req.Sources {
		if !domain.ValidPerspective(string(perspective)) {
			writeError(w, http.StatusBadRequest, "perspective must be one of: supporting, opposing, neutral")
			return
		}
	}

	report, err := h.svc.Validate(r.Context(), req.Hypothesis, req.Sources)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate hypothesis")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
