package registry

import (
	"strings"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// minContextChars is the shortest context extract considered usable.
const minContextChars = 40

// Validators are deliberately lenient: a false negative triggers a retry
// round that costs latency and external credits, so they only reject when the
// payload is clearly empty or error-shaped. Transport success with empty
// content still counts as failure so the retry planner can act.

// SearchValidator accepts any result list carrying at least one entry with a
// URL and some snippet text.
func SearchValidator(raw *domain.RawResult) (bool, string) {
	if raw == nil || raw.Kind != domain.ResultKindSearch {
		return false, "no search payload"
	}
	if len(raw.Results) == 0 {
		return false, "empty result list"
	}
	for _, r := range raw.Results {
		if r.URL != "" && strings.TrimSpace(r.Snippet) != "" {
			return true, ""
		}
	}
	return false, "results carry no usable content"
}

// TextValidator accepts any text payload of at least minLen characters.
func TextValidator(minLen int) domain.ValidatorFunc {
	return func(raw *domain.RawResult) (bool, string) {
		if raw == nil || raw.Kind != domain.ResultKindText {
			return false, "no text payload"
		}
		if len(strings.TrimSpace(raw.Text)) < minLen {
			return false, "text too short to be useful"
		}
		return true, ""
	}
}

// AnyContentValidator accepts either payload shape as long as something is in it.
func AnyContentValidator(raw *domain.RawResult) (bool, string) {
	if raw == nil {
		return false, "no payload"
	}
	if len(raw.Results) > 0 {
		return SearchValidator(raw)
	}
	if strings.TrimSpace(raw.Text) != "" {
		return true, ""
	}
	return false, "empty payload"
}
