package llm

import (
	"fmt"
	"strings"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// stripFences removes a markdown code-fence wrapper the model sometimes adds
// around JSON responses.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func formatCatalog(catalog []domain.Descriptor) string {
	var sb strings.Builder
	for _, d := range catalog {
		fmt.Fprintf(&sb, "- %s: %s (cost %d)\n", d.ID, d.Description, d.CostWeight)
	}
	return sb.String()
}

func formatFailures(failures []domain.FailedSlot) string {
	var sb strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&sb, "- %s: task %q failed: %s\n", f.AgentID, f.Task, f.Error)
	}
	return sb.String()
}

const maxSnippetsPerOutcome = 5

func formatOutcomes(outcomes []domain.AgentOutcome) string {
	var sb strings.Builder
	for _, o := range outcomes {
		if !o.Success || o.Data == nil {
			fmt.Fprintf(&sb, "[%s] task %q: NO DATA (%s)\n\n", o.AgentID, o.Task, o.Error)
			continue
		}
		fmt.Fprintf(&sb, "[%s] task %q:\n", o.AgentID, o.Task)
		switch o.Data.Kind {
		case domain.ResultKindSearch:
			for i, r := range o.Data.Results {
				if i >= maxSnippetsPerOutcome {
					break
				}
				fmt.Fprintf(&sb, "  - %s (%s): %s\n", r.Title, r.URL, truncate(r.Snippet, 300))
			}
		default:
			fmt.Fprintf(&sb, "  %s\n", truncate(o.Data.Text, 1500))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatSources(records []domain.SourceRecord) string {
	if len(records) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "%d. %s (reliability %.0f/100)\n   %s\n", i+1, r.URL, r.ReliabilityScore, truncate(r.Snippet, 300))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
