package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"github.com/crosscheck-ai/crosscheck/internal/scoring"
	"go.uber.org/zap"
)

// maxClaims bounds decomposition so gathering stays at a few agent calls per
// perspective even when the LLM over-splits.
const maxClaims = 3

// HypothesisReport is the full output of a hypothesis validation: the claims
// the hypothesis was split into, the scored verdict, the evidence it was
// built from, and a narrative resolution of any conflicts found between
// perspectives.
type HypothesisReport struct {
	Hypothesis string                                      `json:"hypothesis"`
	Claims     []string                                    `json:"claims"`
	Result     *domain.ValidationResult                    `json:"result"`
	Resolution string                                      `json:"resolution"`
	Sources    map[domain.Perspective][]domain.SourceRecord `json:"sources"`
}

// HypothesisService validates a hypothesis against evidence gathered from
// multiple perspectives. Callers may supply pre-labelled sources; otherwise
// the service decomposes the hypothesis into claims and collects its own by
// running one search agent per perspective per claim.
type HypothesisService struct {
	executor  *ExecutorService
	validator *scoring.Validator
	llm       domain.LLMClient
	logger    *zap.Logger
}

func NewHypothesisService(executor *ExecutorService, validator *scoring.Validator, llm domain.LLMClient, logger *zap.Logger) *HypothesisService {
	return &HypothesisService{
		executor:  executor,
		validator: validator,
		llm:       llm,
		logger:    logger,
	}
}

// perspectiveSlots maps each evidence perspective to the agent and task that
// gather it for one claim. Distinct agents keep the cache keys for one claim
// apart.
func perspectiveSlots(claim string) map[domain.Perspective]domain.Task {
	return map[domain.Perspective]domain.Task{
		domain.PerspectiveSupporting: {
			AgentID: registry.AgentExaSearch,
			Text:    fmt.Sprintf("evidence supporting: %s", claim),
		},
		domain.PerspectiveOpposing: {
			AgentID: registry.AgentTavilySearch,
			Text:    fmt.Sprintf("evidence against or criticism of: %s", claim),
		},
		domain.PerspectiveNeutral: {
			AgentID: registry.AgentNewsSearch,
			Text:    fmt.Sprintf("recent coverage of: %s", claim),
		},
	}
}

// Validate scores a hypothesis. When provided is non-empty it is taken as the
// evidence set, with reliability scores clamped into range; otherwise the
// hypothesis is decomposed into claims and evidence is gathered live per
// claim. A perspective whose gathering fails simply contributes no sources.
func (s *HypothesisService) Validate(ctx context.Context, hypothesis string, provided map[domain.Perspective][]domain.SourceRecord) (*HypothesisReport, error) {
	claims := []string{hypothesis}
	batches := provided
	if len(batches) == 0 {
		claims = s.decompose(ctx, hypothesis)
		var err error
		batches, err = s.gather(ctx, claims)
		if err != nil {
			return nil, err
		}
	} else {
		clampScores(batches)
	}

	result := s.validator.Validate(batches)
	resolution := s.resolve(ctx, hypothesis, batches, result)

	s.logger.Info("hypothesis validated",
		zap.String("verdict", string(result.Verdict)),
		zap.Float64("confidence", result.FinalConfidence),
		zap.Int("contradictions", len(result.Contradictions)))

	return &HypothesisReport{
		Hypothesis: hypothesis,
		Claims:     claims,
		Result:     result,
		Resolution: resolution,
		Sources:    batches,
	}, nil
}

// decompose splits the hypothesis into discrete claims so each can be
// evidenced on its own. Any unusable LLM answer degrades to treating the
// hypothesis as a single claim.
func (s *HypothesisService) decompose(ctx context.Context, hypothesis string) []string {
	raw, err := s.llm.DecomposeClaims(ctx, hypothesis)
	if err != nil {
		s.logger.Warn("claim decomposition degraded to single claim", zap.Error(err))
		return []string{hypothesis}
	}

	claims := make([]string, 0, len(raw))
	for _, claim := range raw {
		claim = strings.TrimSpace(claim)
		if claim == "" {
			continue
		}
		claims = append(claims, claim)
		if len(claims) == maxClaims {
			break
		}
	}
	if len(claims) == 0 {
		return []string{hypothesis}
	}
	return claims
}

// gather runs one agent per perspective per claim and converts successful
// search outcomes into scored source records.
func (s *HypothesisService) gather(ctx context.Context, claims []string) (map[domain.Perspective][]domain.SourceRecord, error) {
	now := time.Now()
	batches := make(map[domain.Perspective][]domain.SourceRecord)

	for _, claim := range claims {
		slots := perspectiveSlots(claim)
		for _, perspective := range []domain.Perspective{domain.PerspectiveSupporting, domain.PerspectiveOpposing, domain.PerspectiveNeutral} {
			slot := slots[perspective]
			out := s.executor.Execute(ctx, claim, slot, false, nil)
			if !out.Success {
				// one more simplified attempt, then degrade to an empty batch
				slot.Text = staticRetryTask(slot.AgentID, claim)
				out = s.executor.Execute(ctx, claim, slot, true, nil)
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("evidence gathering cancelled: %w", err)
			}
			if !out.Success || out.Data == nil {
				s.logger.Warn("perspective gathering failed",
					zap.String("perspective", string(perspective)),
					zap.String("claim", claim),
					zap.String("agent_id", slot.AgentID),
					zap.String("error", out.Error))
				continue
			}
			batches[perspective] = append(batches[perspective], recordsFromResult(out.Data, now)...)
		}
	}

	return batches, nil
}

// clampScores bounds caller-supplied reliability scores; records gathered
// live are already in range via ScoreSource.
func clampScores(batches map[domain.Perspective][]domain.SourceRecord) {
	for _, recs := range batches {
		for i := range recs {
			recs[i].ReliabilityScore = scoring.ClampReliability(recs[i].ReliabilityScore)
		}
	}
}

func recordsFromResult(raw *domain.RawResult, now time.Time) []domain.SourceRecord {
	if raw.Kind != domain.ResultKindSearch {
		return nil
	}
	records := make([]domain.SourceRecord, 0, len(raw.Results))
	for _, res := range raw.Results {
		rec := domain.SourceRecord{
			Title:       res.Title,
			URL:         res.URL,
			Snippet:     res.Snippet,
			Domain:      scoring.DomainOf(res.URL),
			PublishDate: res.PublishedAt,
			Citations:   res.Citations,
		}
		rec.ReliabilityScore = scoring.ScoreSource(rec, now)
		records = append(records, rec)
	}
	return records
}

// resolve produces the conflict narrative. The LLM writes it when both sides
// are populated and contradictions exist; any LLM failure falls back to a
// rule-based comparison of average reliability.
func (s *HypothesisService) resolve(ctx context.Context, hypothesis string, batches map[domain.Perspective][]domain.SourceRecord, result *domain.ValidationResult) string {
	supporting := batches[domain.PerspectiveSupporting]
	opposing := batches[domain.PerspectiveOpposing]

	if len(result.Contradictions) == 0 || len(supporting) == 0 || len(opposing) == 0 {
		return "No significant conflicts detected between the gathered perspectives."
	}

	resolution, err := s.llm.ResolveConflicts(ctx, hypothesis, supporting, opposing)
	if err != nil {
		s.logger.Warn("conflict resolution degraded to rule-based comparison", zap.Error(err))
		return ruleBasedResolution(supporting, opposing)
	}
	return resolution
}

// ruleBasedResolution sides with whichever perspective carries clearly more
// reliable sources; within 10 points the conflict stays unresolved.
func ruleBasedResolution(supporting, opposing []domain.SourceRecord) string {
	sup := averageReliability(supporting)
	opp := averageReliability(opposing)

	switch {
	case sup > opp+10:
		return fmt.Sprintf("Supporting sources are markedly more reliable on average (%.0f vs %.0f); the supporting evidence should be weighted more heavily.", sup, opp)
	case opp > sup+10:
		return fmt.Sprintf("Opposing sources are markedly more reliable on average (%.0f vs %.0f); the opposing evidence should be weighted more heavily.", opp, sup)
	default:
		return fmt.Sprintf("Both perspectives rest on sources of comparable reliability (%.0f vs %.0f); the conflict cannot be resolved on source quality alone.", sup, opp)
	}
}

func averageReliability(records []domain.SourceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range records {
		sum += rec.ReliabilityScore
	}
	return sum / float64(len(records))
}
