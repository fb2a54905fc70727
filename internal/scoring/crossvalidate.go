package scoring

import (
	"math"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"go.uber.org/zap"
)

// Final-confidence weights.
const (
	weightConsensus = 0.30
	weightQuality   = 0.25
	weightRecency   = 0.15
	weightQuantity  = 0.30
)

// Per-contradiction confidence penalties.
const (
	penaltyHigh   = 15
	penaltyMedium = 8
	penaltyLow    = 3
)

// Severity thresholds on the pair's average reliability.
const (
	severityHighMin   = 75
	severityMediumMin = 55
)

// Recency buckets (age in days) and their scores.
var recencyBuckets = []struct {
	maxDays float64
	score   float64
}{
	{30, 100},
	{90, 85},
	{180, 70},
	{365, 50},
	{730, 30},
}

const (
	recencyScoreStale   = 15
	recencyScoreUnknown = 40
)

const quantityPointsPerSource = 5

// Validator cross-checks labeled batches of sources and produces the final
// confidence and verdict. Confidence is clamped into [Floor, Ceiling] so the
// service never claims absolute certainty either way.
type Validator struct {
	Floor   float64
	Ceiling float64

	logger *zap.Logger
	now    func() time.Time
}

func NewValidator(floor, ceiling float64, logger *zap.Logger) *Validator {
	return &Validator{
		Floor:   floor,
		Ceiling: ceiling,
		logger:  logger,
		now:     time.Now,
	}
}

// Validate computes the full cross-validation result for the given
// perspective batches. An empty evidence set is a valid input and resolves to
// the inconclusive verdict.
func (v *Validator) Validate(batches map[domain.Perspective][]domain.SourceRecord) *domain.ValidationResult {
	all := flatten(batches)

	contradictions := v.detectContradictions(all)
	consensus := v.consensusScore(batches)
	quality := v.sourceQualityScore(all)
	recency := v.recencyScore(all)
	quantity := v.quantityScore(len(all))

	confidence := weightConsensus*consensus +
		weightQuality*quality +
		weightRecency*recency +
		weightQuantity*quantity

	for _, c := range contradictions {
		switch c.Severity {
		case domain.SeverityHigh:
			confidence -= penaltyHigh
		case domain.SeverityMedium:
			confidence -= penaltyMedium
		default:
			confidence -= penaltyLow
		}
	}
	confidence = clamp(confidence, v.Floor, v.Ceiling)

	supporting, opposing := stanceCounts(batches)

	result := &domain.ValidationResult{
		Contradictions:        contradictions,
		ConsensusScore:        consensus,
		SourceQualityScore:    quality,
		RecencyScore:          recency,
		EvidenceQuantityScore: quantity,
		FinalConfidence:       confidence,
		SupportingCount:       supporting,
		OpposingCount:         opposing,
	}
	result.Verdict = v.verdict(result, len(all))

	v.logger.Debug("cross-validation complete",
		zap.Int("sources", len(all)),
		zap.Int("contradictions", len(contradictions)),
		zap.Float64("consensus", consensus),
		zap.Float64("confidence", confidence),
		zap.String("verdict", string(result.Verdict)))

	return result
}

func flatten(batches map[domain.Perspective][]domain.SourceRecord) []domain.SourceRecord {
	var all []domain.SourceRecord
	for _, p := range []domain.Perspective{domain.PerspectiveSupporting, domain.PerspectiveOpposing, domain.PerspectiveNeutral} {
		all = append(all, batches[p]...)
	}
	// Any non-standard perspective labels still count as evidence.
	for p, recs := range batches {
		if !domain.ValidPerspective(string(p)) {
			all = append(all, recs...)
		}
	}
	return all
}

// detectContradictions flags every pair where one snippet is supportive and
// the other refuting. Severity follows the pair's average reliability: a
// disagreement between strong sources matters more than one between weak ones.
func (v *Validator) detectContradictions(all []domain.SourceRecord) []domain.Contradiction {
	contradictions := []domain.Contradiction{}
	stances := make([]Stance, len(all))
	for i, rec := range all {
		stances[i] = ClassifyStance(rec.Snippet)
	}

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := stances[i], stances[j]
			opposed := (a == StanceSupportive && b == StanceRefuting) ||
				(a == StanceRefuting && b == StanceSupportive)
			if !opposed {
				continue
			}

			avg := (all[i].ReliabilityScore + all[j].ReliabilityScore) / 2
			severity := domain.SeverityLow
			switch {
			case avg >= severityHighMin:
				severity = domain.SeverityHigh
			case avg >= severityMediumMin:
				severity = domain.SeverityMedium
			}

			contradictions = append(contradictions, domain.Contradiction{
				SourceA:  all[i].URL,
				SourceB:  all[j].URL,
				ExcerptA: excerpt(all[i].Snippet),
				ExcerptB: excerpt(all[j].Snippet),
				Severity: severity,
			})
		}
	}
	return contradictions
}

const excerptLen = 160

func excerpt(s string) string {
	if len(s) <= excerptLen {
		return s
	}
	return s[:excerptLen] + "..."
}

// consensusScore computes the share of perspective batches agreeing with the
// majority stance, as a percentage.
func (v *Validator) consensusScore(batches map[domain.Perspective][]domain.SourceRecord) float64 {
	var batchStances []Stance
	for _, recs := range batches {
		if len(recs) == 0 {
			continue
		}
		batchStances = append(batchStances, batchStance(recs))
	}
	if len(batchStances) == 0 {
		return 0
	}

	counts := make(map[Stance]int)
	for _, s := range batchStances {
		counts[s]++
	}
	majority := 0
	for _, n := range counts {
		if n > majority {
			majority = n
		}
	}
	return float64(majority) / float64(len(batchStances)) * 100
}

// batchStance is the majority stance across a batch's snippets.
func batchStance(recs []domain.SourceRecord) Stance {
	var support, refute, other int
	for _, rec := range recs {
		switch ClassifyStance(rec.Snippet) {
		case StanceSupportive:
			support++
		case StanceRefuting:
			refute++
		default:
			other++
		}
	}
	switch {
	case support > refute && support >= other:
		return StanceSupportive
	case refute > support && refute >= other:
		return StanceRefuting
	default:
		return StanceNeutral
	}
}

func (v *Validator) sourceQualityScore(all []domain.SourceRecord) float64 {
	if len(all) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range all {
		sum += rec.ReliabilityScore
	}
	return sum / float64(len(all))
}

func (v *Validator) recencyScore(all []domain.SourceRecord) float64 {
	if len(all) == 0 {
		return 0
	}
	now := v.now()
	var sum float64
	for _, rec := range all {
		sum += recencyTier(rec.PublishDate, now)
	}
	return sum / float64(len(all))
}

func recencyTier(published *time.Time, now time.Time) float64 {
	if published == nil {
		return recencyScoreUnknown
	}
	ageDays := now.Sub(*published).Hours() / 24
	for _, bucket := range recencyBuckets {
		if ageDays <= bucket.maxDays {
			return bucket.score
		}
	}
	return recencyScoreStale
}

func (v *Validator) quantityScore(count int) float64 {
	return math.Min(100, float64(count*quantityPointsPerSource))
}

// stanceCounts tallies supportive and refuting sources across all batches.
// Snippets with no lexical signal inherit their batch's label so a fully
// neutral-sounding supporting batch still counts toward support.
func stanceCounts(batches map[domain.Perspective][]domain.SourceRecord) (supporting, opposing int) {
	for perspective, recs := range batches {
		for _, rec := range recs {
			switch ClassifyStance(rec.Snippet) {
			case StanceSupportive:
				supporting++
			case StanceRefuting:
				opposing++
			default:
				switch perspective {
				case domain.PerspectiveSupporting:
					supporting++
				case domain.PerspectiveOpposing:
					opposing++
				}
			}
		}
	}
	return supporting, opposing
}

// verdict maps the computed signals onto the closed label set. Rules are
// checked strictly in order so the mapping is total and deterministic:
//
//  1. zero sources                                  -> inconclusive
//  2. two or more high-severity contradictions      -> disputed
//  3. confidence >= 70 and support:oppose ratio >= 2 -> strongly-supported
//  4. confidence >= 70 and ratio <= 0.5             -> strongly-refuted
//  5. confidence >= 45 and ratio >= 1.5             -> partially-supported
//  6. any contradiction at all                      -> mixed
//  7. confidence < 40                               -> inconclusive
//  8. otherwise                                     -> mixed
func (v *Validator) verdict(r *domain.ValidationResult, totalSources int) domain.Verdict {
	if totalSources == 0 {
		return domain.VerdictInconclusive
	}

	highSeverity := 0
	for _, c := range r.Contradictions {
		if c.Severity == domain.SeverityHigh {
			highSeverity++
		}
	}
	if highSeverity >= 2 {
		return domain.VerdictDisputed
	}

	ratio := supportRatio(r.SupportingCount, r.OpposingCount)

	if r.FinalConfidence >= 70 && ratio >= 2 {
		return domain.VerdictStronglySupported
	}
	if r.FinalConfidence >= 70 && ratio <= 0.5 {
		return domain.VerdictStronglyRefuted
	}
	if r.FinalConfidence >= 45 && ratio >= 1.5 {
		return domain.VerdictPartiallySupported
	}
	if len(r.Contradictions) > 0 {
		return domain.VerdictMixed
	}
	if r.FinalConfidence < 40 {
		return domain.VerdictInconclusive
	}
	return domain.VerdictMixed
}

// supportRatio treats an unopposed support count as unbounded and a fully
// opposed set as zero, so the verdict bands above stay total.
func supportRatio(supporting, opposing int) float64 {
	if opposing == 0 {
		if supporting == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return float64(supporting) / float64(opposing)
}
