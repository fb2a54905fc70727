package domain

import "time"

// Perspective labels the stance bucket a batch of evidence was gathered for.
type Perspective string

const (
	PerspectiveSupporting Perspective = "supporting"
	PerspectiveOpposing   Perspective = "opposing"
	PerspectiveNeutral    Perspective = "neutral"
)

func ValidPerspective(p string) bool {
	switch Perspective(p) {
	case PerspectiveSupporting, PerspectiveOpposing, PerspectiveNeutral:
		return true
	}
	return false
}

// SourceRecord is one scored piece of evidence. Immutable once scored.
type SourceRecord struct {
	Title            string     `json:"title,omitempty"`
	URL              string     `json:"url"`
	Snippet          string     `json:"snippet"`
	Domain           string     `json:"domain"`
	ReliabilityScore float64    `json:"reliability_score"`
	PublishDate      *time.Time `json:"publish_date,omitempty"`
	Citations        int        `json:"citations,omitempty"`
}

// Severity grades how much a contradiction matters. High-reliability pairs
// that disagree matter more than low-reliability ones.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Contradiction is a pair of sources whose snippets take opposite stances.
type Contradiction struct {
	SourceA  string   `json:"source_a"`
	SourceB  string   `json:"source_b"`
	ExcerptA string   `json:"excerpt_a"`
	ExcerptB string   `json:"excerpt_b"`
	Severity Severity `json:"severity"`
}

// Verdict is the closed set of labels the cross-validator can produce.
type Verdict string

const (
	VerdictStronglySupported  Verdict = "strongly-supported"
	VerdictStronglyRefuted    Verdict = "strongly-refuted"
	VerdictPartiallySupported Verdict = "partially-supported"
	VerdictMixed              Verdict = "mixed"
	VerdictDisputed           Verdict = "disputed"
	VerdictInconclusive       Verdict = "inconclusive"
)

// ValidationResult is the cross-validator's full output for one request.
// Computed fresh per request and never persisted.
type ValidationResult struct {
	Contradictions        []Contradiction `json:"contradictions"`
	ConsensusScore        float64         `json:"consensus_score"`
	SourceQualityScore    float64         `json:"source_quality_score"`
	RecencyScore          float64         `json:"recency_score"`
	EvidenceQuantityScore float64         `json:"evidence_quantity_score"`
	FinalConfidence       float64         `json:"final_confidence"`
	Verdict               Verdict         `json:"verdict"`
	SupportingCount       int             `json:"supporting_count"`
	OpposingCount         int             `json:"opposing_count"`
}
