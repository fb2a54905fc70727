package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestValidator() *Validator {
	return NewValidator(10, 95, zap.NewNop())
}

func supportingRecord(url string, reliability float64, published *time.Time) domain.SourceRecord {
	return domain.SourceRecord{
		URL:              url,
		Snippet:          "The study confirms the claimed effect and shows that it holds.",
		ReliabilityScore: reliability,
		PublishDate:      published,
	}
}

func refutingRecord(url string, reliability float64, published *time.Time) domain.SourceRecord {
	return domain.SourceRecord{
		URL:              url,
		Snippet:          "Later analyses refute the claim and find no evidence for the effect.",
		ReliabilityScore: reliability,
		PublishDate:      published,
	}
}

func TestValidator_Validate_EmptyEvidenceIsInconclusive(t *testing.T) {
	v := newTestValidator()

	result := v.Validate(map[domain.Perspective][]domain.SourceRecord{})

	require.NotNil(t, result)
	assert.Equal(t, domain.VerdictInconclusive, result.Verdict)
	assert.Empty(t, result.Contradictions)
	// all component scores are zero, so the clamp floor applies
	assert.Equal(t, 10.0, result.FinalConfidence)
}

func TestValidator_Validate_ReliablePairYieldsHighSeverityContradiction(t *testing.T) {
	v := newTestValidator()

	batches := map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {supportingRecord("https://a.example.edu", 85, nil)},
		domain.PerspectiveOpposing:   {refutingRecord("https://b.example.org", 80, nil)},
	}

	result := v.Validate(batches)

	require.Len(t, result.Contradictions, 1)
	c := result.Contradictions[0]
	assert.Equal(t, domain.SeverityHigh, c.Severity)
	assert.Equal(t, "https://a.example.edu", c.SourceA)
	assert.Equal(t, "https://b.example.org", c.SourceB)
	assert.NotEmpty(t, c.ExcerptA)
	assert.NotEmpty(t, c.ExcerptB)
}

func TestValidator_Validate_WeakPairYieldsLowSeverity(t *testing.T) {
	v := newTestValidator()

	batches := map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {supportingRecord("https://a.example.com", 40, nil)},
		domain.PerspectiveOpposing:   {refutingRecord("https://b.example.com", 45, nil)},
	}

	result := v.Validate(batches)

	require.Len(t, result.Contradictions, 1)
	assert.Equal(t, domain.SeverityLow, result.Contradictions[0].Severity)
}

func TestValidator_Validate_StronglySupported(t *testing.T) {
	v := newTestValidator()
	recent := time.Now().AddDate(0, 0, -5)

	var supporting []domain.SourceRecord
	for i := 0; i < 10; i++ {
		supporting = append(supporting, supportingRecord(fmt.Sprintf("https://s%d.example.edu", i), 90, &recent))
	}

	result := v.Validate(map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: supporting,
	})

	assert.Equal(t, domain.VerdictStronglySupported, result.Verdict)
	assert.GreaterOrEqual(t, result.FinalConfidence, 70.0)
	assert.Equal(t, 10, result.SupportingCount)
	assert.Equal(t, 0, result.OpposingCount)
}

func TestValidator_Validate_TwoHighContradictionsAreDisputed(t *testing.T) {
	v := newTestValidator()
	recent := time.Now().AddDate(0, 0, -5)

	result := v.Validate(map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {
			supportingRecord("https://s1.example.edu", 90, &recent),
			supportingRecord("https://s2.example.edu", 88, &recent),
		},
		domain.PerspectiveOpposing: {
			refutingRecord("https://o1.example.org", 85, &recent),
		},
	})

	require.Len(t, result.Contradictions, 2)
	assert.Equal(t, domain.VerdictDisputed, result.Verdict)
}

func TestValidator_Validate_ContradictionLowersConfidence(t *testing.T) {
	v := newTestValidator()
	recent := time.Now().AddDate(0, 0, -5)

	clean := v.Validate(map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {
			supportingRecord("https://s1.example.edu", 85, &recent),
			supportingRecord("https://s2.example.edu", 85, &recent),
		},
	})
	contested := v.Validate(map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {
			supportingRecord("https://s1.example.edu", 85, &recent),
			supportingRecord("https://s2.example.edu", 85, &recent),
		},
		domain.PerspectiveOpposing: {
			refutingRecord("https://o1.example.org", 85, &recent),
		},
	})

	assert.Less(t, contested.FinalConfidence, clean.FinalConfidence)
	assert.NotEmpty(t, contested.Contradictions)
}

func TestValidator_Validate_ConfidenceIsClamped(t *testing.T) {
	v := newTestValidator()
	recent := time.Now().AddDate(0, 0, -5)

	var supporting []domain.SourceRecord
	for i := 0; i < 25; i++ {
		supporting = append(supporting, supportingRecord(fmt.Sprintf("https://s%d.example.edu", i), 100, &recent))
	}

	result := v.Validate(map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: supporting,
	})

	// raw weighted sum exceeds the ceiling
	assert.Equal(t, 95.0, result.FinalConfidence)
}

func TestValidator_Validate_NeutralSnippetsInheritBatchLabel(t *testing.T) {
	v := newTestValidator()

	result := v.Validate(map[domain.Perspective][]domain.SourceRecord{
		domain.PerspectiveSupporting: {
			{URL: "https://a.example.com", Snippet: "An overview of the topic with background details.", ReliabilityScore: 60},
		},
		domain.PerspectiveOpposing: {
			{URL: "https://b.example.com", Snippet: "Another overview of the same topic.", ReliabilityScore: 60},
		},
	})

	assert.Equal(t, 1, result.SupportingCount)
	assert.Equal(t, 1, result.OpposingCount)
	assert.Empty(t, result.Contradictions)
}

func TestRecencyTier(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name    string
		ageDays int
		want    float64
	}{
		{"fresh", 10, 100},
		{"two months", 60, 85},
		{"half year", 150, 70},
		{"one year", 300, 50},
		{"two years", 700, 30},
		{"ancient", 1200, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			published := now.AddDate(0, 0, -tc.ageDays)
			assert.Equal(t, tc.want, recencyTier(&published, now))
		})
	}

	assert.Equal(t, float64(recencyScoreUnknown), recencyTier(nil, now))
}

func TestSupportRatio(t *testing.T) {
	assert.Equal(t, 1.0, supportRatio(0, 0))
	assert.True(t, supportRatio(3, 0) > 1000)
	assert.Equal(t, 1.5, supportRatio(3, 2))
}
