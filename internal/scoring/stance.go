package scoring

import "strings"

// Stance is the lexical classification of one snippet.
type Stance int

const (
	StanceNeutral Stance = iota
	StanceSupportive
	StanceRefuting
	StanceUncertain
)

func (s Stance) String() string {
	switch s {
	case StanceSupportive:
		return "supportive"
	case StanceRefuting:
		return "refuting"
	case StanceUncertain:
		return "uncertain"
	default:
		return "neutral"
	}
}

// Terms are matched as substrings of lowercased text, so entries must not be
// substrings of opposing-lexicon entries ("prove" would match "disprove").
var supportiveTerms = []string{
	"confirm", "support", "demonstrate", "validate", "corroborate",
	"consistent with", "in line with", "evidence for", "shows that",
	"found that", "benefits", "succeed", "backs up",
}

var refutingTerms = []string{
	"refute", "debunk", "disprove", "contradict", "deny", "denies",
	"no evidence", "fails to", "false", "myth", "misleading", "overstated",
	"reject", "dispute", "casts doubt", "ineffective", "harmful",
}

var uncertainTerms = []string{
	"unclear", "inconclusive", "mixed results", "may ", "might ",
	"possibly", "unproven", "preliminary", "limited evidence",
	"further research", "uncertain",
}

// ClassifyStance classifies a text by counting lexicon hits. Supportive and
// refuting counts compete directly; uncertainty only wins when neither side
// has a signal. A tie between supportive and refuting hits reads as uncertain.
func ClassifyStance(text string) Stance {
	lower := strings.ToLower(text)

	support := countHits(lower, supportiveTerms)
	refute := countHits(lower, refutingTerms)
	uncertain := countHits(lower, uncertainTerms)

	switch {
	case support > refute:
		return StanceSupportive
	case refute > support:
		return StanceRefuting
	case support > 0: // tie with signal on both sides
		return StanceUncertain
	case uncertain > 0:
		return StanceUncertain
	default:
		return StanceNeutral
	}
}

func countHits(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		n += strings.Count(lower, term)
	}
	return n
}
