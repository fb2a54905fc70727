package scoring

import (
	"net/url"
	"strings"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

// Domain reputation table. Tiers:
//   90-100 government, educational, academic
//   80-89  major established news and financial media
//   65-79  reputable tech and industry publications
//   50-64  general news and reference sites
//   20-49  blogs and user-generated content
//   0-19   forums and social media
var domainScores = map[string]float64{
	// Primary/official sources
	"arxiv.org":               92,
	"sec.gov":                 95,
	"who.int":                 95,
	"un.org":                  95,
	"nih.gov":                 95,
	"cdc.gov":                 95,
	"europa.eu":               93,
	"nature.com":              92,
	"science.org":             92,
	"sciencedirect.com":       90,
	"pubmed.ncbi.nlm.nih.gov": 92,
	"scholar.google.com":      85,

	// Established media/financial
	"reuters.com":        88,
	"bloomberg.com":      87,
	"wsj.com":            85,
	"ft.com":             87,
	"nytimes.com":        83,
	"washingtonpost.com": 82,
	"bbc.com":            84,
	"bbc.co.uk":          84,
	"economist.com":      86,
	"apnews.com":         88,
	"afp.com":            87,

	// Tech/industry publications
	"techcrunch.com":       72,
	"wired.com":            73,
	"theverge.com":         70,
	"arstechnica.com":      75,
	"technologyreview.com": 78,
	"hbr.org":              80,
	"mckinsey.com":         78,
	"bcg.com":              78,
	"bain.com":             78,
	"deloitte.com":         76,
	"pwc.com":              76,
	"gartner.com":          77,
	"forrester.com":        76,
	"statista.com":         75,

	// General news/reference
	"wikipedia.org":       60,
	"cnn.com":             68,
	"forbes.com":          65,
	"businessinsider.com": 63,
	"cnbc.com":            70,
	"investopedia.com":    68,
	"crunchbase.com":      70,
	"pitchbook.com":       72,

	// Blogs/UGC
	"medium.com":   40,
	"substack.com": 50,
	"linkedin.com": 45,
	"dev.to":       45,

	// Forums/social
	"reddit.com":   25,
	"quora.com":    30,
	"twitter.com":  20,
	"x.com":        20,
	"facebook.com": 15,
}

// TLD fallbacks for hostnames not in the reputation table. Checked after the
// domain table, longest suffix first.
var tldScores = []struct {
	suffix string
	score  float64
}{
	{".gov.uk", 93},
	{".gov.au", 93},
	{".edu.au", 88},
	{".ac.uk", 88},
	{".gov", 95},
	{".edu", 90},
	{".int", 85},
	{".org", 60},
}

const (
	defaultDomainScore = 50
	invalidURLScore    = 30
)

// Recency bonus tiers, age in days.
const (
	recencyBonusFresh    = 10 // within 30 days
	recencyBonusRecent   = 6  // within 180 days
	recencyBonusThisYear = 3  // within 365 days
)

// Citation bonus tiers.
const (
	citationBonusMajor = 10 // 100+ citations
	citationBonusSolid = 6  // 25+
	citationBonusSome  = 3  // 5+
)

const httpsBonus = 2

// DomainOf extracts the lowercased hostname from a URL, stripping a leading
// "www.". Returns "" when the URL does not parse to a host.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ScoreURL returns the base reputation score for a URL's domain. Matching is
// longest-suffix: an exact table hit wins, then the longest known domain the
// hostname is a subdomain of, then the TLD table, then the neutral default.
func ScoreURL(rawURL string) float64 {
	host := DomainOf(rawURL)
	if host == "" {
		return invalidURLScore
	}

	if score, ok := domainScores[host]; ok {
		return score
	}

	best := ""
	bestScore := 0.0
	for known, score := range domainScores {
		if strings.HasSuffix(host, "."+known) && len(known) > len(best) {
			best = known
			bestScore = score
		}
	}
	if best != "" {
		return bestScore
	}

	for _, tld := range tldScores {
		if strings.HasSuffix(host, tld.suffix) {
			return tld.score
		}
	}

	return defaultDomainScore
}

// ScoreSource computes the full reliability score for one source: domain
// reputation plus recency, citation and secure-transport bonuses, clamped to
// [0,100]. Missing publish dates and unknown domains are fine; they simply
// earn no bonus.
func ScoreSource(rec domain.SourceRecord, now time.Time) float64 {
	score := ScoreURL(rec.URL)

	if rec.PublishDate != nil {
		age := now.Sub(*rec.PublishDate)
		switch {
		case age <= 30*24*time.Hour:
			score += recencyBonusFresh
		case age <= 180*24*time.Hour:
			score += recencyBonusRecent
		case age <= 365*24*time.Hour:
			score += recencyBonusThisYear
		}
	}

	switch {
	case rec.Citations >= 100:
		score += citationBonusMajor
	case rec.Citations >= 25:
		score += citationBonusSolid
	case rec.Citations >= 5:
		score += citationBonusSome
	}

	if strings.HasPrefix(strings.ToLower(rec.URL), "https://") {
		score += httpsBonus
	}

	return clamp(score, 0, 100)
}

// ClampReliability bounds a reliability score to the valid [0,100] range.
// Records scored by ScoreSource already hold it; caller-supplied records do
// not, and everything downstream assumes the range.
func ClampReliability(v float64) float64 {
	return clamp(v, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
