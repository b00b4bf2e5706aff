// Package score assigns the general-purpose quality score used for
// final ranking. The score starts from the source's reliability prior,
// is raised to a trusted-domain floor when the domain is known, and
// collects small additive content bonuses before clamping to [0,1].
package score

import (
	"net/url"
	"strings"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
)

// EventType selects which bonus table applies.
type EventType string

const (
	EventConference EventType = "conference"
	EventHackathon  EventType = "hackathon"
)

// Content bonus weights
const (
	yearBonus        = 0.1
	substanceBonus   = 0.05
	cleanURLBonus    = 0.05
	primaryTypeBonus = 0.1
	extraTypeBonus   = 0.05
)

// spamTokens mark placeholder or test URLs that forfeit the clean-URL
// bonus.
var spamTokens = []string{"test", "example", "placeholder"}

// bonusTable holds the event-type-specific term lists. Conference and
// hackathon scoring share the same base; only these deltas differ.
type bonusTable struct {
	primaryTerms []string
	primaryBonus float64
	extraTerms   []string
	extraBonus   float64
}

var bonusTables = map[EventType]bonusTable{
	EventConference: {
		primaryTerms: []string{"register", "registration", "speaker", "agenda", "keynote", "cfp"},
		primaryBonus: primaryTypeBonus,
		extraTerms:   []string{"ai", "machine learning", "ml", "artificial intelligence", "llm", "data science"},
		extraBonus:   extraTypeBonus,
	},
	EventHackathon: {
		primaryTerms: []string{"prize", "prizes", "award", "bounty", "winner"},
		primaryBonus: extraTypeBonus,
		extraTerms:   []string{"remote", "online", "virtual", "hybrid"},
		extraBonus:   extraTypeBonus,
	},
}

// Scorer computes quality scores against a configured trusted-domain
// table.
type Scorer struct {
	trusted map[string]float64
}

// NewScorer creates a scorer. trusted maps domain suffixes to floor
// scores and may be nil.
func NewScorer(trusted map[string]float64) *Scorer {
	return &Scorer{trusted: trusted}
}

// Score rates a candidate in [0,1] from its URL, its visible text and
// the reliability prior of the channel that produced it.
func (s *Scorer) Score(rawURL, text string, reliability float64, eventType EventType) float64 {
	base := candidate.ClampScore(reliability)

	// Trusted-domain floor: raises the base, never lowers it
	if floor, ok := s.trustedScore(rawURL); ok && floor > base {
		base = floor
	}

	lowerText := strings.ToLower(text)
	lowerURL := strings.ToLower(rawURL)

	score := base

	for _, year := range classify.CurrentYears() {
		if strings.Contains(lowerText, year) {
			score += yearBonus
			break
		}
	}

	if len(strings.TrimSpace(text)) > 30 {
		score += substanceBonus
	}

	if !containsAny(lowerURL, spamTokens) {
		score += cleanURLBonus
	}

	if table, ok := bonusTables[eventType]; ok {
		if containsAny(lowerText, table.primaryTerms) {
			score += table.primaryBonus
		}
		if containsAny(lowerText, table.extraTerms) {
			score += table.extraBonus
		}
	}

	return candidate.ClampScore(score)
}

// trustedScore looks the URL's host up in the trusted-domain table,
// matching by suffix so "conferences.ieee.org" hits "ieee.org".
func (s *Scorer) trustedScore(rawURL string) (float64, bool) {
	if len(s.trusted) == 0 {
		return 0, false
	}

	parsed, err := url.Parse(strings.ToLower(rawURL))
	if err != nil || parsed.Host == "" {
		return 0, false
	}

	for domain, floor := range s.trusted {
		domain = strings.ToLower(domain)
		if parsed.Host == domain || strings.HasSuffix(parsed.Host, "."+domain) {
			return floor, true
		}
	}

	return 0, false
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
