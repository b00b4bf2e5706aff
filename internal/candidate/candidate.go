package candidate

import (
	"net/url"
	"strings"
)

// Field length bounds for candidate records
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 300
)

// Discovery methods tag how a candidate was found. They are provenance
// only and never drive scoring or filtering logic.
const (
	MethodSiteScraping        = "site_scraping"
	MethodSearch              = "search"
	MethodAggregatorExpansion = "aggregator_expansion"
	MethodAPI                 = "api"
)

// Candidate represents a possible event page discovered from one of the
// configured channels, scored but not yet enriched or confirmed.
type Candidate struct {
	URL             string  `json:"url"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Source          string  `json:"source"`
	DiscoveryMethod string  `json:"discovery_method"`
	QualityScore    float64 `json:"quality_score"`

	// Populated by search-based strategies only
	SearchQuery string `json:"search_query,omitempty"`
	Location    string `json:"location,omitempty"`
}

// New creates a Candidate with bounded fields. When name is empty a
// fallback is synthesized from the URL path so Name is never blank.
func New(rawURL, name, source, method string) *Candidate {
	cleaned := CleanName(name)
	if cleaned == "" {
		cleaned = fallbackName(rawURL)
	}

	return &Candidate{
		URL:             strings.TrimSpace(rawURL),
		Name:            cleaned,
		Source:          strings.ToLower(strings.TrimSpace(source)),
		DiscoveryMethod: method,
	}
}

// SetDescription sets a bounded description, collapsing whitespace.
func (c *Candidate) SetDescription(desc string) {
	desc = collapseWhitespace(desc)
	if len(desc) > MaxDescriptionLength {
		desc = desc[:MaxDescriptionLength]
	}
	c.Description = desc
}

// SetScore assigns the quality score, clamped to [0, 1].
func (c *Candidate) SetScore(score float64) {
	c.QualityScore = ClampScore(score)
}

// ClampScore bounds a score to [0.0, 1.0].
func ClampScore(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// NormalizeURL produces the dedup identity key for a URL: lower-cased
// with a single trailing slash stripped.
func NormalizeURL(rawURL string) string {
	normalized := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.TrimSuffix(normalized, "/")
}

// CleanName collapses internal whitespace and truncates to MaxNameLength.
func CleanName(name string) string {
	name = collapseWhitespace(name)
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return name
}

// fallbackName derives a readable name from the URL path when extraction
// yields nothing. "https://ex.com/ml-conference-2026/" becomes
// "ml conference 2026"; a bare host becomes the host name itself.
func fallbackName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "untitled event"
	}

	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		segments := strings.Split(path, "/")
		last := segments[len(segments)-1]
		last = strings.NewReplacer("-", " ", "_", " ", ".html", "", ".php", "").Replace(last)
		last = collapseWhitespace(last)
		if last != "" {
			return CleanName(last)
		}
	}

	if parsed.Host != "" {
		return CleanName(parsed.Host)
	}
	return "untitled event"
}

// collapseWhitespace replaces runs of whitespace with single spaces
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
