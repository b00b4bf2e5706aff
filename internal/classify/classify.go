// Package classify decides whether a URL is worth fetching at all.
//
// Two heuristic gates are provided: IsAggregator flags list/blog/calendar
// style pages that should be expanded into individual event links rather
// than treated as events themselves, and LooksLikeEventLink rejects
// obvious junk (social media, assets, legal pages) while requiring at
// least one event-domain keyword. Both are pure substring heuristics;
// callers treat uncertainty as rejection.
package classify

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Minimum raw URL length for a link to carry any meaning
const minURLLength = 10

// aggregatorPathIndicators mark pages that list many events rather than
// describing one. Matched against the URL path, case-insensitive.
var aggregatorPathIndicators = []string{
	"/blog/",
	"/blogs/",
	"/list",
	"/roundup",
	"/calendar",
	"/events-calendar",
	"/directory",
	"/top-",
	"/best-",
	"/upcoming",
}

// aggregatorDomains are sites whose whole purpose is aggregation.
var aggregatorDomains = []string{
	"eventbrite.",
	"meetup.com",
	"lanyrd.com",
	"conferenceindex.org",
	"allconferences.com",
	"10times.com",
	"confs.tech",
	"dev.events",
}

// skipPatterns reject URLs outright before any keyword check: social
// media, static assets, auth/legal/marketing paths, tracking parameters
// and spam markers.
var skipPatterns = []string{
	// social media
	"facebook.com", "twitter.com", "x.com/", "linkedin.com",
	"instagram.com", "youtube.com", "tiktok.com", "pinterest.com",
	"reddit.com",
	// static assets
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".pdf", ".zip", ".xml", ".woff",
	// auth, legal and marketing paths
	"/login", "/signin", "/sign-in", "/signup", "/sign-up", "/auth/",
	"/logout", "/password", "/privacy", "/terms", "/cookie", "/legal",
	"/about", "/contact", "/careers", "/pricing", "/faq", "/sitemap",
	"/feed/", "/rss", "mailto:", "javascript:", "/#",
	// tracking and spam
	"utm_", "fbclid=", "gclid=", "ref=", "affiliate",
	"casino", "viagra", "lottery", "xxx",
}

// eventKeywords is the accept list: a URL must contain at least one of
// these (or a current/near-future year) to pass LooksLikeEventLink.
// "conf" deliberately covers both "conf" and "conference" under
// substring matching.
var eventKeywords = []string{
	"conf", "summit", "hackathon", "symposium", "expo", "convention",
	"congress", "workshop", "meetup", "event", "festival",
	"cfp", "call-for-papers", "callforpapers",
	"register", "registration", "tickets", "agenda", "speakers",
	"devfest", "techweek",
}

// meaningfulPathTokens earn the structural preference bonus. Absence
// never rejects a URL on its own.
var meaningfulPathTokens = []string{
	"events", "conferences", "register", "hackathons", "summits",
}

// IsAggregator reports whether a URL points at a list/blog/calendar
// style page that should be expanded rather than kept as a candidate.
func IsAggregator(rawURL string) bool {
	lower := strings.ToLower(rawURL)

	parsed, err := url.Parse(lower)
	if err != nil {
		return false
	}

	for _, domain := range aggregatorDomains {
		if strings.Contains(parsed.Host, domain) {
			return true
		}
	}

	// Match indicators against path plus a trailing slash so "/blog/"
	// style markers also catch paths that end at the segment.
	path := parsed.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	for _, indicator := range aggregatorPathIndicators {
		if strings.Contains(path, indicator) {
			return true
		}
	}

	return false
}

// LooksLikeEventLink reports whether a URL superficially resembles a
// real event page. baseDomain, when non-empty, is the host of the page
// the link came from; bare links back to that host's root are treated
// as navigation and rejected.
func LooksLikeEventLink(rawURL, baseDomain string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if len(rawURL) < minURLLength {
		return false
	}

	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}

	for _, pattern := range skipPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	if baseDomain != "" {
		parsed, err := url.Parse(lower)
		if err != nil {
			return false
		}
		if strings.EqualFold(parsed.Host, baseDomain) && strings.Trim(parsed.Path, "/") == "" {
			return false
		}
	}

	return containsEventKeyword(lower)
}

// HasStructuralBonus reports whether a URL has the preferred shape:
// a shallow path (at most 4 segments) or a meaningful path token.
// Advisory only; used by link scoring, never for rejection.
func HasStructuralBonus(rawURL string) bool {
	parsed, err := url.Parse(strings.ToLower(rawURL))
	if err != nil {
		return false
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return true
	}

	segments := strings.Split(path, "/")
	if len(segments) <= 4 {
		return true
	}

	for _, token := range meaningfulPathTokens {
		if strings.Contains(path, token) {
			return true
		}
	}
	for _, year := range CurrentYears() {
		if strings.Contains(path, year) {
			return true
		}
	}

	return false
}

// ContainsEventKeyword reports whether text mentions any event-domain
// keyword or a current/near-future year.
func ContainsEventKeyword(text string) bool {
	return containsEventKeyword(strings.ToLower(text))
}

func containsEventKeyword(lower string) bool {
	for _, keyword := range eventKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	for _, year := range CurrentYears() {
		if strings.Contains(lower, year) {
			return true
		}
	}
	return false
}

// CurrentYears returns the current and next two years as strings, the
// window considered "current or near-future" by all keyword checks.
func CurrentYears() []string {
	year := time.Now().Year()
	return []string{
		fmt.Sprintf("%d", year),
		fmt.Sprintf("%d", year+1),
		fmt.Sprintf("%d", year+2),
	}
}
