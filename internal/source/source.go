// Package source implements the discovery strategies: generic site
// scraping, paginated JSON APIs, keyword web search and RSS feeds. Each
// strategy produces raw scored candidates from one external channel; the
// orchestrator owns fan-out, dedup and ranking.
package source

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/score"
)

// Per-page and text bounds shared by the scraping strategies
const (
	maxCandidatesPerPage = 20
	minLinkTextLength    = 5
	minDescriptionLength = 20
	pageDelay            = 1 * time.Second
)

// Strategy is one discovery channel. Discover returns raw scored
// candidates, at most budget of them; implementations stop paginating
// or querying once the budget is met.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, budget int) ([]*candidate.Candidate, error)
}

// extractCandidates pulls event candidates out of a listing page's HTML.
// Shared by the scrape strategy and the API strategy's HTML fallback.
func extractCandidates(html, pageURL string, cfg config.SourceConfig, keywords []string, scorer *score.Scorer, eventType score.EventType) []*candidate.Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Parse failure means zero candidates from this page
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	out := make([]*candidate.Candidate, 0, maxCandidatesPerPage)

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(out) >= maxCandidatesPerPage {
			return false
		}

		text := strings.TrimSpace(sel.Text())
		if len(text) < minLinkTextLength {
			return true
		}

		href, _ := sel.Attr("href")
		abs := resolveAgainst(base, href)
		if abs == "" {
			return true
		}

		if !classify.LooksLikeEventLink(abs, base.Host) {
			return true
		}
		if !matchesAnyKeyword(strings.ToLower(abs+" "+text), keywords) {
			return true
		}
		if !matchesURLPatterns(abs, cfg.URLPatterns) {
			return true
		}

		key := candidate.NormalizeURL(abs)
		if seen[key] {
			return true
		}
		seen[key] = true

		c := candidate.New(abs, text, cfg.Name, candidate.MethodSiteScraping)
		if desc := siblingDescription(sel); desc != "" {
			c.SetDescription(desc)
		}
		c.SetScore(scorer.Score(abs, text+" "+c.Description, cfg.Reliability, eventType))

		out = append(out, c)
		return true
	})

	return out
}

// siblingDescription looks for a nearby text block that reads like a
// description: between 20 and 300 characters of sibling text.
func siblingDescription(sel *goquery.Selection) string {
	for _, probe := range []*goquery.Selection{sel.Next(), sel.Parent().Next()} {
		if probe.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(probe.Text())
		if len(text) >= minDescriptionLength && len(text) <= candidate.MaxDescriptionLength {
			return text
		}
	}
	return ""
}

// matchesAnyKeyword reports whether text contains one of the event-type
// keywords. An empty keyword list matches everything.
func matchesAnyKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// matchesURLPatterns applies the source's url_patterns substring gate.
// No patterns means no restriction.
func matchesURLPatterns(rawURL string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	lower := strings.ToLower(rawURL)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// resolveAgainst resolves href against the page URL, returning "" for
// anything that is not absolute http(s) afterwards.
func resolveAgainst(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// sleep pauses between pages or queries unless the context ends first
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
