// Package extract pulls candidate event links out of a fetched page.
//
// Anchor tags are the primary signal: each href is resolved against the
// page URL, filtered through the classifier and scored from its anchor
// text and DOM context. Bare URLs found in the page's plain text are a
// secondary, low-confidence signal. The two sets are merged, deduplicated
// by normalized URL (keeping the higher score) and returned best first.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
)

// Scoring constants for anchor-context link quality
const (
	baseLinkScore      = 0.5
	actionPhraseBonus  = 0.2
	structuralBonus    = 0.1
	classTokenBonus    = 0.15
	urlTokenBonus      = 0.1
	trackingPenalty    = 0.2
	defaultFailedScore = 0.3
	textURLScore       = 0.3
)

// actionPhrases are high-value anchor texts that signal an actual event
// page behind the link. At most one bonus applies per anchor.
var actionPhrases = []string{
	"register", "registration", "buy tickets", "get tickets", "agenda",
	"speakers", "call for papers", "submit a talk", "attend", "rsvp",
	"learn more", "view event", "event details",
}

// eventTokens are checked inside class/id attributes and the URL itself.
var eventTokens = []string{"event", "conference", "register", "ticket", "summit", "hackathon", "conf"}

// structuralParents are container elements that suggest the anchor sits
// inside a structured listing.
var structuralParents = map[string]bool{
	"li": true, "td": true, "div": true, "article": true, "dd": true,
}

// textURLPatterns find event-shaped bare URLs in page text that carry no
// anchor context.
var textURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://[^\s"'<>()]*(?:conference|summit|event)[^\s"'<>()]*`),
	regexp.MustCompile(`https?://[^\s"'<>()]*(?:register|cfp)[^\s"'<>()]*`),
	regexp.MustCompile(`https?://[^\s"'<>()]*(?:hackathon|expo)[-_/a-z0-9]*2\d{3}[^\s"'<>()]*`),
}

// Link is a scored candidate URL extracted from a page.
type Link struct {
	URL   string
	Score float64
}

// Links extracts scored candidate links from html fetched at baseURL,
// best first. Returns an error only when the HTML cannot be parsed at
// all; individual malformed anchors are skipped.
func Links(html, baseURL string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	best := make(map[string]Link)

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" {
			return
		}
		if !classify.LooksLikeEventLink(abs, base.Host) {
			return
		}
		merge(best, Link{URL: abs, Score: linkScore(sel, abs)})
	})

	// Secondary pass: event-shaped bare URLs in the page text. These
	// lack anchor context so they all get a fixed low score.
	for _, pattern := range textURLPatterns {
		for _, match := range pattern.FindAllString(doc.Text(), -1) {
			match = strings.TrimRight(match, ".,;:")
			if !classify.LooksLikeEventLink(match, base.Host) {
				continue
			}
			merge(best, Link{URL: match, Score: textURLScore})
		}
	}

	links := make([]Link, 0, len(best))
	for _, l := range best {
		links = append(links, l)
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Score != links[j].Score {
			return links[i].Score > links[j].Score
		}
		return links[i].URL < links[j].URL
	})

	return links, nil
}

// merge keeps the higher score when two links normalize to the same URL
func merge(best map[string]Link, l Link) {
	key := candidate.NormalizeURL(l.URL)
	if existing, ok := best[key]; !ok || l.Score > existing.Score {
		best[key] = l
	}
}

// linkScore rates an anchor from its text and DOM context. Adjustments
// are independent and order-insensitive; the result is clamped to [0,1].
// Any failure analyzing the tag yields a conservative default.
func linkScore(sel *goquery.Selection, absURL string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = defaultFailedScore
		}
	}()

	score = baseLinkScore
	lowerURL := strings.ToLower(absURL)

	text := strings.ToLower(strings.TrimSpace(sel.Text()))
	for _, phrase := range actionPhrases {
		if strings.Contains(text, phrase) {
			score += actionPhraseBonus
			break
		}
	}

	if parent := sel.Parent(); parent.Length() > 0 && structuralParents[goquery.NodeName(parent)] {
		score += structuralBonus
	}

	attrs := strings.ToLower(sel.AttrOr("class", "") + " " + sel.AttrOr("id", ""))
	for _, token := range eventTokens {
		if strings.Contains(attrs, token) {
			score += classTokenBonus
			break
		}
	}

	for _, token := range eventTokens {
		if strings.Contains(lowerURL, token) {
			score += urlTokenBonus
			break
		}
	}

	if len(absURL) > 200 || strings.Count(absURL, "?") > 1 || strings.Count(absURL, "&") > 3 {
		score -= trackingPenalty
	}

	return candidate.ClampScore(score)
}

// resolveURL resolves href against the page URL, returning "" for
// anything that does not end up absolute http(s).
func resolveURL(base *url.URL, href string) string {
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
