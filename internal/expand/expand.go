// Package expand turns aggregator pages (blog roundups, calendars,
// directories) into the individual event links they point at.
//
// Expansion is deliberately conservative: links surviving the extractor
// are additionally gated by a domain-only reputation score, an
// aggregator never expands to itself, and every failure degrades to an
// empty result rather than an error reaching the caller.
package expand

import (
	"context"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
	"github.com/pfrederiksen/event-scout/internal/extract"
	"github.com/pfrederiksen/event-scout/internal/fetch"
	"github.com/pfrederiksen/event-scout/internal/logger"
)

// DefaultDelay is the pause before each expansion fetch, basic courtesy
// toward aggregator hosts.
const DefaultDelay = 1 * time.Second

// BatchStats counts the outcomes of a batch expansion.
type BatchStats struct {
	Expanded    int // aggregators that yielded at least one link
	Failed      int // aggregators that fell back to their original URL
	Passthrough int // inputs that were not aggregators
}

// Expander fetches aggregator pages and extracts event links from them.
type Expander struct {
	fetcher fetch.Fetcher
	log     *logger.Logger
	delay   time.Duration
}

// New creates an Expander using the given fetcher.
func New(fetcher fetch.Fetcher, log *logger.Logger) *Expander {
	return &Expander{
		fetcher: fetcher,
		log:     log,
		delay:   DefaultDelay,
	}
}

// SetDelay overrides the pre-fetch rate-limit pause. Tests use zero.
func (e *Expander) SetDelay(d time.Duration) {
	e.delay = d
}

// Expand fetches an aggregator page and returns candidate event URLs in
// descending extractor-score order. Failures return an empty slice; the
// aggregator's own URL is never included.
func (e *Expander) Expand(ctx context.Context, aggregatorURL string) []string {
	e.pause(ctx)

	html, err := e.fetcher.Fetch(ctx, aggregatorURL)
	if err != nil {
		e.log.Warn("aggregator fetch failed", logger.Fields{
			"url": aggregatorURL,
		})
		return nil
	}

	links, err := extract.Links(html, aggregatorURL)
	if err != nil {
		e.log.Warn("aggregator parse failed", logger.Fields{
			"url": aggregatorURL,
		})
		return nil
	}

	self := candidate.NormalizeURL(aggregatorURL)
	kept := make([]string, 0, len(links))
	filtered := 0

	for _, link := range links {
		if candidate.NormalizeURL(link.URL) == self {
			continue
		}
		if DomainReputation(link.URL) < MinReputation {
			filtered++
			continue
		}
		kept = append(kept, link.URL)
	}

	e.log.Info("aggregator expanded", logger.Fields{
		"url":      aggregatorURL,
		"kept":     len(kept),
		"filtered": filtered,
	})
	logger.AddCounter("expand.links.kept", int64(len(kept)))
	logger.AddCounter("expand.links.filtered", int64(filtered))

	return kept
}

// ExpandBatch expands every aggregator-looking URL in urls and passes
// the rest through unchanged. An aggregator whose expansion fails or
// comes back empty falls back to its original URL. Output is
// deduplicated by normalized URL preserving first-seen order across the
// whole batch, so downstream budget truncation sees a stable prefix.
func (e *Expander) ExpandBatch(ctx context.Context, urls []string) ([]string, BatchStats) {
	var stats BatchStats
	out := make([]string, 0, len(urls))

	for _, u := range urls {
		if !classify.IsAggregator(u) {
			stats.Passthrough++
			out = append(out, u)
			continue
		}

		expanded := e.Expand(ctx, u)
		if len(expanded) == 0 {
			stats.Failed++
			out = append(out, u)
			continue
		}

		stats.Expanded++
		out = append(out, expanded...)
	}

	e.log.Info("batch expansion finished", logger.Fields{
		"inputs":      len(urls),
		"expanded":    stats.Expanded,
		"failed":      stats.Failed,
		"passthrough": stats.Passthrough,
	})

	return dedupeStrings(out), stats
}

// pause sleeps for the configured delay unless the context ends first
func (e *Expander) pause(ctx context.Context) {
	if e.delay <= 0 {
		return
	}
	select {
	case <-time.After(e.delay):
	case <-ctx.Done():
	}
}

// dedupeStrings removes duplicates by normalized URL, keeping first-seen
// order.
func dedupeStrings(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		key := candidate.NormalizeURL(u)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, u)
	}
	return unique
}
