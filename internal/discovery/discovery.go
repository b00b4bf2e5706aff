// Package discovery drives a full discovery run: fan out across the
// configured sources for one event type, expand aggregator pages into
// individual event links, then deduplicate, rank and truncate to the
// target budget.
//
// A run is a sequential pipeline. One bad source, query or page is
// logged and skipped; the run returns whatever the remaining channels
// produced. Only invalid configuration is fatal.
package discovery

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/expand"
	"github.com/pfrederiksen/event-scout/internal/fetch"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/score"
	"github.com/pfrederiksen/event-scout/internal/source"
)

// DefaultSourceDelay is the pause between sources within one run.
const DefaultSourceDelay = 2 * time.Second

// Stats are the run statistics emitted alongside the ranked result.
// Counts only; not part of the functional contract.
type Stats struct {
	TotalFound       int            `json:"total_found"`
	Unique           int            `json:"unique"`
	Final            int            `json:"final"`
	PerSource        map[string]int `json:"per_source"`
	Expanded         int            `json:"expanded"`
	ExpansionsFailed int            `json:"expansions_failed"`
}

// Result is the outcome of one discovery run: ranked candidates plus
// run statistics.
type Result struct {
	EventType  string                 `json:"event_type"`
	Candidates []*candidate.Candidate `json:"candidates"`
	Stats      Stats                  `json:"stats"`
}

// Orchestrator coordinates all discovery strategies for an event type.
type Orchestrator struct {
	cfg         *config.Config
	fetcher     fetch.Fetcher
	scorer      *score.Scorer
	expander    *expand.Expander
	provider    source.SearchProvider
	log         *logger.Logger
	sourceDelay time.Duration
}

// Options configures an Orchestrator. Config is required; everything
// else has working defaults.
type Options struct {
	Config   *config.Config
	Fetcher  fetch.Fetcher         // defaults to an HTTP fetcher
	Provider source.SearchProvider // nil disables the search channel
	Logger   *logger.Logger        // defaults to the package logger
	Delay    time.Duration         // inter-source delay; <0 means none
}

// New creates an Orchestrator. Missing or invalid configuration is the
// one fatal error class in the engine.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("discovery: config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.New(logger.LevelInfo, os.Stderr)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher(fetch.DefaultTimeout)
	}

	delay := opts.Delay
	if delay == 0 {
		delay = DefaultSourceDelay
	}
	if delay < 0 {
		delay = 0
	}

	provider := opts.Provider
	if provider == nil && opts.Config.SearchAPIKey != "" {
		provider = source.NewTavilyClient(opts.Config.SearchAPIKey)
	}

	return &Orchestrator{
		cfg:         opts.Config,
		fetcher:     fetcher,
		scorer:      score.NewScorer(opts.Config.TrustedDomains),
		expander:    expand.New(fetcher, log),
		provider:    provider,
		log:         log,
		sourceDelay: delay,
	}, nil
}

// Expander exposes the run's aggregator expander, mainly so tests and
// the CLI can tune its delay.
func (o *Orchestrator) Expander() *expand.Expander {
	return o.expander
}

// Discover runs a full discovery pass for one event type and returns at
// most maxResults candidates, ranked by quality score descending. No
// error escapes for individual source failures; the run degrades to
// whatever succeeded.
func (o *Orchestrator) Discover(ctx context.Context, eventType string, maxResults int) (*Result, error) {
	etc, err := o.cfg.EventType(eventType)
	if err != nil {
		return nil, err
	}
	if maxResults < 0 {
		maxResults = 0
	}

	started := time.Now()
	et := score.EventType(eventType)
	stats := Stats{PerSource: make(map[string]int)}
	var raw []*candidate.Candidate

	o.log.Info("discovery started", logger.Fields{
		"event_type":  eventType,
		"max_results": maxResults,
		"sources":     len(etc.Sources),
	})

	// Configured sources in declaration order, API channels dispatched
	// by their use_api flag.
	for i, srcCfg := range etc.Sources {
		var strat source.Strategy
		if srcCfg.UseAPI {
			strat = source.NewAPIStrategy(srcCfg, et, etc.Keywords, o.fetcher, o.scorer, o.log)
		} else {
			strat = source.NewScrapeStrategy(srcCfg, et, etc.Keywords, o.fetcher, o.scorer, o.log)
		}

		found, err := strat.Discover(ctx, maxResults)
		if err != nil {
			o.log.Warn("source failed, continuing", logger.Fields{
				"source": strat.Name(),
			})
			logger.IncrCounter("discovery.sources.failed")
		}
		raw = append(raw, found...)
		stats.PerSource[strat.Name()] += len(found)

		if i < len(etc.Sources)-1 {
			o.pause(ctx)
		}
	}

	// Announcement feeds, when configured for this event type
	if len(etc.Feeds) > 0 {
		feeds := source.NewFeedStrategy(etc.Feeds, et, etc.Keywords, o.scorer, o.log)
		found, err := feeds.Discover(ctx, maxResults)
		if err != nil {
			o.log.Warn("feed channel failed, continuing", logger.Fields{})
		}
		raw = append(raw, found...)
		stats.PerSource[feeds.Name()] += len(found)
	}

	// Search channel: query only for what the budget still needs, since
	// every query spends rate-limited API credits.
	if o.provider != nil && len(etc.SearchQueries) > 0 && len(raw) < maxResults {
		queries := source.BuildQueries(etc.SearchQueries, o.cfg.TargetLocations)
		search := source.NewSearchStrategy(o.provider, queries, et, o.scorer, o.log)
		found, err := search.Discover(ctx, maxResults-len(raw))
		if err != nil {
			o.log.Warn("search channel failed, continuing", logger.Fields{
				"provider": o.provider.Name(),
			})
		}
		raw = append(raw, found...)
		stats.PerSource[search.Name()] += len(found)
	}

	// Aggregator expansion, only while still under budget
	if len(raw) < maxResults {
		raw = o.expandAggregators(ctx, raw, et, &stats)
	}

	stats.TotalFound = len(raw)

	unique := candidate.Dedupe(raw)
	stats.Unique = len(unique)

	candidate.Rank(unique)
	final := candidate.Truncate(unique, maxResults)
	stats.Final = len(final)

	logger.SetGauge("discovery.final_count", float64(stats.Final))
	logger.RecordTiming("discovery.run", time.Since(started))
	o.log.Info("discovery completed", logger.Fields{
		"event_type": eventType,
		"total":      stats.TotalFound,
		"unique":     stats.Unique,
		"final":      stats.Final,
		"per_source": stats.PerSource,
	})

	return &Result{
		EventType:  eventType,
		Candidates: final,
		Stats:      stats,
	}, nil
}

// expandAggregators replaces every candidate that classifies as an
// aggregator with the candidates minted from its expansion, keeping the
// original on failure. Minted candidates inherit the aggregator's score
// as their reliability prior and are scored as they are created.
func (o *Orchestrator) expandAggregators(ctx context.Context, candidates []*candidate.Candidate, et score.EventType, stats *Stats) []*candidate.Candidate {
	out := make([]*candidate.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if !classify.IsAggregator(c.URL) {
			out = append(out, c)
			continue
		}

		expanded := o.expander.Expand(ctx, c.URL)
		if len(expanded) == 0 {
			stats.ExpansionsFailed++
			out = append(out, c)
			continue
		}

		stats.Expanded++
		for _, u := range expanded {
			minted := candidate.New(u, "", "aggregator_expansion", candidate.MethodAggregatorExpansion)
			minted.SetScore(o.scorer.Score(u, minted.Name, c.QualityScore, et))
			out = append(out, minted)
			stats.PerSource["aggregator_expansion"]++
		}
	}

	return out
}

// pause waits the inter-source delay unless the context ends first
func (o *Orchestrator) pause(ctx context.Context) {
	if o.sourceDelay <= 0 {
		return
	}
	select {
	case <-time.After(o.sourceDelay):
	case <-ctx.Done():
	}
}
