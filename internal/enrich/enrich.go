// Package enrich hands ranked candidates to a content extractor through
// a small worker pool. This is the one concurrent region around the
// discovery core: the extractor typically calls a rate-limited external
// language model, so the pool stays at low single-digit concurrency.
package enrich

import (
	"context"
	"sync"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/fetch"
	"github.com/pfrederiksen/event-scout/internal/logger"
)

// DefaultWorkers bounds the pool; external API rate limits keep this
// conservative.
const DefaultWorkers = 3

// Record is the structured output of enrichment for one candidate.
type Record struct {
	URL         string   `json:"url"`
	Name        string   `json:"name"`
	Dates       string   `json:"dates,omitempty"`
	Location    string   `json:"location,omitempty"`
	Themes      []string `json:"themes,omitempty"`
	Description string   `json:"description,omitempty"`
	Fallback    bool     `json:"fallback,omitempty"`
}

// Extractor turns raw page content into a structured record. It may
// call an external language model; failures produce a fallback record,
// never abort the batch.
type Extractor interface {
	Extract(ctx context.Context, url, content string) (*Record, error)
}

// Pool fans candidates out to fetch+extract workers, preserving input
// order in the output.
type Pool struct {
	fetcher   fetch.Fetcher
	extractor Extractor
	workers   int
	log       *logger.Logger
}

// NewPool creates a pool. workers <= 0 uses the default.
func NewPool(fetcher fetch.Fetcher, extractor Extractor, workers int, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{
		fetcher:   fetcher,
		extractor: extractor,
		workers:   workers,
		log:       log,
	}
}

// Enrich processes candidates through the pool and returns one record
// per candidate, in input order. A candidate whose fetch or extraction
// fails yields a fallback record built from discovery data alone.
func (p *Pool) Enrich(ctx context.Context, candidates []*candidate.Candidate) []*Record {
	records := make([]*Record, len(candidates))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		go func(idx int, c *candidate.Candidate) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			records[idx] = p.enrichOne(ctx, c)
		}(i, c)
	}

	wg.Wait()
	return records
}

// enrichOne fetches and extracts a single candidate
func (p *Pool) enrichOne(ctx context.Context, c *candidate.Candidate) *Record {
	content, err := p.fetcher.Fetch(ctx, c.URL)
	if err != nil {
		p.log.Warn("enrichment fetch failed", logger.Fields{
			"url": c.URL,
		})
		logger.IncrCounter("enrich.fallbacks")
		return fallbackRecord(c)
	}

	record, err := p.extractor.Extract(ctx, c.URL, content)
	if err != nil || record == nil {
		p.log.Warn("extraction failed", logger.Fields{
			"url": c.URL,
		})
		logger.IncrCounter("enrich.fallbacks")
		return fallbackRecord(c)
	}

	if record.URL == "" {
		record.URL = c.URL
	}
	if record.Name == "" {
		record.Name = c.Name
	}
	return record
}

// fallbackRecord builds a record from discovery data when enrichment
// fails.
func fallbackRecord(c *candidate.Candidate) *Record {
	return &Record{
		URL:         c.URL,
		Name:        c.Name,
		Location:    c.Location,
		Description: c.Description,
		Fallback:    true,
	}
}
