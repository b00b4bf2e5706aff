package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/fetch"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/score"
)

// ScrapeStrategy discovers candidates by scraping a source's listing
// pages. It paginates each search URL up to max_pages and stops a URL's
// pagination early once a page contributes nothing new.
type ScrapeStrategy struct {
	cfg       config.SourceConfig
	eventType score.EventType
	keywords  []string
	fetcher   fetch.Fetcher
	scorer    *score.Scorer
	log       *logger.Logger
	delay     time.Duration
}

// NewScrapeStrategy creates a scraping strategy for one source.
func NewScrapeStrategy(cfg config.SourceConfig, eventType score.EventType, keywords []string, fetcher fetch.Fetcher, scorer *score.Scorer, log *logger.Logger) *ScrapeStrategy {
	return &ScrapeStrategy{
		cfg:       cfg,
		eventType: eventType,
		keywords:  keywords,
		fetcher:   fetcher,
		scorer:    scorer,
		log:       log,
		delay:     pageDelay,
	}
}

// Name returns the configured source name.
func (s *ScrapeStrategy) Name() string {
	return s.cfg.Name
}

// SetDelay overrides the inter-page pause. Tests use zero.
func (s *ScrapeStrategy) SetDelay(d time.Duration) {
	s.delay = d
}

// Discover scrapes the source's search URLs page by page. Individual
// page failures are logged and skipped; the error return is reserved
// for a source with no usable URLs at all.
func (s *ScrapeStrategy) Discover(ctx context.Context, budget int) ([]*candidate.Candidate, error) {
	searchURLs := s.cfg.SearchURLs
	if len(searchURLs) == 0 && s.cfg.BaseURL != "" {
		searchURLs = []string{s.cfg.BaseURL}
	}
	if len(searchURLs) == 0 {
		return nil, fmt.Errorf("source %q has no URLs to scrape", s.cfg.Name)
	}

	seen := make(map[string]bool)
	var out []*candidate.Candidate

	for _, searchURL := range searchURLs {
		if budget > 0 && len(out) >= budget {
			break
		}

		for page := 1; page <= s.cfg.MaxPages; page++ {
			if budget > 0 && len(out) >= budget {
				break
			}

			pageURL := paginatedURL(searchURL, page)
			html, err := s.fetcher.Fetch(ctx, pageURL)
			if err != nil {
				s.log.Warn("page fetch failed", logger.Fields{
					"source": s.cfg.Name,
					"url":    pageURL,
				})
				break
			}

			added := 0
			for _, c := range extractCandidates(html, pageURL, s.cfg, s.keywords, s.scorer, s.eventType) {
				key := candidate.NormalizeURL(c.URL)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, c)
				added++
				if budget > 0 && len(out) >= budget {
					break
				}
			}

			s.log.Debug("page scraped", logger.Fields{
				"source": s.cfg.Name,
				"page":   page,
				"added":  added,
			})

			// A page with nothing new signals the end of results
			if added == 0 {
				break
			}

			if page < s.cfg.MaxPages {
				sleep(ctx, s.delay)
			}
		}
	}

	logger.AddCounter("source."+s.cfg.Name+".candidates", int64(len(out)))
	return out, nil
}

// paginatedURL builds the URL for a given page. A "{page}" placeholder
// in the search URL is substituted; otherwise pages beyond the first
// get a ?page=N query parameter.
func paginatedURL(searchURL string, page int) string {
	if strings.Contains(searchURL, "{page}") {
		return strings.ReplaceAll(searchURL, "{page}", fmt.Sprintf("%d", page))
	}
	if page <= 1 {
		return searchURL
	}
	sep := "?"
	if strings.Contains(searchURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", searchURL, sep, page)
}
