package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/fetch"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/score"
)

// apiEvent is the loose shape of one event in a listing API payload.
// Fields double up because sources disagree on naming.
type apiEvent struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Location    string `json:"location"`
	City        string `json:"city"`
	Online      bool   `json:"online"`
}

// apiPage is one page of a listing API response. Either field may carry
// the events.
type apiPage struct {
	Events  []apiEvent `json:"events"`
	Results []apiEvent `json:"results"`
}

// APIStrategy discovers candidates from a paginated JSON listing
// endpoint, bypassing HTML parsing. Any API failure falls back to the
// generic scraping path for the same source rather than failing the
// source outright.
type APIStrategy struct {
	cfg       config.SourceConfig
	eventType score.EventType
	keywords  []string
	fetcher   fetch.Fetcher
	scorer    *score.Scorer
	log       *logger.Logger
	delay     time.Duration
}

// NewAPIStrategy creates an API strategy for one source.
func NewAPIStrategy(cfg config.SourceConfig, eventType score.EventType, keywords []string, fetcher fetch.Fetcher, scorer *score.Scorer, log *logger.Logger) *APIStrategy {
	return &APIStrategy{
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
func (s *APIStrategy) Name() string {
	return s.cfg.Name
}

// SetDelay overrides the inter-page pause. Tests use zero.
func (s *APIStrategy) SetDelay(d time.Duration) {
	s.delay = d
}

// Discover pages through the API endpoint, mapping the payload straight
// into candidates. On the first API failure it falls back to scraping
// the same source.
func (s *APIStrategy) Discover(ctx context.Context, budget int) ([]*candidate.Candidate, error) {
	seen := make(map[string]bool)
	var out []*candidate.Candidate

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if budget > 0 && len(out) >= budget {
			break
		}

		events, err := s.fetchPage(ctx, page)
		if err != nil {
			s.log.Warn("api fetch failed, falling back to scraping", logger.Fields{
				"source": s.cfg.Name,
				"page":   page,
			})
			logger.IncrCounter("source.api_fallbacks")
			return s.scrapeFallback(ctx, budget)
		}

		added := 0
		for _, evt := range events {
			c := s.mapEvent(evt)
			if c == nil {
				continue
			}
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

		// Empty page means the listing is exhausted
		if added == 0 {
			break
		}

		if page < s.cfg.MaxPages {
			sleep(ctx, s.delay)
		}
	}

	logger.AddCounter("source."+s.cfg.Name+".candidates", int64(len(out)))
	return out, nil
}

// fetchPage retrieves and decodes one page of the listing API
func (s *APIStrategy) fetchPage(ctx context.Context, page int) ([]apiEvent, error) {
	body, err := s.fetcher.Fetch(ctx, paginatedURL(s.cfg.APIURL, page))
	if err != nil {
		return nil, err
	}

	var decoded apiPage
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, fmt.Errorf("decoding api page: %w", err)
	}

	if len(decoded.Events) > 0 {
		return decoded.Events, nil
	}
	return decoded.Results, nil
}

// mapEvent turns an API event into a scored candidate, applying the
// same URL and keyword gates as the scraping path. Returns nil when the
// event does not qualify.
func (s *APIStrategy) mapEvent(evt apiEvent) *candidate.Candidate {
	rawURL := evt.URL
	if rawURL == "" {
		rawURL = evt.Link
	}
	name := evt.Name
	if name == "" {
		name = evt.Title
	}

	if !classify.LooksLikeEventLink(rawURL, "") {
		return nil
	}
	if !matchesAnyKeyword(strings.ToLower(rawURL+" "+name+" "+evt.Description), s.keywords) {
		return nil
	}
	if !matchesURLPatterns(rawURL, s.cfg.URLPatterns) {
		return nil
	}

	c := candidate.New(rawURL, name, s.cfg.Name, candidate.MethodAPI)
	c.SetDescription(evt.Description)
	c.Location = eventLocation(evt)
	c.SetScore(s.scorer.Score(rawURL, name+" "+evt.Description, s.cfg.Reliability, s.eventType))

	return c
}

// scrapeFallback runs the generic scraping path for this source
func (s *APIStrategy) scrapeFallback(ctx context.Context, budget int) ([]*candidate.Candidate, error) {
	scraper := NewScrapeStrategy(s.cfg, s.eventType, s.keywords, s.fetcher, s.scorer, s.log)
	scraper.SetDelay(s.delay)
	return scraper.Discover(ctx, budget)
}

// eventLocation picks the best location string from an API event, with
// the same online-ness heuristics used by the scraping strategies.
func eventLocation(evt apiEvent) string {
	if evt.Online {
		return "Online"
	}
	if evt.Location != "" {
		return evt.Location
	}
	if evt.City != "" {
		return evt.City
	}
	lower := strings.ToLower(evt.Description)
	for _, term := range []string{"virtual", "online", "remote"} {
		if strings.Contains(lower, term) {
			return "Online"
		}
	}
	// No location detected passes all downstream filters unchanged
	return ""
}
