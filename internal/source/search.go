package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/score"
)

// Defaults for the search channel
const (
	searchSourceName    = "tavily"
	queryDelay          = 1 * time.Second
	resultsPerQuery     = 10
	searchReliability   = 0.6
	tavilyEndpoint      = "https://api.tavily.com/search"
	searchClientTimeout = 15 * time.Second
)

// SearchResult is one hit from a search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchProvider is a keyword web-search API. Implementations are
// rate/credit limited, which is why the search strategy early-stops
// aggressively.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// TavilyClient talks to the Tavily search API.
type TavilyClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewTavilyClient creates a Tavily search client.
func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		apiKey:     apiKey,
		endpoint:   tavilyEndpoint,
		httpClient: &http.Client{Timeout: searchClientTimeout},
	}
}

// SetEndpoint overrides the API endpoint. Tests point it at a local
// server.
func (t *TavilyClient) SetEndpoint(endpoint string) {
	t.endpoint = endpoint
}

// Name returns the provider identifier.
func (t *TavilyClient) Name() string {
	return searchSourceName
}

// Search runs one query against the Tavily API.
func (t *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"api_key":     t.apiKey,
		"query":       query,
		"max_results": maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}
	return results, nil
}

// SearchStrategy discovers candidates through a keyword search API. It
// issues queries sequentially and stops the moment the budget is met,
// both between queries and inside a query's result loop, because every
// query spends rate-limited credits.
type SearchStrategy struct {
	provider  SearchProvider
	queries   []string
	eventType score.EventType
	scorer    *score.Scorer
	log       *logger.Logger
	delay     time.Duration
}

// NewSearchStrategy creates a search strategy over the given queries.
func NewSearchStrategy(provider SearchProvider, queries []string, eventType score.EventType, scorer *score.Scorer, log *logger.Logger) *SearchStrategy {
	return &SearchStrategy{
		provider:  provider,
		queries:   queries,
		eventType: eventType,
		scorer:    scorer,
		log:       log,
		delay:     queryDelay,
	}
}

// Name returns the provider identifier.
func (s *SearchStrategy) Name() string {
	return s.provider.Name()
}

// SetDelay overrides the post-query pause. Tests use zero.
func (s *SearchStrategy) SetDelay(d time.Duration) {
	s.delay = d
}

// Discover runs queries until the budget is met or queries run out.
// Failed queries are logged and skipped; the post-query delay applies
// regardless of outcome.
func (s *SearchStrategy) Discover(ctx context.Context, budget int) ([]*candidate.Candidate, error) {
	seen := make(map[string]bool)
	var out []*candidate.Candidate

	for _, query := range s.queries {
		if budget > 0 && len(out) >= budget {
			break
		}

		results, err := s.provider.Search(ctx, query, resultsPerQuery)
		if err != nil {
			s.log.Warn("search query failed", logger.Fields{
				"provider": s.provider.Name(),
				"query":    query,
			})
		}

		for _, r := range results {
			if budget > 0 && len(out) >= budget {
				break
			}

			if !classify.LooksLikeEventLink(r.URL, "") {
				continue
			}
			key := candidate.NormalizeURL(r.URL)
			if seen[key] {
				continue
			}
			seen[key] = true

			c := candidate.New(r.URL, r.Title, s.provider.Name(), candidate.MethodSearch)
			c.SetDescription(r.Snippet)
			c.SearchQuery = query
			c.Location = queryLocation(query)
			c.SetScore(s.scorer.Score(r.URL, r.Title+" "+r.Snippet, searchReliability, s.eventType))

			out = append(out, c)
		}

		sleep(ctx, s.delay)
	}

	logger.AddCounter("source."+s.provider.Name()+".candidates", int64(len(out)))
	return out, nil
}

// BuildQueries crosses event-type search queries with target locations.
// Locations are optional; queries without one search globally.
func BuildQueries(baseQueries, locations []string) []string {
	if len(locations) == 0 {
		return baseQueries
	}

	queries := make([]string, 0, len(baseQueries)*(len(locations)+1))
	for _, q := range baseQueries {
		queries = append(queries, q)
		for _, loc := range locations {
			queries = append(queries, q+" "+loc)
		}
	}
	return queries
}

// queryLocation recovers the location suffix appended by BuildQueries,
// best effort only.
func queryLocation(query string) string {
	for _, loc := range []string{"online", "virtual", "remote"} {
		if strings.Contains(strings.ToLower(query), loc) {
			return "Online"
		}
	}
	return ""
}
