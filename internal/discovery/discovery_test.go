package discovery

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/logger"
)

// mapFetcher serves canned pages keyed by URL
type mapFetcher struct {
	pages map[string]string
}

func (f *mapFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if page, ok := f.pages[rawURL]; ok {
		return page, nil
	}
	return "", fmt.Errorf("no page for %s", rawURL)
}

const directoryPage = `<html><body><ul>
<li><a href="/conference/ml-summit-2026">ML Summit 2026</a></li>
<li><a href="/conference/devworld-2026">DevWorld Conference</a></li>
<li><a href="/conference/cloud-native-con">CloudNative Conference</a></li>
</ul></body></html>`

const roundupPage = `<html><body>
<p>Our roundup of the best conferences:</p>
<a href="https://conferences.ieee.org/ai-summit">IEEE AI Summit conference</a>
<a href="https://spam-events.xyz/mega-conference">Mega conference</a>
</body></html>`

func testConfig() *config.Config {
	return &config.Config{
		EventTypes: map[string]config.EventTypeConfig{
			"conference": {
				Keywords: []string{"conference", "summit"},
				Sources: []config.SourceConfig{
					{
						Name:        "techconf-directory",
						BaseURL:     "https://directory.example.com",
						SearchURLs:  []string{"https://directory.example.com/conferences"},
						Reliability: 0.8,
					},
				},
			},
		},
	}
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, fetcher *mapFetcher) *Orchestrator {
	t.Helper()
	o, err := New(Options{
		Config:  cfg,
		Fetcher: fetcher,
		Logger:  logger.New(logger.LevelError, io.Discard),
		Delay:   -1,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	o.Expander().SetDelay(0)
	return o
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	bad := &config.Config{
		EventTypes: map[string]config.EventTypeConfig{
			"conference": {
				Sources: []config.SourceConfig{{BaseURL: "https://example.com"}},
			},
		},
	}
	if _, err := New(Options{Config: bad}); err == nil {
		t.Fatal("expected error for a source with no name")
	}
}

func TestDiscoverUnknownEventType(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(), &mapFetcher{})
	if _, err := o.Discover(context.Background(), "meetup", 10); err == nil {
		t.Fatal("expected error for an unconfigured event type")
	}
}

func TestDiscoverRankedAndBounded(t *testing.T) {
	fetcher := &mapFetcher{pages: map[string]string{
		"https://directory.example.com/conferences": directoryPage,
	}}
	o := newTestOrchestrator(t, testConfig(), fetcher)

	result, err := o.Discover(context.Background(), "conference", 2)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(result.Candidates) > 2 {
		t.Errorf("expected at most 2 candidates, got %d", len(result.Candidates))
	}
	for i := 1; i < len(result.Candidates); i++ {
		if result.Candidates[i].QualityScore > result.Candidates[i-1].QualityScore {
			t.Errorf("candidates not ranked descending at %d", i)
		}
	}
	if result.EventType != "conference" {
		t.Errorf("unexpected event type: %q", result.EventType)
	}
	if result.Stats.Final != len(result.Candidates) {
		t.Errorf("stats.Final = %d, candidates = %d", result.Stats.Final, len(result.Candidates))
	}
}

func TestDiscoverDedup(t *testing.T) {
	cfg := testConfig()
	etc := cfg.EventTypes["conference"]
	etc.Sources = append(etc.Sources, config.SourceConfig{
		Name:        "mirror-directory",
		BaseURL:     "https://directory.example.com",
		SearchURLs:  []string{"https://directory.example.com/conferences-mirror"},
		Reliability: 0.5,
	})
	cfg.EventTypes["conference"] = etc

	// Both sources list the same three event URLs
	fetcher := &mapFetcher{pages: map[string]string{
		"https://directory.example.com/conferences":        directoryPage,
		"https://directory.example.com/conferences-mirror": directoryPage,
	}}
	o := newTestOrchestrator(t, cfg, fetcher)

	result, err := o.Discover(context.Background(), "conference", 50)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if result.Stats.TotalFound != 6 {
		t.Errorf("expected 6 raw candidates across both sources, got %d", result.Stats.TotalFound)
	}
	if result.Stats.Unique != 3 {
		t.Errorf("expected 3 unique candidates, got %d", result.Stats.Unique)
	}

	seen := make(map[string]bool)
	for _, c := range result.Candidates {
		if seen[c.URL] {
			t.Errorf("duplicate URL in final output: %s", c.URL)
		}
		seen[c.URL] = true
	}
}

func TestDiscoverSourceFailureTolerated(t *testing.T) {
	cfg := testConfig()
	etc := cfg.EventTypes["conference"]
	etc.Sources = append([]config.SourceConfig{{
		Name:        "dead-directory",
		BaseURL:     "https://dead.example.com",
		Reliability: 0.5,
	}}, etc.Sources...)
	cfg.EventTypes["conference"] = etc

	fetcher := &mapFetcher{pages: map[string]string{
		"https://directory.example.com/conferences": directoryPage,
	}}
	o := newTestOrchestrator(t, cfg, fetcher)

	result, err := o.Discover(context.Background(), "conference", 10)
	if err != nil {
		t.Fatalf("one dead source must not fail the run: %v", err)
	}
	if len(result.Candidates) != 3 {
		t.Errorf("expected the healthy source's candidates, got %d", len(result.Candidates))
	}
	if result.Stats.PerSource["dead-directory"] != 0 {
		t.Errorf("dead source should contribute nothing, got %d", result.Stats.PerSource["dead-directory"])
	}
}

func TestDiscoverExpandsAggregators(t *testing.T) {
	cfg := testConfig()
	etc := cfg.EventTypes["conference"]
	etc.Sources = []config.SourceConfig{{
		Name:        "conference-blog",
		BaseURL:     "https://blogsite.example.com",
		SearchURLs:  []string{"https://blogsite.example.com/posts"},
		Reliability: 0.6,
	}}
	cfg.EventTypes["conference"] = etc

	fetcher := &mapFetcher{pages: map[string]string{
		"https://blogsite.example.com/posts": `<html><body>
			<a href="/blog/top-10-ai-conferences">Top 10 AI conferences roundup</a>
		</body></html>`,
		"https://blogsite.example.com/blog/top-10-ai-conferences": roundupPage,
	}}
	o := newTestOrchestrator(t, cfg, fetcher)

	result, err := o.Discover(context.Background(), "conference", 10)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if result.Stats.Expanded != 1 {
		t.Fatalf("expected 1 aggregator expansion, got %d", result.Stats.Expanded)
	}

	var sawMinted, sawAggregator, sawLowRep bool
	for _, c := range result.Candidates {
		switch c.URL {
		case "https://conferences.ieee.org/ai-summit":
			sawMinted = true
			if c.Source != "aggregator_expansion" {
				t.Errorf("minted candidate has wrong source: %q", c.Source)
			}
		case "https://blogsite.example.com/blog/top-10-ai-conferences":
			sawAggregator = true
		case "https://spam-events.xyz/mega-conference":
			sawLowRep = true
		}
	}

	if !sawMinted {
		t.Error("expected the expanded event link in the final output")
	}
	if sawAggregator {
		t.Error("successfully expanded aggregator should be replaced, not kept")
	}
	if sawLowRep {
		t.Error("low-reputation expansion link should be filtered out")
	}
}

func TestDiscoverFailedExpansionKeepsAggregator(t *testing.T) {
	cfg := testConfig()
	etc := cfg.EventTypes["conference"]
	etc.Sources = []config.SourceConfig{{
		Name:        "conference-blog",
		BaseURL:     "https://blogsite.example.com",
		SearchURLs:  []string{"https://blogsite.example.com/posts"},
		Reliability: 0.6,
	}}
	cfg.EventTypes["conference"] = etc

	// The roundup page itself is unreachable
	fetcher := &mapFetcher{pages: map[string]string{
		"https://blogsite.example.com/posts": `<html><body>
			<a href="/blog/top-10-ai-conferences">Top 10 AI conferences roundup</a>
		</body></html>`,
	}}
	o := newTestOrchestrator(t, cfg, fetcher)

	result, err := o.Discover(context.Background(), "conference", 10)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if result.Stats.ExpansionsFailed != 1 {
		t.Errorf("expected 1 failed expansion, got %d", result.Stats.ExpansionsFailed)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].URL != "https://blogsite.example.com/blog/top-10-ai-conferences" {
		t.Errorf("failed expansion should keep the original candidate, got %+v", result.Candidates)
	}
}
