package source

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/classify"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/score"
)

// feedReliability is the prior for announcement feeds; curated feeds
// sit above generic scraping but below hand-picked API sources.
const feedReliability = 0.7

// FeedStrategy discovers candidates from RSS/Atom announcement feeds.
// Feeds are not queryable, so items are pulled and filtered locally by
// the event-type keywords.
type FeedStrategy struct {
	feedURLs  []string
	eventType score.EventType
	keywords  []string
	parser    *gofeed.Parser
	scorer    *score.Scorer
	log       *logger.Logger
	delay     time.Duration
}

// NewFeedStrategy creates a feed strategy over the configured feed URLs.
func NewFeedStrategy(feedURLs []string, eventType score.EventType, keywords []string, scorer *score.Scorer, log *logger.Logger) *FeedStrategy {
	return &FeedStrategy{
		feedURLs:  feedURLs,
		eventType: eventType,
		keywords:  keywords,
		parser:    gofeed.NewParser(),
		scorer:    scorer,
		log:       log,
		delay:     pageDelay,
	}
}

// Name identifies the feed channel.
func (s *FeedStrategy) Name() string {
	return "feeds"
}

// SetDelay overrides the inter-feed pause. Tests use zero.
func (s *FeedStrategy) SetDelay(d time.Duration) {
	s.delay = d
}

// Discover pulls every configured feed and keeps items whose title or
// link matches the event keywords. A feed that fails to parse is
// skipped.
func (s *FeedStrategy) Discover(ctx context.Context, budget int) ([]*candidate.Candidate, error) {
	seen := make(map[string]bool)
	var out []*candidate.Candidate

	for i, feedURL := range s.feedURLs {
		if budget > 0 && len(out) >= budget {
			break
		}

		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			s.log.Warn("feed parse failed", logger.Fields{
				"feed": feedURL,
			})
			continue
		}

		for _, item := range feed.Items {
			if budget > 0 && len(out) >= budget {
				break
			}

			link := strings.TrimSpace(item.Link)
			title := strings.TrimSpace(item.Title)
			if !classify.LooksLikeEventLink(link, "") {
				continue
			}
			if !matchesAnyKeyword(strings.ToLower(title+" "+link), s.keywords) {
				continue
			}

			key := candidate.NormalizeURL(link)
			if seen[key] {
				continue
			}
			seen[key] = true

			c := candidate.New(link, title, "feeds", candidate.MethodAPI)
			c.SetDescription(item.Description)
			c.SetScore(s.scorer.Score(link, title+" "+item.Description, feedReliability, s.eventType))

			out = append(out, c)
		}

		if i < len(s.feedURLs)-1 {
			sleep(ctx, s.delay)
		}
	}

	logger.AddCounter("source.feeds.candidates", int64(len(out)))
	return out, nil
}
