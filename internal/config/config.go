// Package config loads the static data the discovery engine consumes:
// per-channel source definitions, event-type keyword lists, the trusted
// domain score table and target locations.
//
// Configuration is an explicitly constructed value passed into the
// orchestrator, never process-global state, so tests can build one
// inline without touching the filesystem.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceConfig declares one discovery channel.
type SourceConfig struct {
	Name        string            `yaml:"name"`
	BaseURL     string            `yaml:"base_url"`
	SearchURLs  []string          `yaml:"search_urls"`
	URLPatterns []string          `yaml:"url_patterns,omitempty"`
	MaxPages    int               `yaml:"max_pages"`
	Reliability float64           `yaml:"reliability"`
	UseAPI      bool              `yaml:"use_api,omitempty"`
	APIURL      string            `yaml:"api_url,omitempty"`
	Selectors   map[string]string `yaml:"selectors,omitempty"`
}

// EventTypeConfig groups the channels and keywords for one event type
// ("conference", "hackathon").
type EventTypeConfig struct {
	Keywords      []string       `yaml:"keywords"`
	SearchQueries []string       `yaml:"search_queries,omitempty"`
	Sources       []SourceConfig `yaml:"sources"`
	Feeds         []string       `yaml:"feeds,omitempty"`
}

// Config is the full static configuration for the discovery engine.
type Config struct {
	EventTypes      map[string]EventTypeConfig `yaml:"event_types"`
	TrustedDomains  map[string]float64         `yaml:"trusted_domains,omitempty"`
	TargetLocations []string                   `yaml:"target_locations,omitempty"`
	SearchAPIKey    string                     `yaml:"search_api_key,omitempty"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and fills defaults. Invalid source
// definitions are the one fatal error class in the engine: a run cannot
// proceed meaningfully without them.
func (c *Config) Validate() error {
	if len(c.EventTypes) == 0 {
		return fmt.Errorf("config: no event types defined")
	}

	for eventType, etc := range c.EventTypes {
		for i := range etc.Sources {
			src := &etc.Sources[i]
			if src.Name == "" {
				return fmt.Errorf("config: event type %q source %d: name is required", eventType, i)
			}
			if src.BaseURL == "" {
				return fmt.Errorf("config: source %q: base_url is required", src.Name)
			}
			if src.MaxPages <= 0 {
				src.MaxPages = 1
			}
			if src.Reliability == 0 {
				src.Reliability = 0.5
			}
			if src.Reliability < 0 || src.Reliability > 1 {
				return fmt.Errorf("config: source %q: reliability %.2f outside [0,1]", src.Name, src.Reliability)
			}
			if src.UseAPI && src.APIURL == "" {
				return fmt.Errorf("config: source %q: use_api set but api_url missing", src.Name)
			}
		}
		c.EventTypes[eventType] = etc
	}

	for domain, score := range c.TrustedDomains {
		if score < 0 || score > 1 {
			return fmt.Errorf("config: trusted domain %q: score %.2f outside [0,1]", domain, score)
		}
	}

	return nil
}

// EventType returns the configuration for one event type.
func (c *Config) EventType(name string) (EventTypeConfig, error) {
	etc, ok := c.EventTypes[name]
	if !ok {
		return EventTypeConfig{}, fmt.Errorf("config: unknown event type %q", name)
	}
	return etc, nil
}
