package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/discovery"
	"github.com/pfrederiksen/event-scout/internal/filter"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagEventType  string
	flagConfigPath string
	flagMaxResults int
	flagFormat     string
	flagSort       string
	flagDataDir    string
	flagMinScore   float64
	flagSources    []string
	flagKeywords   []string
	flagSave       bool
	flagVerbose    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-scout",
		Short: "Discover and rank candidate event pages",
		Long: `Discovers candidate event pages (conferences, hackathons) from the
configured sources, expands aggregator pages into individual events, and
prints a deduplicated, ranked, budget-limited candidate list.`,
		RunE: runDiscover,
	}

	cmd.Flags().StringVar(&flagEventType, "event-type", "", "Event type to discover: conference or hackathon (required)")
	cmd.Flags().StringVar(&flagConfigPath, "config", "config.yaml", "Path to the YAML configuration file")
	cmd.Flags().IntVar(&flagMaxResults, "max-results", 50, "Target result budget")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "score", "Secondary output sort: score, name or url")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "~/.local/share/event-scout", "Data directory for snapshots")
	cmd.Flags().Float64Var(&flagMinScore, "min-score", 0, "Drop candidates scoring below this")
	cmd.Flags().StringSliceVar(&flagSources, "source", nil, "Keep only candidates from these sources")
	cmd.Flags().StringSliceVar(&flagKeywords, "keyword", nil, "Keep only candidates matching these keywords")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Upsert results into the snapshot store")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.MarkFlagRequired("event-type")

	return cmd
}

// runDiscover is the main command logic
func runDiscover(cmd *cobra.Command, args []string) error {
	eventType := strings.ToLower(strings.TrimSpace(flagEventType))
	if eventType == "" {
		return fmt.Errorf("--event-type is required")
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)
	logger.SetDefault(log)

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	orch, err := discovery.New(discovery.Options{
		Config: cfg,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("initializing discovery: %w", err)
	}

	result, err := orch.Discover(cmd.Context(), eventType, flagMaxResults)
	if err != nil {
		return fmt.Errorf("running discovery: %w", err)
	}

	f := filter.New()
	f.MinScore = flagMinScore
	f.Sources = flagSources
	f.Keywords = flagKeywords
	candidates := f.Apply(result.Candidates)

	sortCandidates(candidates, SortOrder(flagSort))

	if flagSave {
		st, err := store.New(flagDataDir)
		if err != nil {
			return fmt.Errorf("initializing store: %w", err)
		}
		if err := st.Upsert(eventType, candidates); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
	}

	output := &OutputResult{
		DiscoveredAt: time.Now().UTC(),
		EventType:    eventType,
		Candidates:   candidates,
		Count:        len(candidates),
		Stats:        result.Stats,
		Filter:       f.String(),
	}

	return WriteOutput(os.Stdout, output, format, flagVerbose)
}

// Execute runs the root command and returns an exit code
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
