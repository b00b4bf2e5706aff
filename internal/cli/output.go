package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/discovery"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	DiscoveredAt time.Time              `json:"discovered_at"`
	EventType    string                 `json:"event_type"`
	Candidates   []*candidate.Candidate `json:"candidates"`
	Count        int                    `json:"count"`
	Stats        discovery.Stats        `json:"stats"`
	Filter       string                 `json:"filter,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Count == 0 {
		fmt.Fprintln(w, "No candidates found.")
		writeStats(w, result)
		return nil
	}

	fmt.Fprintf(w, "Top %s candidates:\n\n", result.EventType)
	for i, c := range result.Candidates {
		fmt.Fprintf(w, "%3d. [%.2f] %s\n", i+1, c.QualityScore, c.Name)
		fmt.Fprintf(w, "     %s\n", c.URL)
		if verbose {
			fmt.Fprintf(w, "     source: %s (%s)\n", c.Source, c.DiscoveryMethod)
			if c.Description != "" {
				fmt.Fprintf(w, "     %s\n", c.Description)
			}
			if c.Location != "" {
				fmt.Fprintf(w, "     location: %s\n", c.Location)
			}
			if c.SearchQuery != "" {
				fmt.Fprintf(w, "     query: %s\n", c.SearchQuery)
			}
		}
	}

	writeStats(w, result)
	return nil
}

// writeStats prints the run statistics footer
func writeStats(w io.Writer, result *OutputResult) {
	s := result.Stats
	fmt.Fprintf(w, "\nFound %d raw, %d unique, %d final", s.TotalFound, s.Unique, s.Final)
	if s.Expanded > 0 || s.ExpansionsFailed > 0 {
		fmt.Fprintf(w, " (aggregators expanded: %d, failed: %d)", s.Expanded, s.ExpansionsFailed)
	}
	fmt.Fprintln(w)

	if len(s.PerSource) > 0 {
		names := make([]string, 0, len(s.PerSource))
		for name := range s.PerSource {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, s.PerSource[name])
		}
	}
}
