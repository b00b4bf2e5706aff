// Package filter narrows a ranked candidate list after discovery.
//
// Filters are applied by the CLI on top of the orchestrator's output:
//   - Minimum quality score
//   - Producing source (exact match, case-insensitive)
//   - Keywords (case-insensitive substring match on name/description/URL)
//
// An empty filter matches every candidate.
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/event-scout/internal/candidate"
)

// Filter represents candidate filtering criteria.
type Filter struct {
	// Minimum quality score, exclusive lower bound disabled at 0
	MinScore float64 `json:"min_score,omitempty"`

	// Producing sources to keep (case-insensitive exact match)
	Sources []string `json:"sources,omitempty"`

	// Keywords matched against name, description and URL
	Keywords []string `json:"keywords,omitempty"`
}

// New creates an empty filter that matches all candidates.
func New() *Filter {
	return &Filter{
		Sources:  []string{},
		Keywords: []string{},
	}
}

// IsEmpty reports whether the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.MinScore == 0 &&
		len(f.Sources) == 0 &&
		len(f.Keywords) == 0
}

// Matches checks a candidate against all active criteria. An empty
// filter matches everything.
func (f *Filter) Matches(c *candidate.Candidate) bool {
	if f.IsEmpty() {
		return true
	}

	if f.MinScore > 0 && c.QualityScore < f.MinScore {
		return false
	}

	if len(f.Sources) > 0 {
		matched := false
		for _, s := range f.Sources {
			if strings.EqualFold(c.Source, s) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Keywords) > 0 {
		haystack := strings.ToLower(c.Name + " " + c.Description + " " + c.URL)
		matched := false
		for _, kw := range f.Keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns only the candidates matching all criteria, preserving
// order. An empty filter returns the input unchanged.
func (f *Filter) Apply(candidates []*candidate.Candidate) []*candidate.Candidate {
	if f.IsEmpty() {
		return candidates
	}

	var filtered []*candidate.Candidate
	for _, c := range candidates {
		if f.Matches(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.MinScore > 0 {
		parts = append(parts, fmt.Sprintf("Min score: %.2f", f.MinScore))
	}
	if len(f.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("Sources: %s", strings.Join(f.Sources, ", ")))
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}
	return strings.Join(parts, " | ")
}
