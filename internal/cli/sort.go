package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/event-scout/internal/candidate"
)

// SortOrder represents the available output sorting options
type SortOrder string

const (
	SortByScore SortOrder = "score"
	SortByName  SortOrder = "name"
	SortByURL   SortOrder = "url"
)

// sortCandidates sorts candidates for output. Score order is the
// orchestrator's ranking and is left untouched; name and URL orders are
// stable resorts for human scanning.
func sortCandidates(candidates []*candidate.Candidate, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(candidates, func(i, j int) bool {
			return strings.ToLower(candidates[i].Name) < strings.ToLower(candidates[j].Name)
		})
	case SortByURL:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].URL < candidates[j].URL
		})
	}
}
