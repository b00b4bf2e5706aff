package candidate

import "sort"

// Dedupe removes candidates whose normalized URLs collide, keeping the
// first occurrence. Input order is otherwise preserved, which matters
// because budget truncation takes a prefix downstream.
func Dedupe(candidates []*Candidate) []*Candidate {
	seen := make(map[string]bool, len(candidates))
	unique := make([]*Candidate, 0, len(candidates))

	for _, c := range candidates {
		key := NormalizeURL(c.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}

	return unique
}

// Rank sorts candidates descending by quality score. The sort is stable
// so equal-scored candidates keep their discovery order.
func Rank(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QualityScore > candidates[j].QualityScore
	})
}

// Truncate returns at most max candidates, taking the ranked prefix.
// A negative max is treated as zero.
func Truncate(candidates []*Candidate, max int) []*Candidate {
	if max < 0 {
		max = 0
	}
	if len(candidates) <= max {
		return candidates
	}
	return candidates[:max]
}
