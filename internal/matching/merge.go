// internal/matching/merge.go
package matching

// MergeResults combines per-dog result lists for one owner into a single
// ranking with one entry per walker, keeping each walker's best result.
func MergeResults(lists ...[]MatchResult) []MatchResult {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	merged := make([]MatchResult, 0, n)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	merged = dedupe(merged)
	rank(merged)
	return merged
}
