// internal/insights/classify/overlap.go
package classify

import (
	"sort"

	"adinsight-workers/internal/insights/extract"
)

// resolveOverlaps keeps the highest-confidence candidate for every
// contested region. Candidates are sorted by confidence descending with a
// stable sort, so equal-confidence candidates keep their emission order,
// then accepted greedily when their span touches no accepted span. Greedy
// acceptance is not globally optimal coverage; a high-confidence candidate
// locks out everything it intersects.
func resolveOverlaps(candidates []extract.CandidateMatch) []extract.CandidateMatch {
	ordered := make([]extract.CandidateMatch, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	kept := make([]extract.CandidateMatch, 0, len(ordered))
	for _, cand := range ordered {
		if !conflicts(kept, cand) {
			kept = append(kept, cand)
		}
	}
	return kept
}

func conflicts(kept []extract.CandidateMatch, cand extract.CandidateMatch) bool {
	for _, k := range kept {
		if spansTouch(k.Span, cand.Span) {
			return true
		}
	}
	return false
}

// spansTouch reports intersection inclusive of shared boundaries: a span
// ending exactly where another begins still counts as a conflict.
func spansTouch(a, b [2]int) bool {
	return a[0] <= b[1] && b[0] <= a[1]
}
