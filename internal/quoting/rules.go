package quoting

import "sort"

// Ranged is a lookup row covering the quantities from From to To inclusive.
// A nil To leaves the range open-ended.
type Ranged interface {
	RangeFrom() int
	RangeTo() *int
	Active() bool
}

// Contains reports whether r covers x.
func Contains(r Ranged, x int) bool {
	if r.RangeFrom() > x {
		return false
	}
	to := r.RangeTo()
	return to == nil || *to >= x
}

// MatchRange returns the first active rule whose range contains x, in the order given.
// No match is not an error: callers fall back to a zero adjustment.
func MatchRange[T Ranged](rules []T, x int) (T, bool) {
	for _, r := range rules {
		if r.Active() && Contains(r, x) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// SortRanges orders rules by their lower bound, keeping the input order for ties.
func SortRanges[T Ranged](rules []T) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].RangeFrom() < rules[j].RangeFrom()
	})
}

// ValidRange reports whether from and to describe a usable range.
func ValidRange(from int, to *int) bool {
	if from < 0 {
		return false
	}
	return to == nil || *to >= from
}
