package index

import "github.com/poiesic/taskrag/core"

// Range is an inclusive difficulty interval.
type Range struct {
	Min int
	Max int
}

// Contains reports whether d lies within the range.
func (r Range) Contains(d int) bool {
	return d >= r.Min && d <= r.Max
}

// Filter is a conjunction of metadata predicates. The zero Filter matches
// everything.
type Filter struct {
	// Topic requires an exact topic match when non-empty.
	Topic string
	// Difficulty restricts the difficulty when non-nil.
	Difficulty *Range
}

// NewFilter builds a filter from optional inputs. An empty topic adds no
// topic predicate. A nil range, or one with Min > Max, adds no difficulty
// predicate; otherwise the bounds are clamped to the difficulty scale.
func NewFilter(topic string, difficulty *Range) Filter {
	f := Filter{Topic: topic}
	if difficulty != nil && difficulty.Min <= difficulty.Max {
		f.Difficulty = &Range{
			Min: core.ClampDifficulty(difficulty.Min),
			Max: core.ClampDifficulty(difficulty.Max),
		}
	}
	return f
}

// Matches reports whether a record with the given metadata passes.
func (f Filter) Matches(topic string, difficulty int) bool {
	if f.Topic != "" && topic != f.Topic {
		return false
	}
	if f.Difficulty != nil && !f.Difficulty.Contains(difficulty) {
		return false
	}
	return true
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return f.Topic == "" && f.Difficulty == nil
}
