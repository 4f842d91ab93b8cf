package dynamics

import (
	"sort"
	"time"
)

// SelectWindow returns the contiguous slice of transitions whose
// timestamps fall in [start, end]. The input must be ordered by time
// (the event log guarantees this); the result aliases the input and
// must be treated as read-only.
func SelectWindow(transitions []KeyTransition, start, end time.Time) []KeyTransition {
	lo := sort.Search(len(transitions), func(i int) bool {
		return !transitions[i].Time.Before(start)
	})
	hi := sort.Search(len(transitions), func(i int) bool {
		return transitions[i].Time.After(end)
	})
	if lo >= hi {
		return nil
	}
	return transitions[lo:hi]
}
