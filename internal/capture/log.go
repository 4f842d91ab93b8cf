package capture

import (
	"sync"
	"time"

	"keydyn/internal/dynamics"
)

// EventLog is the append-only, time-ordered record of accepted
// transitions. The capture goroutine writes, the extraction loop
// reads; all access goes through the mutex and readers only ever see
// snapshot copies, never the live slice.
//
// Retention is bounded: transitions older than the lookback relative
// to the newest entry are pruned on append, so memory stays
// proportional to typing rate times lookback rather than session
// length. The lookback must cover window width plus the pause
// threshold; a zero lookback disables pruning.
type EventLog struct {
	mu           sync.Mutex
	transitions  []dynamics.KeyTransition
	lastActivity time.Time
	lookback     time.Duration
}

// NewEventLog creates an event log with the given retention lookback.
func NewEventLog(lookback time.Duration) *EventLog {
	return &EventLog{lookback: lookback}
}

// Append records one transition and updates last activity. Timestamps
// are non-decreasing given the single capture producer.
func (l *EventLog) Append(t dynamics.KeyTransition) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transitions = append(l.transitions, t)
	l.lastActivity = t.Time

	if l.lookback <= 0 {
		return
	}
	cutoff := t.Time.Add(-l.lookback)
	cut := 0
	for cut < len(l.transitions) && l.transitions[cut].Time.Before(cutoff) {
		cut++
	}
	if cut > 0 {
		remaining := len(l.transitions) - cut
		copy(l.transitions, l.transitions[cut:])
		l.transitions = l.transitions[:remaining]
	}
}

// Snapshot returns a copy of the transitions in [start, end].
func (l *EventLog) Snapshot(start, end time.Time) []dynamics.KeyTransition {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := dynamics.SelectWindow(l.transitions, start, end)
	if len(window) == 0 {
		return nil
	}
	out := make([]dynamics.KeyTransition, len(window))
	copy(out, window)
	return out
}

// LastActivity returns the timestamp of the most recent accepted
// transition, or the zero time if none was recorded yet.
func (l *EventLog) LastActivity() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastActivity
}

// Len returns the number of retained transitions.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transitions)
}
