package dynamics

import "time"

// Pairing selects how dwell times are attributed to presses.
type Pairing int

const (
	// PairSequential pairs each transition against the most recent
	// press regardless of key identity. This is the reference
	// behavior: with overlapping presses (key rollover) a release may
	// be paired against a press belonging to a different key. It must
	// stay the default so live and synthetic datasets remain
	// comparable across implementations.
	PairSequential Pairing = iota

	// PairPerKey pairs each release against the pending press of the
	// same key identity, preventing rollover misattribution of dwell
	// times. Flight time is press-to-press and stays sequential.
	// Opt-in alternative; produces different output than the
	// reference on fast typing.
	PairPerKey
)

// String returns the configuration name of the pairing mode.
func (p Pairing) String() string {
	if p == PairPerKey {
		return "per_key"
	}
	return "sequential"
}

// Metrics is the reduced feature tuple for one window slice.
type Metrics struct {
	AvgDwell   float64
	AvgFlight  float64
	ErrorRatio float64
}

// Compute reduces an ordered transition slice to its window metrics
// using sequential pairing. It reports ok=false for an empty slice;
// callers must not emit a sample in that case.
func Compute(transitions []KeyTransition) (Metrics, bool) {
	return ComputeWith(transitions, PairSequential)
}

// ComputeWith is Compute with an explicit pairing mode.
//
// The walk keeps a single pending-press timestamp. On a press, the gap
// since the previous press is one flight sample and the pending press
// moves forward. On a release, the gap since the pending press is one
// dwell sample; the pending press is left in place so a following
// release still pairs against it, exactly as the reference does.
func ComputeWith(transitions []KeyTransition, pairing Pairing) (Metrics, bool) {
	if len(transitions) == 0 {
		return Metrics{}, false
	}

	var (
		dwellSum    float64
		dwellCount  int
		flightSum   float64
		flightCount int
		errorCount  int

		lastPress    time.Time
		havePress    bool
		pendingByKey map[Key]time.Time
	)
	if pairing == PairPerKey {
		pendingByKey = make(map[Key]time.Time)
	}

	for _, t := range transitions {
		if IsErrorKey(t.Key) {
			errorCount++
		}
		switch t.Kind {
		case Press:
			if havePress {
				flightSum += t.Time.Sub(lastPress).Seconds()
				flightCount++
			}
			lastPress = t.Time
			havePress = true
			if pairing == PairPerKey {
				pendingByKey[t.Key] = t.Time
			}
		case Release:
			switch pairing {
			case PairPerKey:
				if pressed, ok := pendingByKey[t.Key]; ok {
					dwellSum += t.Time.Sub(pressed).Seconds()
					dwellCount++
					delete(pendingByKey, t.Key)
				}
			default:
				if havePress {
					dwellSum += t.Time.Sub(lastPress).Seconds()
					dwellCount++
				}
			}
		}
	}

	m := Metrics{ErrorRatio: float64(errorCount) / float64(len(transitions))}
	if dwellCount > 0 {
		m.AvgDwell = dwellSum / float64(dwellCount)
	}
	if flightCount > 0 {
		m.AvgFlight = flightSum / float64(flightCount)
	}
	return m, true
}
