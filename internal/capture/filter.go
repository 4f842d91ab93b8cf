package capture

import (
	"fmt"

	"keydyn/internal/dynamics"
)

// Verdict is the filter's decision for one raw event.
type Verdict int

const (
	// VerdictDrop discards the event entirely (modifier keys).
	VerdictDrop Verdict = iota

	// VerdictRecord appends the event to the log. Correction keys
	// take this path too; they are distinguished later by the
	// metrics error-ratio count, not here.
	VerdictRecord

	// VerdictRecordStop appends the event and ends the session
	// (Escape release). No event is accepted afterwards.
	VerdictRecordStop
)

// Filter classifies one raw event. Shift, Alt and Ctrl (either side)
// are dropped before they reach the log. The Escape release is
// recorded for press/release symmetry and additionally stops the
// session; the termination key is fixed and not configurable.
//
// A notification without a key identity is an error: the caller skips
// and logs it, the session continues.
func Filter(ev RawEvent) (Verdict, error) {
	if ev.Key == "" {
		return VerdictDrop, fmt.Errorf("%w: %s at %s", ErrUnknownKey, ev.Kind, ev.Time.Format("15:04:05.000"))
	}
	if dynamics.IsModifier(ev.Key) {
		return VerdictDrop, nil
	}
	if ev.Key == dynamics.KeyEscape && ev.Kind == dynamics.Release {
		return VerdictRecordStop, nil
	}
	return VerdictRecord, nil
}
