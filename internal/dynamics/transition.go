// Package dynamics contains the core keyboard-dynamics data model and
// the window metrics computation.
//
// IMPORTANT: This package works on key transition *timing*, not text.
// A KeyTransition records that some key went down or up at some instant;
// downstream consumers only ever see aggregated timing statistics
// (dwell time, flight time, error ratio), never reconstructed input.
package dynamics

import "time"

// Key identifies a keyboard key. Named keys use the constants below;
// ordinary character keys use their character ("a", "7", ";").
type Key string

// Named keys recognized by the filter and metrics sets.
const (
	KeyShiftLeft  Key = "shift"
	KeyShiftRight Key = "shift_r"
	KeyAltLeft    Key = "alt"
	KeyAltRight   Key = "alt_r"
	KeyCtrlLeft   Key = "ctrl"
	KeyCtrlRight  Key = "ctrl_r"

	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyUp        Key = "up"
	KeyDown      Key = "down"

	KeyEscape Key = "esc"
	KeySpace  Key = "space"
	KeyEnter  Key = "enter"
	KeyTab    Key = "tab"
)

// ignoredKeys are modifier keys that never enter the event log.
var ignoredKeys = map[Key]struct{}{
	KeyShiftLeft:  {},
	KeyShiftRight: {},
	KeyAltLeft:    {},
	KeyAltRight:   {},
	KeyCtrlLeft:   {},
	KeyCtrlRight:  {},
}

// errorKeys are correction/cursor keys counted by the error ratio.
// They are recorded like any other transition.
var errorKeys = map[Key]struct{}{
	KeyBackspace: {},
	KeyDelete:    {},
	KeyLeft:      {},
	KeyRight:     {},
	KeyUp:        {},
	KeyDown:      {},
}

// IsModifier reports whether k is an ignored modifier key.
func IsModifier(k Key) bool {
	_, ok := ignoredKeys[k]
	return ok
}

// IsErrorKey reports whether k belongs to the correction-key set.
func IsErrorKey(k Key) bool {
	_, ok := errorKeys[k]
	return ok
}

// Kind distinguishes press from release transitions.
type Kind uint8

const (
	Press Kind = iota
	Release
)

// String returns "press" or "release".
func (k Kind) String() string {
	if k == Press {
		return "press"
	}
	return "release"
}

// KeyTransition is one accepted key event. Immutable once recorded.
// Transitions appended to an event log are non-decreasing in Time.
type KeyTransition struct {
	Key  Key
	Kind Kind
	Time time.Time
}

// WindowSample is one emitted feature row: the aggregated timing
// statistics for a single trailing window.
//
// Invariants: AvgDwell >= 0, AvgFlight >= 0 (either may be 0 when too
// few pairs exist in the window), ErrorRatio in [0, 1].
type WindowSample struct {
	Timestamp  time.Time
	AvgDwell   float64
	AvgFlight  float64
	ErrorRatio float64
}
