// Package capture runs the live keyboard capture pipeline: an event
// source feeds raw key transitions through the filter into a
// synchronized event log, while a periodic extractor turns the log
// into window feature samples.
//
// IMPORTANT: the pipeline records key transition timing for feature
// extraction only. Nothing leaves this package except aggregated
// window statistics; raw transitions are discarded with the session.
//
// Platform support:
//   - Linux: reads /dev/input/event* (requires input group or root)
//   - other platforms: no built-in source; callers supply their own
//     EventSource implementation
package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"keydyn/internal/dynamics"
)

// RawEvent is one key transition notification from an event source,
// before filtering. Key may be empty if the backend could not identify
// the key; the filter rejects such events.
type RawEvent struct {
	Key  dynamics.Key
	Kind dynamics.Kind
	Time time.Time
}

// EventSource produces raw key transition notifications. It is the
// boundary to the platform input hook: implementations live behind
// this interface so the pipeline stays free of platform contracts.
type EventSource interface {
	// Start begins delivery and returns the event channel. The
	// channel is closed when the source stops or ctx is cancelled.
	Start(ctx context.Context) (<-chan RawEvent, error)

	// Stop ends delivery and releases platform resources.
	Stop() error

	// Available reports whether this source can deliver events with
	// current permissions, with a human-readable explanation.
	Available() (bool, string)
}

// ErrNotAvailable is returned when no keyboard source is usable.
var ErrNotAvailable = errors.New("keyboard capture not available on this platform")

// ErrPermissionDenied is returned when permissions are insufficient.
var ErrPermissionDenied = errors.New("insufficient permissions for keyboard capture")

// ErrAlreadyRunning is returned when Start is called while running.
var ErrAlreadyRunning = errors.New("event source already running")

// ErrUnknownKey marks a notification whose key could not be
// identified. Such events are skipped and logged, never fatal.
var ErrUnknownKey = errors.New("unrecognized key in event")

// NewPlatformSource returns the EventSource for the current platform.
func NewPlatformSource() EventSource {
	return newPlatformSource()
}

// SimulatedSource is an EventSource for testing that delivers
// scripted events instead of hooking a real keyboard.
type SimulatedSource struct {
	mu      sync.Mutex
	ch      chan RawEvent
	running bool
}

// NewSimulatedSource creates a source for testing.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{}
}

// Start begins the simulated source.
func (s *SimulatedSource) Start(ctx context.Context) (<-chan RawEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrAlreadyRunning
	}
	s.ch = make(chan RawEvent, 256)
	s.running = true
	return s.ch, nil
}

// Stop closes the event channel.
func (s *SimulatedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.ch)
	return nil
}

// Available returns true (simulated is always available).
func (s *SimulatedSource) Available() (bool, string) {
	return true, "simulated source (for testing)"
}

// Emit delivers one event timestamped now.
func (s *SimulatedSource) Emit(key dynamics.Key, kind dynamics.Kind) {
	s.EmitAt(key, kind, time.Now())
}

// EmitAt delivers one event with an explicit timestamp.
func (s *SimulatedSource) EmitAt(key dynamics.Key, kind dynamics.Kind, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.ch <- RawEvent{Key: key, Kind: kind, Time: at}
}

// Tap emits a press/release pair for key, dwell apart.
func (s *SimulatedSource) Tap(key dynamics.Key, at time.Time, dwell time.Duration) {
	s.EmitAt(key, dynamics.Press, at)
	s.EmitAt(key, dynamics.Release, at.Add(dwell))
}
