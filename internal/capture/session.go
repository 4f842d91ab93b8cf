package capture

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"keydyn/internal/dynamics"
	"keydyn/internal/logging"
)

// DefaultPauseThreshold is the typing gap beyond which sample emission
// is suppressed until typing resumes.
const DefaultPauseThreshold = 3 * time.Second

// Config configures a capture session.
type Config struct {
	// Width is the trailing window length.
	Width time.Duration

	// Hop is the interval between window evaluations.
	Hop time.Duration

	// PauseThreshold suppresses emission when no transition was
	// accepted within it. Zero means DefaultPauseThreshold.
	PauseThreshold time.Duration

	// Pairing selects the dwell pairing mode for window metrics.
	Pairing dynamics.Pairing

	// Logger receives session diagnostics. Nil means the default.
	Logger *logging.Logger
}

// DefaultConfig returns the reference parameters: 5s window, 1s hop.
func DefaultConfig() Config {
	return Config{
		Width:          5 * time.Second,
		Hop:            1 * time.Second,
		PauseThreshold: DefaultPauseThreshold,
	}
}

// Session owns one capture lifecycle: the event log, the stop flag and
// the ordered samples it emitted. The capture goroutine and the
// extraction loop share state only through the EventLog's mutex and
// the atomic stop flag.
type Session struct {
	cfg    Config
	source EventSource
	log    *EventLog
	stop   atomic.Bool
	logger *logging.Logger

	samples []dynamics.WindowSample
}

// NewSession creates a session over the given source. Width and hop
// must be positive.
func NewSession(source EventSource, cfg Config) (*Session, error) {
	if cfg.Width <= 0 {
		return nil, fmt.Errorf("window width must be positive, got %s", cfg.Width)
	}
	if cfg.Hop <= 0 {
		return nil, fmt.Errorf("hop must be positive, got %s", cfg.Hop)
	}
	if cfg.PauseThreshold <= 0 {
		cfg.PauseThreshold = DefaultPauseThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		cfg:    cfg,
		source: source,
		log:    NewEventLog(cfg.Width + cfg.PauseThreshold),
		logger: logger.WithComponent("capture"),
	}, nil
}

// Run captures until the Escape release (or ctx cancellation) and
// returns the ordered samples. A source that fails to attach is fatal;
// per-event failures are logged and skipped. Shutdown latency is
// bounded by one hop interval: the stop flag is observed once per
// tick, and the tick that observes it emits nothing.
func (s *Session) Run(ctx context.Context) ([]dynamics.WindowSample, error) {
	events, err := s.source.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("attach event source: %w", err)
	}

	captureDone := make(chan struct{})
	go s.captureLoop(events, captureDone)

	s.logger.Info("session started",
		"width", s.cfg.Width, "hop", s.cfg.Hop, "pairing", s.cfg.Pairing.String())

	ticker := time.NewTicker(s.cfg.Hop)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session cancelled")
			break loop
		case <-ticker.C:
			if s.stop.Load() {
				break loop
			}
			s.tick(time.Now())
		}
	}

	if err := s.source.Stop(); err != nil {
		s.logger.Warn("stopping event source", "error", err)
	}
	<-captureDone

	s.logger.Info("session finished", "samples", len(s.samples))
	return s.samples, nil
}

// tick evaluates one window. Emission requires a non-empty slice and
// recent activity; a typing pause freezes output rather than emitting
// degenerate zero-activity rows.
func (s *Session) tick(now time.Time) {
	slice := s.log.Snapshot(now.Add(-s.cfg.Width), now)
	if len(slice) == 0 {
		return
	}
	if last := s.log.LastActivity(); last.IsZero() || now.Sub(last) > s.cfg.PauseThreshold {
		return
	}

	m, ok := dynamics.ComputeWith(slice, s.cfg.Pairing)
	if !ok {
		return
	}
	s.samples = append(s.samples, dynamics.WindowSample{
		Timestamp:  now,
		AvgDwell:   m.AvgDwell,
		AvgFlight:  m.AvgFlight,
		ErrorRatio: m.ErrorRatio,
	})
	s.logger.Debug("window sample",
		"transitions", len(slice),
		"avg_dwell", m.AvgDwell,
		"avg_flight", m.AvgFlight,
		"error_ratio", m.ErrorRatio)
}

// captureLoop drains the source, filtering each event into the log.
// One malformed notification is skipped and logged; it never unwinds
// the session.
func (s *Session) captureLoop(events <-chan RawEvent, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		if s.stop.Load() {
			continue
		}
		verdict, err := Filter(ev)
		if err != nil {
			s.logger.Warn("skipping transition", "error", err)
			continue
		}
		if verdict == VerdictDrop {
			continue
		}
		at := ev.Time
		if at.IsZero() {
			at = time.Now()
		}
		s.log.Append(dynamics.KeyTransition{Key: ev.Key, Kind: ev.Kind, Time: at})
		if verdict == VerdictRecordStop {
			s.stop.Store(true)
		}
	}
}

// Stopped reports whether the termination key was observed.
func (s *Session) Stopped() bool {
	return s.stop.Load()
}
