package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydyn/internal/dynamics"
)

func newTestSession(t *testing.T, cfg Config) (*Session, *SimulatedSource) {
	t.Helper()
	src := NewSimulatedSource()
	if cfg.Width == 0 {
		cfg = DefaultConfig()
	}
	s, err := NewSession(src, cfg)
	require.NoError(t, err)
	return s, src
}

func TestNewSessionValidatesParameters(t *testing.T) {
	src := NewSimulatedSource()

	_, err := NewSession(src, Config{Width: 0, Hop: time.Second})
	assert.Error(t, err, "zero width")

	_, err = NewSession(src, Config{Width: -time.Second, Hop: time.Second})
	assert.Error(t, err, "negative width")

	_, err = NewSession(src, Config{Width: 5 * time.Second, Hop: 0})
	assert.Error(t, err, "zero hop")

	_, err = NewSession(src, Config{Width: 5 * time.Second, Hop: time.Second})
	assert.NoError(t, err)
}

// Deterministic tick tests: drive the extractor directly against a
// hand-built log instead of sleeping through real hop intervals.

func TestTickEmptyWindowEmitsNothing(t *testing.T) {
	s, _ := newTestSession(t, Config{})

	s.tick(logAt(0))
	s.tick(logAt(1000))

	assert.Empty(t, s.samples, "no capture yet: no sample, no crash")
}

func TestTickEmitsWithRecentActivity(t *testing.T) {
	s, _ := newTestSession(t, Config{})

	s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Press, Time: logAt(0)})
	s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Release, Time: logAt(70)})

	s.tick(logAt(1000))
	require.Len(t, s.samples, 1)
	assert.InDelta(t, 0.070, s.samples[0].AvgDwell, 1e-9)
	assert.Equal(t, logAt(1000), s.samples[0].Timestamp)
}

func TestTickPauseSuppression(t *testing.T) {
	s, _ := newTestSession(t, Config{})

	s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Press, Time: logAt(0)})
	s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Release, Time: logAt(100)})

	// Within the pause threshold: emits.
	s.tick(logAt(2000))
	require.Len(t, s.samples, 1)

	// Gap beyond 3s since last transition: every later tick before
	// typing resumes must emit nothing, even while the window still
	// holds transitions.
	s.tick(logAt(3200))
	s.tick(logAt(4200))
	assert.Len(t, s.samples, 1, "pause must freeze output")

	// Typing resumes: emission resumes.
	s.log.Append(dynamics.KeyTransition{Key: "b", Kind: dynamics.Press, Time: logAt(5000)})
	s.tick(logAt(5100))
	assert.Len(t, s.samples, 2)
}

func TestTickSampleTimestampsStrictlyIncreasing(t *testing.T) {
	s, _ := newTestSession(t, Config{})

	for i := 0; i < 8; i++ {
		s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Press, Time: logAt(i * 500)})
		s.tick(logAt(i*500 + 100))
	}

	require.NotEmpty(t, s.samples)
	for i := 1; i < len(s.samples); i++ {
		assert.True(t, s.samples[i].Timestamp.After(s.samples[i-1].Timestamp),
			"sample %d not after sample %d", i, i-1)
	}
}

func TestTickWindowExcludesOldTransitions(t *testing.T) {
	s, _ := newTestSession(t, Config{Width: 5 * time.Second, Hop: time.Second})

	// Two error keys early, ordinary keys later. At t=7s the window
	// [2s, 7s] must only see the ordinary keys.
	s.log.Append(dynamics.KeyTransition{Key: dynamics.KeyBackspace, Kind: dynamics.Press, Time: logAt(0)})
	s.log.Append(dynamics.KeyTransition{Key: dynamics.KeyBackspace, Kind: dynamics.Release, Time: logAt(100)})
	s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Press, Time: logAt(5000)})
	s.log.Append(dynamics.KeyTransition{Key: "a", Kind: dynamics.Release, Time: logAt(5100)})

	s.tick(logAt(7000))
	require.Len(t, s.samples, 1)
	assert.Equal(t, 0.0, s.samples[0].ErrorRatio)
}

// Lifecycle test: a full run over the simulated source, terminated by
// the Escape release.

func TestSessionRunStopsOnEscape(t *testing.T) {
	src := NewSimulatedSource()
	s, err := NewSession(src, Config{
		Width: time.Second,
		Hop:   20 * time.Millisecond,
	})
	require.NoError(t, err)

	type result struct {
		samples []dynamics.WindowSample
		err     error
	}
	done := make(chan result, 1)
	go func() {
		samples, err := s.Run(context.Background())
		done <- result{samples, err}
	}()

	// Give the source time to start; the simulated source drops
	// events emitted before Start.
	time.Sleep(50 * time.Millisecond)

	// Type a few keys, then Escape.
	now := time.Now()
	src.Tap("h", now, 60*time.Millisecond)
	src.Tap("i", now.Add(150*time.Millisecond), 60*time.Millisecond)
	time.Sleep(100 * time.Millisecond) // let a few ticks observe the activity
	src.Emit(dynamics.KeyEscape, dynamics.Release)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.True(t, s.Stopped())
		assert.NotEmpty(t, res.samples)
		for i := 1; i < len(res.samples); i++ {
			assert.True(t, res.samples[i].Timestamp.After(res.samples[i-1].Timestamp))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after Escape release")
	}
}

func TestSessionRunCancelledWithoutEvents(t *testing.T) {
	src := NewSimulatedSource()
	s, err := NewSession(src, Config{
		Width: time.Second,
		Hop:   20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	samples, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, samples, "no typing: no samples, no artifact")
}

func TestSessionIgnoresEventsAfterStop(t *testing.T) {
	src := NewSimulatedSource()
	s, err := NewSession(src, Config{
		Width: time.Second,
		Hop:   20 * time.Millisecond,
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Run(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	src.Emit(dynamics.KeyEscape, dynamics.Release)

	// Events after the stop flag must not be accepted.
	src.Emit("x", dynamics.Press)
	src.Emit("x", dynamics.Release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}

	// Only the Escape release itself was recorded.
	assert.Equal(t, 1, s.log.Len())
}
