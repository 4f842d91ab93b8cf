// Package synth generates deterministic synthetic typing-dynamics
// datasets. It simulates a typist with a target speed and accuracy and
// runs the per-interval tuples through the same sliding-window
// averaging as the live pipeline, so synthetic corpora are directly
// comparable with captured ones.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"keydyn/internal/dynamics"
)

// Reference timing for a 60 words-per-minute typist. Per-interval
// means scale inversely with the requested speed against this
// baseline.
const (
	baseDwellTime  = 0.060 // seconds
	baseFlightTime = 0.107 // seconds

	dwellStdDev  = 0.005
	flightStdDev = 0.05
)

// DefaultSeed makes runs reproducible unless a seed is chosen.
const DefaultSeed = 42

// ErrInvalidParameter marks an out-of-domain generator parameter.
// All validation failures wrap it.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params describes the simulated typist and windowing.
type Params struct {
	// Speed is the typing speed in words per minute.
	Speed float64

	// Accuracy in [0, 1): the fraction of correct words. 1.0 would
	// mean zero error intervals and an undefined stride, so it is
	// rejected.
	Accuracy float64

	// Words is the length of the simulated text in words.
	Words int

	// Width and Hop are the window parameters in one-second
	// intervals, matching the live capture defaults.
	Width int
	Hop   int

	// Seed for the random draws. Zero means DefaultSeed.
	Seed int64

	// StartTime anchors the row timestamps. Zero means time.Now().
	StartTime time.Time
}

// Validate checks the parameter domain before any work is done.
func (p Params) Validate() error {
	if p.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidParameter, p.Speed)
	}
	if p.Accuracy < 0 {
		return fmt.Errorf("%w: accuracy must be >= 0, got %g", ErrInvalidParameter, p.Accuracy)
	}
	if p.Accuracy >= 1.0 {
		return fmt.Errorf("%w: accuracy must be < 1.0, got %g", ErrInvalidParameter, p.Accuracy)
	}
	if p.Words <= 0 {
		return fmt.Errorf("%w: words must be positive, got %d", ErrInvalidParameter, p.Words)
	}
	if p.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidParameter, p.Width)
	}
	if p.Hop <= 0 {
		return fmt.Errorf("%w: hop must be positive, got %d", ErrInvalidParameter, p.Hop)
	}
	return nil
}

// Duration returns the simulated typing duration in whole seconds,
// which is also the number of one-second intervals generated.
func (p Params) Duration() int {
	return int(math.Floor(float64(p.Words) / p.Speed * 60))
}

// interval is one second of simulated typing.
type interval struct {
	dwell  float64
	flight float64
	err    float64
}

// Generate produces the windowed feature rows for the simulated
// typist. Identical parameters and seed produce identical rows.
func Generate(p Params) ([]dynamics.WindowSample, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	start := p.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	total := p.Duration()
	intervals := generateIntervals(p, total, rand.New(rand.NewSource(seed)))

	// Slide the window over the interval sequence, stepping by hop
	// and stopping once fewer than width intervals remain. This is
	// the same averaging the live extractor applies per tick.
	var samples []dynamics.WindowSample
	for i := 0; i+p.Width <= total; i += p.Hop {
		var dwellSum, flightSum, errSum float64
		for _, iv := range intervals[i : i+p.Width] {
			dwellSum += iv.dwell
			flightSum += iv.flight
			errSum += iv.err
		}
		n := float64(p.Width)
		samples = append(samples, dynamics.WindowSample{
			Timestamp:  start.Add(time.Duration(i) * time.Second),
			AvgDwell:   round5(dwellSum / n),
			AvgFlight:  round5(flightSum / n),
			ErrorRatio: round5(errSum / n),
		})
	}
	return samples, nil
}

// generateIntervals draws the per-second dwell/flight tuples and flags
// error intervals at a fixed stride derived from accuracy.
func generateIntervals(p Params, total int, rng *rand.Rand) []interval {
	scale := 60 / p.Speed
	dwellMean := baseDwellTime * scale
	flightMean := baseFlightTime * scale

	// One flagged interval roughly per mistyped word. The reference
	// computes stride = total / (words * (1 - accuracy)); a stride
	// below one would make every interval an error interval, so it
	// is clamped there.
	stride := int(float64(total) / (float64(p.Words) * (1 - p.Accuracy)))
	if stride < 1 {
		stride = 1
	}

	intervals := make([]interval, total)
	for i := range intervals {
		iv := interval{
			dwell:  round5(rng.NormFloat64()*dwellStdDev + dwellMean),
			flight: round5(rng.NormFloat64()*flightStdDev + flightMean),
		}
		if i%stride == 0 {
			iv.err = 1 - p.Accuracy
		}
		intervals[i] = iv
	}
	return intervals
}

// round5 rounds to five decimal places, the artifact precision.
func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
