// Package sink persists emitted feature rows. The CSV sink implements
// the exact downstream column contract; the SQLite sink stores the
// same rows for local inspection. Both receive rows only after a
// session completed, so an I/O failure never loses in-memory samples.
package sink

import (
	"fmt"
	"strconv"
	"time"

	"keydyn/internal/dynamics"
)

// FeatureSink accepts window sample rows. It is the boundary to the
// downstream consumer: the pipeline knows nothing beyond it.
type FeatureSink interface {
	Write(sample dynamics.WindowSample) error
	Close() error
}

// WriteAll writes samples in order and closes the sink. The first
// write error is returned after the close attempt, so a partial
// artifact is always closed out.
func WriteAll(s FeatureSink, samples []dynamics.WindowSample) error {
	var firstErr error
	for _, sample := range samples {
		if err := s.Write(sample); err != nil {
			firstErr = err
			break
		}
	}
	if err := s.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LiveFileName names a live-capture artifact after its capture time.
func LiveFileName(t time.Time) string {
	return fmt.Sprintf("keyboard_dynamics_%s.csv", t.Format("20060102_150405"))
}

// SyntheticFileName names a generated artifact after its parameters.
func SyntheticFileName(speed, accuracy float64, words int) string {
	return fmt.Sprintf("keyboard_dynamics_simulated_wpm%s_acc%s_words%d.csv",
		strconv.FormatFloat(speed, 'g', -1, 64),
		strconv.FormatFloat(accuracy, 'g', -1, 64),
		words)
}

// Features strips the timestamp column, returning only the numeric
// feature triples in row order. Column selection for the classifier
// happens here at the boundary, not inside the pipeline.
func Features(samples []dynamics.WindowSample) [][3]float64 {
	out := make([][3]float64, len(samples))
	for i, s := range samples {
		out[i] = [3]float64{s.AvgDwell, s.AvgFlight, s.ErrorRatio}
	}
	return out
}
