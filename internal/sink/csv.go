package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"keydyn/internal/dynamics"
)

// TimeLayout is the ISO-8601 local-time layout used in the timestamp
// column, microsecond precision without a zone offset.
const TimeLayout = "2006-01-02T15:04:05.000000"

// header is the fixed column contract, in this exact order.
var header = []string{"timestamp", "avg_dwell_time", "avg_flight_time", "error_ratio"}

// CSVSink writes feature rows to a CSV artifact.
type CSVSink struct {
	f           *os.File
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVSink creates the artifact file and returns a sink for it.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	return &CSVSink{f: f, w: csv.NewWriter(f)}, nil
}

// Write appends one feature row, writing the header first if needed.
func (s *CSVSink) Write(sample dynamics.WindowSample) error {
	if !s.wroteHeader {
		if err := s.w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		s.wroteHeader = true
	}
	row := []string{
		sample.Timestamp.Format(TimeLayout),
		formatFloat(sample.AvgDwell),
		formatFloat(sample.AvgFlight),
		formatFloat(sample.ErrorRatio),
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

// Close flushes and closes the artifact.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return fmt.Errorf("flush artifact: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	return nil
}

// ReadSamples reads an artifact back into sample rows. Used by tests
// and by consumers that post-process artifacts.
func ReadSamples(path string) ([]dynamics.WindowSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Tolerate a missing header so hand-trimmed files still load.
	start := 0
	if records[0][0] == header[0] {
		start = 1
	}

	samples := make([]dynamics.WindowSample, 0, len(records)-start)
	for i, rec := range records[start:] {
		if len(rec) < 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+start+1, len(rec))
		}
		ts, err := time.ParseInLocation(TimeLayout, rec[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse timestamp: %w", i+start+1, err)
		}
		var vals [3]float64
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %s: %w", i+start+1, header[j+1], err)
			}
			vals[j] = v
		}
		samples = append(samples, dynamics.WindowSample{
			Timestamp:  ts,
			AvgDwell:   vals[0],
			AvgFlight:  vals[1],
			ErrorRatio: vals[2],
		})
	}
	return samples, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
