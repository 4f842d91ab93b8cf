package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydyn/internal/dynamics"
)

func sampleRows() []dynamics.WindowSample {
	base := time.Date(2024, 6, 8, 10, 0, 0, 0, time.Local)
	return []dynamics.WindowSample{
		{Timestamp: base, AvgDwell: 0.0612, AvgFlight: 0.10934, ErrorRatio: 0.06},
		{Timestamp: base.Add(time.Second), AvgDwell: 0.05987, AvgFlight: 0.11211, ErrorRatio: 0},
		{Timestamp: base.Add(2 * time.Second), AvgDwell: 0.06055, AvgFlight: 0.10288, ErrorRatio: 0.12},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.csv")
	rows := sampleRows()

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, WriteAll(s, rows))

	got, err := ReadSamples(path)
	require.NoError(t, err)
	require.Len(t, got, len(rows))

	for i := range rows {
		assert.True(t, got[i].Timestamp.Equal(rows[i].Timestamp), "row %d timestamp", i)
		assert.InDelta(t, rows[i].AvgDwell, got[i].AvgDwell, 1e-6, "row %d dwell", i)
		assert.InDelta(t, rows[i].AvgFlight, got[i].AvgFlight, 1e-6, "row %d flight", i)
		assert.InDelta(t, rows[i].ErrorRatio, got[i].ErrorRatio, 1e-6, "row %d error ratio", i)
	}
}

func TestCSVColumnContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.csv")
	s, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, WriteAll(s, sampleRows()[:1]))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"timestamp", "avg_dwell_time", "avg_flight_time", "error_ratio"}, records[0])
	assert.Len(t, records[1], 4)

	// Timestamp column is ISO-8601 local time.
	_, err = time.ParseInLocation(TimeLayout, records[1][0], time.Local)
	assert.NoError(t, err)
}

func TestCSVEmptyArtifactNeverWritten(t *testing.T) {
	// Zero samples: WriteAll writes no rows but still closes cleanly.
	path := filepath.Join(t.TempDir(), "artifact.csv")
	s, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, WriteAll(s, nil))

	got, err := ReadSamples(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileNames(t *testing.T) {
	at := time.Date(2024, 6, 8, 9, 30, 15, 0, time.Local)
	assert.Equal(t, "keyboard_dynamics_20240608_093015.csv", LiveFileName(at))
	assert.Equal(t, "keyboard_dynamics_simulated_wpm60_acc0.7_words150.csv",
		SyntheticFileName(60, 0.7, 150))
	assert.Equal(t, "keyboard_dynamics_simulated_wpm42.5_acc0.95_words200.csv",
		SyntheticFileName(42.5, 0.95, 200))
}

func TestFeaturesStripTimestamp(t *testing.T) {
	rows := sampleRows()
	feats := Features(rows)
	require.Len(t, feats, len(rows))
	for i := range rows {
		assert.Equal(t, [3]float64{rows[i].AvgDwell, rows[i].AvgFlight, rows[i].ErrorRatio}, feats[i])
	}
}

func TestReadSamplesMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "timestamp,avg_dwell_time,avg_flight_time,error_ratio\n2024-06-08T10:00:00.000000,not-a-number,0.1,0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadSamples(path)
	assert.Error(t, err)
}
