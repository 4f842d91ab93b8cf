package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydyn/internal/dynamics"
)

func TestFilterVerdicts(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		key  dynamics.Key
		kind dynamics.Kind
		want Verdict
	}{
		{"shift press dropped", dynamics.KeyShiftLeft, dynamics.Press, VerdictDrop},
		{"shift release dropped", dynamics.KeyShiftRight, dynamics.Release, VerdictDrop},
		{"alt dropped", dynamics.KeyAltLeft, dynamics.Press, VerdictDrop},
		{"ctrl dropped", dynamics.KeyCtrlRight, dynamics.Release, VerdictDrop},
		{"ordinary press recorded", "a", dynamics.Press, VerdictRecord},
		{"ordinary release recorded", "a", dynamics.Release, VerdictRecord},
		{"backspace recorded", dynamics.KeyBackspace, dynamics.Press, VerdictRecord},
		{"arrow recorded", dynamics.KeyLeft, dynamics.Release, VerdictRecord},
		{"escape press recorded", dynamics.KeyEscape, dynamics.Press, VerdictRecord},
		{"escape release stops", dynamics.KeyEscape, dynamics.Release, VerdictRecordStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(RawEvent{Key: tt.key, Kind: tt.kind, Time: now})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterUnknownKey(t *testing.T) {
	_, err := Filter(RawEvent{Kind: dynamics.Press, Time: time.Now()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

// A Shift press followed by an 'a' press/release pair: the Shift
// transition never reaches the log, the pair yields one dwell sample.
func TestFilterShiftThenLetter(t *testing.T) {
	now := time.Now()
	log := NewEventLog(0)

	events := []RawEvent{
		{Key: dynamics.KeyShiftLeft, Kind: dynamics.Press, Time: now},
		{Key: "a", Kind: dynamics.Press, Time: now.Add(10 * time.Millisecond)},
		{Key: "a", Kind: dynamics.Release, Time: now.Add(90 * time.Millisecond)},
	}
	for _, ev := range events {
		verdict, err := Filter(ev)
		require.NoError(t, err)
		if verdict != VerdictDrop {
			log.Append(dynamics.KeyTransition{Key: ev.Key, Kind: ev.Kind, Time: ev.Time})
		}
	}

	require.Equal(t, 2, log.Len())
	slice := log.Snapshot(now, now.Add(time.Second))
	m, ok := dynamics.Compute(slice)
	require.True(t, ok)
	assert.InDelta(t, 0.080, m.AvgDwell, 1e-9)
	assert.Equal(t, 0.0, m.AvgFlight)
}
