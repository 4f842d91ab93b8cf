package dynamics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelectWindow(t *testing.T) {
	transitions := []KeyTransition{
		{Key: "a", Kind: Press, Time: at(0)},
		{Key: "a", Kind: Release, Time: at(1000)},
		{Key: "b", Kind: Press, Time: at(2000)},
		{Key: "b", Kind: Release, Time: at(3000)},
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"all", at(0), at(3000), 4},
		{"inner", at(500), at(2500), 2},
		{"boundaries inclusive", at(1000), at(2000), 2},
		{"before", at(-2000), at(-1000), 0},
		{"after", at(4000), at(5000), 0},
		{"empty input", at(0), at(3000), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := transitions
			if tt.name == "empty input" {
				input = nil
			}
			got := SelectWindow(input, tt.start, tt.end)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSelectWindowContiguousSuffix(t *testing.T) {
	transitions := []KeyTransition{
		{Key: "a", Kind: Press, Time: at(0)},
		{Key: "b", Kind: Press, Time: at(5000)},
		{Key: "c", Kind: Press, Time: at(6000)},
	}
	got := SelectWindow(transitions, at(4500), at(6500))
	assert.Len(t, got, 2)
	assert.Equal(t, Key("b"), got[0].Key)
	assert.Equal(t, Key("c"), got[1].Key)
}

func TestKeyClassification(t *testing.T) {
	assert.True(t, IsModifier(KeyShiftLeft))
	assert.True(t, IsModifier(KeyCtrlRight))
	assert.False(t, IsModifier(KeyBackspace))
	assert.False(t, IsModifier("a"))

	assert.True(t, IsErrorKey(KeyBackspace))
	assert.True(t, IsErrorKey(KeyDelete))
	assert.True(t, IsErrorKey(KeyLeft))
	assert.True(t, IsErrorKey(KeyUp))
	assert.False(t, IsErrorKey(KeyEscape))
	assert.False(t, IsErrorKey("a"))
}
