package timetravel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCube(t *testing.T, name string, batteryLife int) *TimeCube {
	t.Helper()
	c, err := NewTimeCube(name, batteryLife)
	require.NoError(t, err)
	return c
}

func TestNewTimeCubeRejectsEmptyBattery(t *testing.T) {
	_, err := NewTimeCube("cube", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewTimeCubeStartsOff(t *testing.T) {
	c := newCube(t, "cube", 5)
	assert.True(t, c.IsOff())
	assert.Equal(t, StateOff, c.State())
	assert.Equal(t, -1, c.Index)
	assert.Empty(t, c.Intervals())
	assert.Equal(t, 5, c.BatteryLeft(0))
}

func TestStartRecordingRejectsOverlap(t *testing.T) {
	c := newCube(t, "cube", 5)
	require.NoError(t, c.startRecording(10))
	c.recompute(10)
	assert.True(t, c.IsRecording())

	assert.ErrorIs(t, c.startRecording(12), ErrIntervalOverlap, "open interval covers every later tick")

	c.closeOpen(15)
	assert.ErrorIs(t, c.startRecording(13), ErrIntervalOverlap)
	assert.ErrorIs(t, c.startRecording(8), ErrIntervalOverlap, "interval starting later")

	require.NoError(t, c.startRecording(20))
	ivs := c.Intervals()
	require.Len(t, ivs, 2)
	assert.True(t, ivs[0].Sealed)
	assert.False(t, ivs[1].Sealed)
	assert.True(t, ivs[1].IsOpen())
}

func TestCloseOpenNeverEndsBeforeStart(t *testing.T) {
	c := newCube(t, "cube", 5)
	require.NoError(t, c.startRecording(10))
	assert.True(t, c.closeOpen(10))
	assert.Equal(t, TimeInterval{Start: 10, End: 10}, c.Intervals()[0])
	assert.False(t, c.closeOpen(11))
}

func TestBatteryExpiry(t *testing.T) {
	c := newCube(t, "cube", 5)
	require.NoError(t, c.startRecording(10))

	assert.False(t, c.batteryExpired(14))
	assert.True(t, c.batteryExpired(15))

	c.recompute(12)
	assert.Equal(t, 2, c.BatteryLeft(12))
}

func TestRecomputeLevelState(t *testing.T) {
	tests := []struct {
		name        string
		batteryLife int
		at          int
		want        CubeState
	}{
		{"inside full-battery interval", 5, 12, StateRecording},
		{"inside short interval", 6, 12, StateReplaying},
		{"before interval", 5, 9, StateOff},
		{"after interval", 5, 15, StateOff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCube(t, "cube", tt.batteryLife)
			c.intervals = []TimeInterval{{Start: 10, End: 14, Sealed: true}}
			c.recompute(tt.at)
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestRewindTargetsUnsealedInterval(t *testing.T) {
	c := newCube(t, "cube", 5)
	assert.False(t, c.canRewind())

	c.intervals = []TimeInterval{{Start: 10, End: 14}}
	c.recompute(16)
	assert.True(t, c.canRewind(), "expired interval waits for its rewind")

	c.intervals[0].Sealed = true
	assert.False(t, c.canRewind())
}

func TestStartRewindingClosesOpenInterval(t *testing.T) {
	c := newCube(t, "cube", 10)
	require.NoError(t, c.startRecording(10))
	c.recompute(13)

	require.NoError(t, c.startRewinding(13))
	iv, ok := c.RewindInterval()
	require.True(t, ok)
	assert.Equal(t, 13, iv.End)
	assert.Equal(t, 3.0, c.RewindPosition())
	assert.Equal(t, StateRewinding, c.State())
	assert.False(t, c.IsOff())
}

func TestScrubClampsToInterval(t *testing.T) {
	c := newCube(t, "cube", 5)
	c.intervals = []TimeInterval{{Start: 10, End: 14}}
	require.NoError(t, c.startRewinding(16))
	assert.Equal(t, 4.0, c.RewindPosition())

	c.scrub(3)
	assert.Equal(t, 4.0, c.RewindPosition())

	c.scrub(-2.5)
	assert.Equal(t, 1.5, c.RewindPosition())

	c.scrub(-100)
	assert.Equal(t, 0.0, c.RewindPosition())
}

func TestDisplayTimeRoundsHalfToEven(t *testing.T) {
	c := newCube(t, "cube", 10)
	c.intervals = []TimeInterval{{Start: 10, End: 19}}
	require.NoError(t, c.startRewinding(20))

	for pos, want := range map[float64]int{2.5: 12, 3.5: 14, 2.4: 12, 2.6: 13} {
		c.rewindPosition = pos
		assert.Equal(t, want, c.displayTime(), "position %v", pos)
	}
}

func TestStopRewindingSeals(t *testing.T) {
	c := newCube(t, "cube", 10)
	c.intervals = []TimeInterval{{Start: 10, End: 13}}
	require.NoError(t, c.startRewinding(20))

	c.stopRewinding()
	assert.True(t, c.Intervals()[0].Sealed)
	assert.False(t, c.IsRewinding())

	c.recompute(11)
	assert.Equal(t, StateReplaying, c.State())
}

func TestReplayingCubeCannotRewind(t *testing.T) {
	c := newCube(t, "cube", 10)
	c.intervals = []TimeInterval{{Start: 10, End: 13}}
	require.NoError(t, c.startRewinding(20))
	c.stopRewinding()

	c.recompute(11)
	require.Equal(t, StateReplaying, c.State())
	assert.False(t, c.canRewind())

	// A full-battery interval replays as recording and can still be rewound.
	full := newCube(t, "full", 4)
	full.intervals = []TimeInterval{{Start: 10, End: 13, Sealed: true}}
	full.recompute(11)
	require.Equal(t, StateRecording, full.State())
	assert.True(t, full.canRewind())
}

func TestCubeString(t *testing.T) {
	c := newCube(t, "red", 5)
	require.NoError(t, c.startRecording(3))
	c.recompute(4)
	assert.Equal(t, "[red: t1 = 3, t2 = -1, IC = 1, state = recording, Ps = 0.00]", c.String())
}
