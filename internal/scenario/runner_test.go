package scenario

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/timecube/internal/simulation"
	"chosenoffset.com/timecube/internal/timetravel"
)

func runTestdata(t *testing.T, name string) *Trace {
	t.Helper()
	s, err := Load("testdata/" + name + ".yaml")
	require.NoError(t, err)

	r := NewRunner(simulation.DefaultConfig().TimeTravel, nil)
	trace, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, trace.Frames, s.Steps)
	return trace
}

// frame returns the frame recorded after step
func frame(trace *Trace, step int) Frame {
	return trace.Frames[step-1]
}

func TestRunBatteryScenario(t *testing.T) {
	trace := runTestdata(t, "battery")
	_, err := uuid.Parse(trace.RunID)
	assert.NoError(t, err)

	for _, f := range trace.Frames {
		assert.Empty(t, f.Errors, "step %d", f.Step)
	}

	f := frame(trace, 10)
	assert.Equal(t, 10, f.WorldTime)
	assert.Equal(t, "recording", f.Cubes[0].State)
	assert.Equal(t, 0, frame(trace, 14).Cubes[0].BatteryLeft)

	f = frame(trace, 15)
	assert.Equal(t, "off", f.Cubes[0].State)
	assert.Equal(t, []string{"[10, 14]"}, f.Cubes[0].Intervals)
	assert.Equal(t, float64(ParkHeight), f.Cubes[0].Ghost.Y)

	f = frame(trace, 16)
	assert.Equal(t, "rewinding", f.Cubes[0].State)
	assert.Equal(t, 4.0, f.Cubes[0].RewindPosition)
	assert.Equal(t, 14, f.WorldTime)
	assert.Equal(t, 15, f.FurthestTime)
	assert.True(t, f.InPast)
	assert.True(t, f.Frozen)
	assert.Equal(t, 7.0, f.Cubes[0].Ghost.X)
	assert.Equal(t, 0.5, f.Objects[0].Y)

	// Scrubbing back at 0.1 * 5 ticks per step, displayed with half-to-even.
	wantTimes := map[int]int{17: 14, 18: 13, 19: 12, 20: 12, 21: 12, 22: 11, 23: 10, 24: 10, 25: 10}
	for step, want := range wantTimes {
		assert.Equal(t, want, frame(trace, step).WorldTime, "step %d", step)
	}
	assert.Equal(t, 0.0, frame(trace, 25).Cubes[0].RewindPosition)
	assert.Equal(t, 5.0, frame(trace, 25).Cubes[0].Ghost.X)
	assert.Equal(t, 8.0, frame(trace, 25).Player.X, "player holds still while scrubbing")

	f = frame(trace, 26)
	assert.Equal(t, 10, f.WorldTime)
	assert.False(t, f.Frozen)
	assert.Equal(t, "recording", f.Cubes[0].State, "full-battery interval keeps its recording label")

	f = frame(trace, 31)
	assert.Equal(t, 15, f.WorldTime)
	assert.Empty(t, f.Cubes[0].Intervals)
	assert.Equal(t, "off", f.Cubes[0].State)

	assert.Equal(t, 16, frame(trace, 32).FurthestTime)
}

func TestRunReplayScenario(t *testing.T) {
	trace := runTestdata(t, "replay")

	f := frame(trace, 9)
	assert.Equal(t, "rewinding", f.Cubes[0].State)
	assert.Equal(t, []string{"[5, 8]"}, f.Cubes[0].Intervals)
	assert.Equal(t, 3.0, f.Cubes[0].RewindPosition)
	assert.Equal(t, 8, f.WorldTime)

	assert.Equal(t, 0.0, frame(trace, 19).Cubes[0].RewindPosition)
	assert.Equal(t, 5, frame(trace, 19).WorldTime)

	for step, tick := range map[int]int{20: 5, 21: 6, 22: 7, 23: 8} {
		f := frame(trace, step)
		assert.Equal(t, tick, f.WorldTime, "step %d", step)
		assert.Equal(t, "replaying", f.Cubes[0].State, "step %d", step)
		assert.Equal(t, float64(tick), f.Cubes[0].Ghost.X, "ghost at step %d", step)
	}

	f = frame(trace, 24)
	assert.Equal(t, 9, f.WorldTime)
	assert.Equal(t, 9, f.FurthestTime)
	assert.Equal(t, "off", f.Cubes[0].State)
	assert.Empty(t, f.Cubes[0].Intervals)
}

func TestRunTwoCubesFirstWins(t *testing.T) {
	s, err := Load("testdata/two_cubes.yaml")
	require.NoError(t, err)

	r := NewRunner(simulation.DefaultConfig().TimeTravel, nil)
	reg := prometheus.NewRegistry()
	r.SetMetrics(timetravel.NewMetrics(reg))

	trace, err := r.Run(context.Background(), s)
	require.NoError(t, err)

	f := frame(trace, 6)
	assert.Equal(t, "rewinding", f.Cubes[0].State)
	assert.Equal(t, "recording", f.Cubes[1].State)
	assert.Equal(t, "rewinding", frame(trace, 8).Cubes[0].State)
	expected := `
# HELP timecube_ticks_total Simulation ticks executed
# TYPE timecube_ticks_total counter
timecube_ticks_total 8
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "timecube_ticks_total"))
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := Load("testdata/replay.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trace, err := NewRunner(simulation.DefaultConfig().TimeTravel, nil).Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, trace)
	assert.Empty(t, trace.Frames)
}

func TestRunRecordsCapacityErrors(t *testing.T) {
	s, err := Parse([]byte(`
name: overflow
steps: 5
capacity: 3
cubes: [{name: c, battery_life: 10}]
events:
  - {step: 1, action: record, cube: 0}
`))
	require.NoError(t, err)

	trace, err := NewRunner(simulation.DefaultConfig().TimeTravel, nil).Run(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, frame(trace, 4).Errors, 1)
	assert.Contains(t, frame(trace, 4).Errors[0], "history capacity exceeded")
	assert.Equal(t, []string{"[1, 3]"}, frame(trace, 4).Cubes[0].Intervals)
	assert.Empty(t, frame(trace, 5).Errors)
}
