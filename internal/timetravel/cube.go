package timetravel

import (
	"fmt"
	"math"
)

// CubeState is the level state of a cube for one tick.
type CubeState int

const (
	StateOff CubeState = iota
	StateRecording
	StateRewinding
	StateReplaying
)

func (s CubeState) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateRewinding:
		return "rewinding"
	case StateReplaying:
		return "replaying"
	default:
		return "off"
	}
}

// TimeCube records one span of the player's motion at a time and replays it
// through a ghost clone after a rewind.
//
// Level state is recomputed from the interval list every tick; requests from
// game logic arrive as intents on the owning manager.
type TimeCube struct {
	// Name identifies the cube in logs and debug output.
	Name string
	// BatteryLife is the maximum length of one recording in ticks.
	BatteryLife int
	// Index is the position of this cube in its manager, or -1.
	Index int

	intervals []TimeInterval
	active    int // interval containing world time, -1 when off
	target    int // interval being rewound, -1 when not rewinding

	isRecording bool
	isRewinding bool
	isReplaying bool

	rewindPosition float64
	clone          *Clone
}

// NewTimeCube creates an idle cube.
func NewTimeCube(name string, batteryLife int) (*TimeCube, error) {
	if batteryLife < 1 {
		return nil, fmt.Errorf("cube %q battery life %d: %w", name, batteryLife, ErrInvalidArgument)
	}
	return &TimeCube{
		Name:        name,
		BatteryLife: batteryLife,
		Index:       -1,
		active:      -1,
		target:      -1,
	}, nil
}

// Intervals returns a copy of the recorded intervals in creation order.
func (c *TimeCube) Intervals() []TimeInterval {
	out := make([]TimeInterval, len(c.intervals))
	copy(out, c.intervals)
	return out
}

// ActiveInterval returns the interval containing the current world time.
func (c *TimeCube) ActiveInterval() (TimeInterval, bool) {
	if c.active < 0 {
		return TimeInterval{}, false
	}
	return c.intervals[c.active], true
}

// RewindInterval returns the interval being rewound.
func (c *TimeCube) RewindInterval() (TimeInterval, bool) {
	if c.target < 0 {
		return TimeInterval{}, false
	}
	return c.intervals[c.target], true
}

// IsRecording reports whether the cube records this tick.
func (c *TimeCube) IsRecording() bool { return c.isRecording }

// IsRewinding reports whether the cube drives the world clock.
func (c *TimeCube) IsRewinding() bool { return c.isRewinding }

// IsReplaying reports whether the cube plays back a fixed interval.
func (c *TimeCube) IsReplaying() bool { return c.isReplaying }

// IsOff reports whether no interval contains the current world time.
func (c *TimeCube) IsOff() bool { return c.active < 0 && !c.isRewinding }

// RewindPosition returns the scrub offset into the rewound interval.
func (c *TimeCube) RewindPosition() float64 { return c.rewindPosition }

// Clone returns the paired ghost, or nil before the cube is registered.
func (c *TimeCube) Clone() *Clone { return c.clone }

// State returns the level state.
func (c *TimeCube) State() CubeState {
	switch {
	case c.isRewinding:
		return StateRewinding
	case c.isRecording:
		return StateRecording
	case c.isReplaying:
		return StateReplaying
	default:
		return StateOff
	}
}

// BatteryLeft returns the ticks of recording left after tick t.
func (c *TimeCube) BatteryLeft(t int) int {
	if c.active < 0 {
		return c.BatteryLife
	}
	return c.BatteryLife - (t - c.intervals[c.active].Start + 1)
}

func (c *TimeCube) String() string {
	start, end := -1, -1
	if c.active >= 0 {
		start, end = c.intervals[c.active].Start, c.intervals[c.active].End
	}
	return fmt.Sprintf("[%s: t1 = %d, t2 = %d, IC = %d, state = %s, Ps = %.2f]",
		c.Name, start, end, len(c.intervals), c.State(), c.rewindPosition)
}

// intervalAt returns the index of the interval containing t, or -1.
func (c *TimeCube) intervalAt(t int) int {
	for i, iv := range c.intervals {
		if iv.Contains(t) {
			return i
		}
	}
	return -1
}

// openInterval returns the index of the still-open interval, or -1.
func (c *TimeCube) openInterval() int {
	for i, iv := range c.intervals {
		if iv.IsOpen() {
			return i
		}
	}
	return -1
}

// startRecording opens a new interval at t. The cube must be off at t and
// no existing interval may start after t.
func (c *TimeCube) startRecording(t int) error {
	if c.isRewinding || c.intervalAt(t) >= 0 {
		return fmt.Errorf("cube %q is not off at tick %d: %w", c.Name, t, ErrIntervalOverlap)
	}
	for _, iv := range c.intervals {
		if iv.Start > t {
			return fmt.Errorf("cube %q has an interval starting at %d after tick %d: %w",
				c.Name, iv.Start, t, ErrIntervalOverlap)
		}
	}

	// Older recordings can no longer be rewound once a new one begins.
	for i := range c.intervals {
		c.intervals[i].Sealed = true
	}
	c.intervals = append(c.intervals, NewTimeInterval(t))
	return nil
}

// closeOpen fixes the end of the open interval at t-1 and reports whether
// an interval was closed.
func (c *TimeCube) closeOpen(t int) bool {
	i := c.openInterval()
	if i < 0 {
		return false
	}
	c.intervals[i].End = max(t-1, c.intervals[i].Start)
	return true
}

// batteryExpired reports whether the open interval has used its battery by
// tick t.
func (c *TimeCube) batteryExpired(t int) bool {
	i := c.openInterval()
	return i >= 0 && t-c.intervals[i].Start >= c.BatteryLife
}

// rewindTarget returns the interval a rewind would scrub through: the
// active interval while it is recording, or else the most recent interval if
// it is not sealed. A replaying cube cannot be rewound again.
func (c *TimeCube) rewindTarget() int {
	if c.active >= 0 {
		if c.isRecording || !c.intervals[c.active].Sealed {
			return c.active
		}
		return -1
	}
	if n := len(c.intervals); n > 0 && !c.intervals[n-1].Sealed {
		return n - 1
	}
	return -1
}

// canRewind reports whether a rewind request can be serviced.
func (c *TimeCube) canRewind() bool {
	return c.isRewinding || c.rewindTarget() >= 0
}

// startRewinding closes the target interval at t if it is still open and
// parks the scrub head at its last recorded tick.
func (c *TimeCube) startRewinding(t int) error {
	i := c.rewindTarget()
	if i < 0 {
		return fmt.Errorf("cube %q has nothing to rewind: %w", c.Name, ErrInvalidArgument)
	}
	if c.intervals[i].IsOpen() {
		c.intervals[i].End = max(t, c.intervals[i].Start)
	}

	c.target = i
	c.isRewinding = true
	c.isRecording = false
	c.isReplaying = false
	c.rewindPosition = float64(c.intervals[i].End - c.intervals[i].Start)
	return nil
}

// scrub moves the rewind position by delta ticks, clamped to the interval.
func (c *TimeCube) scrub(delta float64) {
	if c.target < 0 {
		return
	}
	last := float64(c.intervals[c.target].Len() - 1)
	c.rewindPosition = math.Min(math.Max(c.rewindPosition+delta, 0), last)
}

// displayTime is the world time shown while rewinding.
func (c *TimeCube) displayTime() int {
	return c.intervals[c.target].Start + int(math.RoundToEven(c.rewindPosition))
}

// stopRewinding seals the rewound interval so it replays from now on.
func (c *TimeCube) stopRewinding() {
	if c.target >= 0 {
		c.intervals[c.target].Sealed = true
	}
	c.target = -1
	c.isRewinding = false
}

// recompute derives the level state for tick t from the interval list.
// An interval whose length equals the battery life still counts as
// recording, even once its end is fixed.
func (c *TimeCube) recompute(t int) {
	c.active = c.intervalAt(t)
	c.isRecording = false
	c.isReplaying = false

	if c.active >= 0 {
		iv := c.intervals[c.active]
		if iv.IsOpen() || iv.Len() == c.BatteryLife {
			c.isRecording = true
		} else {
			c.isReplaying = true
		}
	}

	if c.isRewinding {
		c.isRecording = false
		c.isReplaying = false
	}
}

// clearIntervals drops every interval.
func (c *TimeCube) clearIntervals() {
	c.intervals = nil
	c.active = -1
	c.target = -1
	c.isRecording = false
	c.isReplaying = false
	c.isRewinding = false
	c.rewindPosition = 0
}
