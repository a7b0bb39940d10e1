package timetravel

import (
	"errors"
	"fmt"
	"math"
)

// World owns the discrete world clock. It advances one tick at a time, or
// follows the scrub head of a rewinding cube.
type World struct {
	manager   *Manager
	scrubRate float64

	worldTime    int
	furthestTime int
}

// NewWorld creates a world clock at tick 0. scrubRate is the fraction of the
// rewound interval covered per tick at full scrub deflection.
func NewWorld(manager *Manager, scrubRate float64) (*World, error) {
	if manager == nil {
		return nil, fmt.Errorf("world needs a manager: %w", ErrInvalidArgument)
	}
	if scrubRate <= 0 || math.IsNaN(scrubRate) {
		return nil, fmt.Errorf("scrub rate %v: %w", scrubRate, ErrInvalidArgument)
	}
	return &World{manager: manager, scrubRate: scrubRate}, nil
}

// Manager returns the cube manager.
func (w *World) Manager() *Manager {
	return w.manager
}

// WorldTime returns the current tick.
func (w *World) WorldTime() int {
	return w.worldTime
}

// FurthestTime returns the furthest tick ever reached.
func (w *World) FurthestTime() int {
	return w.furthestTime
}

// InPast reports whether the clock is behind the furthest tick reached.
func (w *World) InPast() bool {
	return w.worldTime < w.furthestTime
}

// RequestRecord asks the cube at index to start recording this tick.
func (w *World) RequestRecord(index int) error {
	return w.manager.Request(index, IntentRecord)
}

// RequestRewind asks the cube at index to start rewinding this tick.
func (w *World) RequestRewind(index int) error {
	return w.manager.Request(index, IntentRewind)
}

// RequestReplay asks the rewinding cube at index to start replaying.
func (w *World) RequestReplay(index int) error {
	return w.manager.Request(index, IntentReplay)
}

func (w *World) String() string {
	return fmt.Sprintf("[Globals: wT = %d, fT = %d]", w.worldTime, w.furthestTime)
}

// Step runs one tick. The order matters: the clock is settled first
// (including any rewind that starts this tick and its scrub input), then a
// record request made after every interval has ended drops them, then
// every cube updates its state for the new time, then histories are stored
// or restored, and finally unserviced intents are dropped.
//
// The returned error joins per-entity failures; the tick always completes.
func (w *World) Step() error {
	m := w.manager

	// Step 1: settle the clock
	if rc := m.RewindingCube(); rc == nil {
		w.worldTime++
		if w.worldTime == w.furthestTime+1 {
			w.furthestTime++
		}
	} else {
		if !rc.isRewinding {
			m.intents.Take(rc.Index, IntentRewind)
			if err := rc.startRewinding(w.worldTime); err != nil {
				return fmt.Errorf("start rewind: %w", err)
			}
			m.host.SetDynamicsFrozen(true)
			m.host.SetControlMode(ControlRewind)
			iv := rc.intervals[rc.target]
			m.logger.Info("rewind started", "cube", rc.Name, "tick", w.worldTime,
				"start", iv.Start, "end", iv.End)
		}

		axis := math.Max(-1, math.Min(1, m.host.ScrubAxis()))
		rc.scrub(w.scrubRate * float64(rc.intervals[rc.target].Len()) * axis)
		w.worldTime = rc.displayTime()
	}
	t := w.worldTime

	// Step 2: cube transitions and level state
	var errs []error
	m.supersede(t)
	minStart := m.MinRecordingStart()
	for _, c := range m.cubes {
		if err := w.updateCube(c, t, minStart); err != nil {
			errs = append(errs, err)
		}
	}

	// Step 3: store and restore
	if err := m.Advance(t, w.InPast(), m.AnyIsRecording(), m.MinRecordingStart()); err != nil {
		errs = append(errs, err)
	}

	m.drainIntents(t)
	m.metrics.tick(w.worldTime, w.furthestTime)
	return errors.Join(errs...)
}

func (w *World) updateCube(c *TimeCube, t, minStart int) error {
	m := w.manager
	wasActive := c.active >= 0 || c.isRewinding
	var result error

	if m.WillRecord(c) {
		if err := w.tryRecord(c, t, minStart); err != nil {
			m.logger.Debug("record request rejected", "cube", c.Name, "tick", t, "error", err)
		} else {
			m.intents.Take(c.Index, IntentRecord)
			m.logger.Info("recording started", "cube", c.Name, "tick", t)
		}
	}

	if c.batteryExpired(t) {
		c.closeOpen(t)
		m.logger.Info("battery expired", "cube", c.Name, "tick", t)
	} else if c.openInterval() >= 0 && minStart != PosInf && t-minStart >= m.capacity {
		c.closeOpen(t)
		result = &EntityError{Kind: "cube", Index: c.Index, Op: "record", Tick: t,
			Err: fmt.Errorf("slot %d: %w", t-minStart, ErrCapacityExceeded)}
		m.metrics.entityError("record")
		m.logger.Info("recording closed at capacity", "cube", c.Name, "tick", t)
	}

	if c.isRewinding && m.intents.Take(c.Index, IntentReplay) {
		c.stopRewinding()
		m.host.SetDynamicsFrozen(false)
		m.host.SetControlMode(ControlNormal)
		m.logger.Info("replay started", "cube", c.Name, "tick", t)
	}

	c.recompute(t)
	if wasActive && c.IsOff() {
		m.host.ParkClone(c)
	}
	return result
}

// tryRecord starts a recording on c at t if capacity allows it.
func (w *World) tryRecord(c *TimeCube, t, minStart int) error {
	if t-min(minStart, t) >= w.manager.capacity {
		return fmt.Errorf("slot %d: %w", t-minStart, ErrCapacityExceeded)
	}
	return c.startRecording(t)
}
