package timetravel

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

const (
	// PosInf is returned by MinRecordingStart when nothing is recorded, and by
	// MaxRecordingEnd while any interval is still open.
	PosInf = math.MaxInt
	// NegInf is returned by MaxRecordingEnd when nothing is recorded.
	NegInf = math.MinInt
)

// Manager coordinates every time cube and every recorded history against
// the single world clock.
type Manager struct {
	cubes     []*TimeCube
	histories []*History
	intents   IntentQueue

	capacity int
	host     Host
	logger   *slog.Logger
	metrics  *Metrics
}

// NewManager creates a manager whose histories hold capacity slots.
func NewManager(capacity int, host Host) (*Manager, error) {
	if capacity < 2 {
		return nil, fmt.Errorf("history capacity %d: %w", capacity, ErrInvalidArgument)
	}
	if host == nil {
		return nil, fmt.Errorf("manager needs a host: %w", ErrInvalidArgument)
	}
	return &Manager{
		capacity: capacity,
		host:     host,
		logger:   slog.Default(),
	}, nil
}

// SetLogger replaces the logger.
func (m *Manager) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// SetMetrics attaches metrics.
func (m *Manager) SetMetrics(metrics *Metrics) {
	m.metrics = metrics
}

// Capacity returns the slot capacity of every history.
func (m *Manager) Capacity() int {
	return m.capacity
}

// Cubes returns the registered cubes in index order.
func (m *Manager) Cubes() []*TimeCube {
	return m.cubes
}

// Cube returns the cube at index.
func (m *Manager) Cube(index int) (*TimeCube, error) {
	if index < 0 || index >= len(m.cubes) {
		return nil, fmt.Errorf("cube %d of %d: %w", index, len(m.cubes), ErrUnknownCube)
	}
	return m.cubes[index], nil
}

// Histories returns the registered histories in index order.
func (m *Manager) Histories() []*History {
	return m.histories
}

// AddCube spawns the cube's ghost clone, registers its history and appends
// the cube. A clone whose bones cannot be resolved is a setup error.
func (m *Manager) AddCube(c *TimeCube) error {
	source, target, err := m.host.SpawnClone(c)
	if err != nil {
		return fmt.Errorf("spawn clone for cube %q: %w", c.Name, err)
	}
	h, err := NewCloneHistory(source, target, m.capacity)
	if err != nil {
		m.host.DestroyClone(c)
		return fmt.Errorf("clone history for cube %q: %w", c.Name, err)
	}

	c.clone = &Clone{History: h}
	c.Index = len(m.cubes)
	m.cubes = append(m.cubes, c)
	m.AddHistory(h)
	m.host.ParkClone(c)

	m.logger.Debug("cube added", "cube", c.Name, "index", c.Index, "bones", h.BoneCount())
	return nil
}

// RemoveCube destroys the cube's clone, unregisters its history and
// re-indexes the remaining cubes.
func (m *Manager) RemoveCube(index int) error {
	c, err := m.Cube(index)
	if err != nil {
		return err
	}
	if c.clone != nil && c.clone.History.Index >= 0 {
		if err := m.RemoveHistoryAt(c.clone.History.Index); err != nil {
			return err
		}
	}
	m.host.DestroyClone(c)

	// The clock is released along with the cube driving it.
	if c.isRewinding {
		c.stopRewinding()
		m.host.SetDynamicsFrozen(false)
		m.host.SetControlMode(ControlNormal)
		m.logger.Info("rewinding cube removed", "cube", c.Name)
	}

	m.cubes = append(m.cubes[:index], m.cubes[index+1:]...)
	for i, cube := range m.cubes {
		cube.Index = i
	}
	m.intents.removeCube(index)
	c.Index = -1
	return nil
}

// AddHistory registers h and returns its index.
func (m *Manager) AddHistory(h *History) int {
	h.Index = len(m.histories)
	m.histories = append(m.histories, h)
	return h.Index
}

// RemoveHistoryAt unregisters the history at index and re-indexes the rest.
func (m *Manager) RemoveHistoryAt(index int) error {
	if index < 0 || index >= len(m.histories) {
		return fmt.Errorf("history %d of %d: %w", index, len(m.histories), ErrUnknownHistory)
	}
	m.histories[index].Index = -1
	m.histories = append(m.histories[:index], m.histories[index+1:]...)
	for i, h := range m.histories {
		h.Index = i
	}
	return nil
}

// Request queues a one-shot intent for the cube at index. Intents not
// serviced during the current tick are dropped when it ends.
func (m *Manager) Request(index int, kind IntentKind) error {
	if _, err := m.Cube(index); err != nil {
		return err
	}
	m.intents.Push(Intent{Cube: index, Kind: kind})
	return nil
}

// WillRecord reports whether c has a pending record intent.
func (m *Manager) WillRecord(c *TimeCube) bool {
	return m.intents.Has(c.Index, IntentRecord)
}

// WillRewind reports whether c has a pending rewind intent.
func (m *Manager) WillRewind(c *TimeCube) bool {
	return m.intents.Has(c.Index, IntentRewind)
}

// WillReplay reports whether c has a pending replay intent.
func (m *Manager) WillReplay(c *TimeCube) bool {
	return m.intents.Has(c.Index, IntentReplay)
}

// AnyWillRewind reports whether any cube has a pending rewind intent.
func (m *Manager) AnyWillRewind() bool {
	return m.intents.AnyPending(IntentRewind)
}

// AnyIsRecording reports whether any cube is recording.
func (m *Manager) AnyIsRecording() bool {
	for _, c := range m.cubes {
		if c.isRecording {
			return true
		}
	}
	return false
}

// AnyIsRewinding reports whether any cube is rewinding.
func (m *Manager) AnyIsRewinding() bool {
	for _, c := range m.cubes {
		if c.isRewinding {
			return true
		}
	}
	return false
}

// MinRecordingStart returns the earliest interval start across all cubes,
// or PosInf when nothing is recorded.
func (m *Manager) MinRecordingStart() int {
	result := PosInf
	for _, c := range m.cubes {
		for _, iv := range c.intervals {
			result = min(result, iv.Start)
		}
	}
	return result
}

// MaxRecordingEnd returns the latest interval end across all cubes. An
// interval that is open, or closed but still waiting to be rewound, makes
// the result PosInf. With no intervals the result is NegInf.
func (m *Manager) MaxRecordingEnd() int {
	result := NegInf
	for _, c := range m.cubes {
		for _, iv := range c.intervals {
			if iv.IsOpen() || !iv.Sealed {
				return PosInf
			}
			result = max(result, iv.End)
		}
	}
	return result
}

// RewindingCube returns the cube that drives the world clock this tick, or
// nil. A cube already rewinding keeps the clock; otherwise the first cube
// in index order with a serviceable rewind intent wins.
func (m *Manager) RewindingCube() *TimeCube {
	for _, c := range m.cubes {
		if c.isRewinding {
			return c
		}
	}
	for _, c := range m.cubes {
		if m.WillRewind(c) && c.canRewind() {
			return c
		}
	}
	return nil
}

// Advance stores or restores every history for world time t. Failures are
// local to one history; every other history is still processed and the
// failures come back joined.
func (m *Manager) Advance(t int, inPast, isAnyRecording bool, minStart int) error {
	var errs []error

	// Nothing is recorded, so there is no slot to address.
	if minStart != PosInf {
		slot := t - minStart

		for _, h := range m.histories {
			if h.IsTimeTraveler() {
				continue
			}
			if !inPast && isAnyRecording {
				errs = m.store(errs, "history", h.Index, h, slot, t)
			}
			if inPast {
				errs = m.restore(errs, "history", h.Index, h, slot, t)
			}
		}

		for _, c := range m.cubes {
			h := c.clone.History
			switch {
			case c.isRecording:
				errs = m.store(errs, "cube", c.Index, h, slot, t)
			case c.isRewinding:
				scrub := float64(c.intervals[c.target].Start-minStart) + c.rewindPosition
				if err := h.RestoreBonesBlended(scrub); err != nil {
					errs = m.fail(errs, "cube", c.Index, h, "restore_blended", t, err)
				} else {
					m.metrics.restore("blended")
				}
			case c.isReplaying:
				errs = m.restore(errs, "cube", c.Index, h, slot, t)
			}
		}
	}

	m.collect(t)
	return errors.Join(errs...)
}

func (m *Manager) store(errs []error, kind string, index int, h *History, slot, t int) []error {
	if err := h.StoreBones(slot); err != nil {
		return m.fail(errs, kind, index, h, "store", t, err)
	}
	m.metrics.store()
	return errs
}

func (m *Manager) restore(errs []error, kind string, index int, h *History, slot, t int) []error {
	if err := h.RestoreBones(slot); err != nil {
		return m.fail(errs, kind, index, h, "restore", t, err)
	}
	m.metrics.restore("exact")
	return errs
}

func (m *Manager) fail(errs []error, kind string, index int, h *History, op string, t int, err error) []error {
	m.metrics.entityError(op)
	m.logger.Debug("history operation failed", kind, index, "history", h.Name(), "op", op, "tick", t,
		"error", err)
	return append(errs, &EntityError{Kind: kind, Index: index, Op: op, Tick: t, Err: err})
}

// collect drops every interval and every stored snapshot once world time
// has moved past the end of all of them.
func (m *Manager) collect(t int) {
	if m.MaxRecordingEnd() >= t {
		return
	}
	m.dropAll(t, "collected")
}

// supersede drops every recording when a cube asks to record at t after all
// of them have ended. Closed intervals still waiting for a rewind give way
// to the new recording, which then starts at slot 0.
func (m *Manager) supersede(t int) {
	pending := false
	for _, c := range m.cubes {
		if c.isRewinding {
			return
		}
		for _, iv := range c.intervals {
			if iv.IsOpen() || iv.End >= t {
				return
			}
		}
		if m.WillRecord(c) {
			pending = true
		}
	}
	if pending {
		m.dropAll(t, "superseded")
	}
}

// dropAll drops every interval and every stored snapshot.
func (m *Manager) dropAll(t int, reason string) {
	n := 0
	for _, c := range m.cubes {
		n += len(c.intervals)
	}
	if n == 0 {
		return
	}

	for _, c := range m.cubes {
		c.clearIntervals()
	}
	for _, h := range m.histories {
		h.Reset()
	}
	m.metrics.collected(n)
	m.logger.Info("recorded history cleared", "tick", t, "intervals", n, "reason", reason)
}

// drainIntents ends the intent window for this tick.
func (m *Manager) drainIntents(t int) {
	for _, in := range m.intents.Drain() {
		m.metrics.dropped(in.Kind)
		m.logger.Debug("intent dropped", "cube", in.Cube, "kind", in.Kind, "tick", t)
	}
}

func (m *Manager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[TCM: Cubes = %d, Histories = %d]\n", len(m.cubes), len(m.histories))
	for i, c := range m.cubes {
		fmt.Fprintf(&b, "Cubes[%d] = %s\n", i, c)
	}
	return b.String()
}
