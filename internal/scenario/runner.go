package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/simulation"
	"chosenoffset.com/timecube/internal/timetravel"
)

// Frame is the observable state after one step.
type Frame struct {
	Step         int         `json:"step"`
	WorldTime    int         `json:"world_time"`
	FurthestTime int         `json:"furthest_time"`
	InPast       bool        `json:"in_past"`
	Frozen       bool        `json:"frozen"`
	Player       geom.Vec3   `json:"player"`
	Objects      []geom.Vec3 `json:"objects,omitempty"`
	Cubes        []CubeFrame `json:"cubes,omitempty"`
	Errors       []string    `json:"errors,omitempty"`
}

// CubeFrame is one cube's state in a frame.
type CubeFrame struct {
	Name           string    `json:"name"`
	State          string    `json:"state"`
	Intervals      []string  `json:"intervals,omitempty"`
	RewindPosition float64   `json:"rewind_position"`
	BatteryLeft    int       `json:"battery_left"`
	Ghost          geom.Vec3 `json:"ghost"`
}

// Trace is the full output of one run.
type Trace struct {
	RunID    string  `json:"run_id"`
	Scenario string  `json:"scenario"`
	Frames   []Frame `json:"frames"`
}

// Runner executes scenarios against the time travel subsystem.
type Runner struct {
	config  simulation.TimeTravelConfig
	logger  *slog.Logger
	metrics *timetravel.Metrics
}

// NewRunner creates a runner. Scenario fields left at zero take their value
// from config.
func NewRunner(config simulation.TimeTravelConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{config: config, logger: logger}
}

// SetMetrics attaches metrics to every world the runner builds.
func (r *Runner) SetMetrics(metrics *timetravel.Metrics) {
	r.metrics = metrics
}

// session is the live state of one run
type session struct {
	host  *Host
	world *timetravel.World
}

// Run steps the scenario to completion and returns its trace. Per-entity
// errors are recorded in the frame they happen in and do not stop the run;
// setup errors and cancellation do.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Trace, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run", runID, "scenario", s.Name)

	sess, err := r.setup(s, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("scenario started", "steps", s.Steps, "cubes", len(s.Cubes), "objects", len(s.Objects))

	trace := &Trace{RunID: runID, Scenario: s.Name}
	for step := 1; step <= s.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return trace, fmt.Errorf("scenario %q stopped at step %d: %w", s.Name, step, err)
		}

		if err := sess.apply(s.eventsAt(step)); err != nil {
			return trace, fmt.Errorf("scenario %q step %d: %w", s.Name, step, err)
		}
		sess.host.Physics()

		stepErr := sess.world.Step()
		frame := sess.snapshot(step)
		for _, e := range flatten(stepErr) {
			frame.Errors = append(frame.Errors, e.Error())
		}
		trace.Frames = append(trace.Frames, frame)
	}

	logger.Info("scenario finished",
		"world_time", sess.world.WorldTime(), "furthest_time", sess.world.FurthestTime())
	return trace, nil
}

func (r *Runner) setup(s *Scenario, logger *slog.Logger) (*session, error) {
	capacity := s.Capacity
	if capacity == 0 {
		capacity = r.config.HistoryCapacity
	}
	scrubRate := s.ScrubRate
	if scrubRate == 0 {
		scrubRate = r.config.ScrubRate
	}

	host := NewHost(s)
	manager, err := timetravel.NewManager(capacity, host)
	if err != nil {
		return nil, err
	}
	manager.SetLogger(logger)
	manager.SetMetrics(r.metrics)

	for _, cs := range s.Cubes {
		cube, err := timetravel.NewTimeCube(cs.Name, cs.BatteryLife)
		if err != nil {
			return nil, err
		}
		if err := manager.AddCube(cube); err != nil {
			return nil, err
		}
	}
	for _, o := range host.Objects {
		h, err := timetravel.NewHistory([]timetravel.Bone{o}, capacity)
		if err != nil {
			return nil, fmt.Errorf("history for %q: %w", o.Name(), err)
		}
		manager.AddHistory(h)
	}

	world, err := timetravel.NewWorld(manager, scrubRate)
	if err != nil {
		return nil, err
	}
	return &session{host: host, world: world}, nil
}

// apply raises the requests and input changes of one step
func (s *session) apply(events []Event) error {
	for _, ev := range events {
		var err error
		switch ev.Action {
		case ActionRecord:
			err = s.world.RequestRecord(ev.Cube)
		case ActionRewind:
			err = s.world.RequestRewind(ev.Cube)
		case ActionReplay:
			err = s.world.RequestReplay(ev.Cube)
		case ActionScrub:
			s.host.SetScrubAxis(ev.Axis)
		case ActionMove:
			s.host.Player.Root().Velocity = vec(ev.Velocity)
		default:
			err = fmt.Errorf("unknown action %q", ev.Action)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *session) snapshot(step int) Frame {
	w := s.world
	f := Frame{
		Step:         step,
		WorldTime:    w.WorldTime(),
		FurthestTime: w.FurthestTime(),
		InPast:       w.InPast(),
		Frozen:       s.host.Frozen(),
		Player:       s.host.Player.Root().Position(),
	}
	for _, o := range s.host.Objects {
		f.Objects = append(f.Objects, o.Position())
	}

	for _, c := range w.Manager().Cubes() {
		cf := CubeFrame{
			Name:           c.Name,
			State:          c.State().String(),
			RewindPosition: c.RewindPosition(),
			BatteryLeft:    c.BatteryLeft(w.WorldTime()),
		}
		for _, iv := range c.Intervals() {
			cf.Intervals = append(cf.Intervals, iv.String())
		}
		if g, ok := s.host.Ghost(c); ok {
			cf.Ghost = g.Root().Position()
		}
		f.Cubes = append(f.Cubes, cf)
	}
	return f
}

// flatten unpacks a joined error into its parts
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
