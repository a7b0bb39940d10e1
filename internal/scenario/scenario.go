// Package scenario runs scripted, headless time travel sessions. A scenario
// file describes the bodies in the level, the cubes and a list of input
// events; the runner steps the world clock and records a per-tick trace.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Action is what an event asks for
type Action string

const (
	ActionRecord Action = "record"
	ActionRewind Action = "rewind"
	ActionReplay Action = "replay"
	ActionScrub  Action = "scrub"
	ActionMove   Action = "move"
)

// Scenario is one scripted session
type Scenario struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`

	// Steps is how many times the world clock is stepped
	Steps int `yaml:"steps" validate:"gte=1"`

	// Capacity and ScrubRate fall back to the simulation config when zero
	Capacity  int     `yaml:"capacity" validate:"omitempty,gte=2"`
	ScrubRate float64 `yaml:"scrub_rate" validate:"omitempty,gt=0,lte=1"`

	Player  BodySpec   `yaml:"player"`
	Cubes   []CubeSpec `yaml:"cubes" validate:"dive"`
	Objects []BodySpec `yaml:"objects" validate:"dive"`
	Events  []Event    `yaml:"events" validate:"dive"`
}

// BodySpec places a body in the level
type BodySpec struct {
	Name     string     `yaml:"name"`
	Position [2]float64 `yaml:"position"`
	Velocity [2]float64 `yaml:"velocity"`
}

// CubeSpec declares a time cube
type CubeSpec struct {
	Name        string `yaml:"name" validate:"required"`
	BatteryLife int    `yaml:"battery_life" validate:"gte=1"`
}

// Event is applied just before the given step runs
type Event struct {
	Step     int        `yaml:"step" validate:"gte=1"`
	Action   Action     `yaml:"action" validate:"oneof=record rewind replay scrub move"`
	Cube     int        `yaml:"cube" validate:"gte=0"`
	Axis     float64    `yaml:"axis" validate:"gte=-1,lte=1"`
	Velocity [2]float64 `yaml:"velocity"`
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document. Unknown keys are errors.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks field bounds and that every event targets a declared cube
// within the scripted steps.
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	var errs []error
	for i, ev := range s.Events {
		if ev.Step > s.Steps {
			errs = append(errs, fmt.Errorf("event %d: step %d after last step %d", i, ev.Step, s.Steps))
		}
		switch ev.Action {
		case ActionRecord, ActionRewind, ActionReplay:
			if ev.Cube >= len(s.Cubes) {
				errs = append(errs, fmt.Errorf("event %d: cube %d of %d", i, ev.Cube, len(s.Cubes)))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid scenario: %w", errors.Join(errs...))
	}
	return nil
}

// eventsAt returns the events scheduled for step in file order
func (s *Scenario) eventsAt(step int) []Event {
	var out []Event
	for _, ev := range s.Events {
		if ev.Step == step {
			out = append(out, ev)
		}
	}
	return out
}
