package game

import (
	"fmt"
	"math"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/scenario"
)

const (
	wallHeight = 20.0
	cubeSize   = 0.8
	crateSize  = 1.0

	// levelMargin is the clear space kept inside each side wall.
	levelMargin = 3.0
)

// DefaultLevel builds the sandbox level. The red cube gets the configured
// battery life and the blue one half of it.
func DefaultLevel(batteryLife int) Level {
	const width = 40.0
	return Level{
		Name:  "sandbox",
		Width: width,
		Platforms: withBounds(width, []Rect{
			{X: 8, Y: 2, W: 4, H: 0.5},
			{X: 15, Y: 4, W: 4, H: 0.5},
			{X: 26, Y: 2.5, W: 5, H: 0.5},
		}),
		PlayerSpawn: geom.Vec3{X: 2},
		Crates: []geom.Vec3{
			{X: 6},
			{X: 17, Y: 4.5},
		},
		Cubes: []CubeSpawn{
			{Name: "red", BatteryLife: batteryLife, Pos: geom.Vec3{X: 4}},
			{Name: "blue", BatteryLife: max(1, batteryLife/2), Pos: geom.Vec3{X: 23}},
		},
	}
}

// LevelFromScenario lays out a flat level holding the bodies and cubes of
// s. Objects become crates and cubes are lined up right of the player.
// Everything is shifted right when needed to keep clear of the left wall.
func LevelFromScenario(s *scenario.Scenario) Level {
	spawn := geom.Vec3{X: s.Player.Position[0], Y: s.Player.Position[1]}
	lvl := Level{Name: s.Name, PlayerSpawn: spawn}

	left, right := spawn.X, spawn.X
	for _, o := range s.Objects {
		pos := geom.Vec3{X: o.Position[0], Y: o.Position[1]}
		lvl.Crates = append(lvl.Crates, pos)
		left, right = math.Min(left, pos.X), math.Max(right, pos.X)
	}
	for i, c := range s.Cubes {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("cube%d", i)
		}
		pos := geom.Vec3{X: spawn.X + 3 + 3*float64(i)}
		lvl.Cubes = append(lvl.Cubes, CubeSpawn{Name: name, BatteryLife: c.BatteryLife, Pos: pos})
		right = math.Max(right, pos.X)
	}

	shift := geom.Vec3{X: math.Max(0, levelMargin-left)}
	lvl.PlayerSpawn = lvl.PlayerSpawn.Add(shift)
	for i := range lvl.Crates {
		lvl.Crates[i] = lvl.Crates[i].Add(shift)
	}
	for i := range lvl.Cubes {
		lvl.Cubes[i].Pos = lvl.Cubes[i].Pos.Add(shift)
	}

	lvl.Width = math.Max(30, right+shift.X+levelMargin)
	lvl.Platforms = withBounds(lvl.Width, nil)
	return lvl
}

// withBounds adds the floor and the two side walls.
func withBounds(width float64, platforms []Rect) []Rect {
	return append([]Rect{
		{X: -1, Y: -1, W: width + 2, H: 1},
		{X: -1, Y: 0, W: 1, H: wallHeight},
		{X: width, Y: 0, W: 1, H: wallHeight},
	}, platforms...)
}
