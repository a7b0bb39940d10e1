package game

import (
	"fmt"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/scenario"
	"chosenoffset.com/timecube/internal/timetravel"
)

// The Game is the host the time travel subsystem drives.
var _ timetravel.Host = (*Game)(nil)

// SpawnClone builds a ghost figure for c and pairs its parts with the
// player's by name.
func (g *Game) SpawnClone(c *timetravel.TimeCube) ([]timetravel.Bone, []timetravel.Bone, error) {
	ghost := NewPlayerSkeleton(geom.Vec3{Y: scenario.ParkHeight})

	var source, target []timetravel.Bone
	for _, d := range playerParts {
		src, ok := g.Player.Skeleton.Part(d.name)
		if !ok {
			return nil, nil, fmt.Errorf("player part %q: %w", d.name, timetravel.ErrMissingBone)
		}
		dst, ok := ghost.Part(d.name)
		if !ok {
			return nil, nil, fmt.Errorf("ghost part %q: %w", d.name, timetravel.ErrMissingBone)
		}
		source = append(source, src)
		target = append(target, dst)
	}

	g.ghosts[c] = ghost
	return source, target, nil
}

// DestroyClone forgets the ghost paired with c.
func (g *Game) DestroyClone(c *timetravel.TimeCube) {
	delete(g.ghosts, c)
}

// ParkClone moves the ghost paired with c out of the level.
func (g *Game) ParkClone(c *timetravel.TimeCube) {
	if ghost, ok := g.ghosts[c]; ok {
		ghost.Root().SetPosition(geom.Vec3{Y: scenario.ParkHeight})
	}
}

// SetDynamicsFrozen pauses crates and cubes.
func (g *Game) SetDynamicsFrozen(frozen bool) {
	g.frozen = frozen
	if frozen {
		g.Lights.SetAmbientLight(frozenAmbient)
		g.ShowMessage("Time stopped")
	} else {
		g.Lights.SetAmbientLight(1)
	}
}

// SetControlMode switches the arrow keys between walking and scrubbing.
func (g *Game) SetControlMode(mode timetravel.ControlMode) {
	g.mode = mode
}

// ScrubAxis returns the horizontal input sampled this tick.
func (g *Game) ScrubAxis() float64 {
	return g.axis
}

// Ghost returns the ghost figure paired with c.
func (g *Game) Ghost(c *timetravel.TimeCube) (*Skeleton, bool) {
	ghost, ok := g.ghosts[c]
	return ghost, ok
}

// Frozen reports whether crates and cubes are paused.
func (g *Game) Frozen() bool {
	return g.frozen
}

// ControlMode returns how player input is being used.
func (g *Game) ControlMode() timetravel.ControlMode {
	return g.mode
}
