package game

import (
	"chosenoffset.com/timecube/internal/core/geom"
)

// PixelsPerUnit converts world units to screen pixels.
const PixelsPerUnit = 32.0

// Rect is an axis-aligned box in world units. Y points up and (X, Y) is the
// bottom-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Top returns the Y coordinate of the upper edge.
func (r Rect) Top() float64 {
	return r.Y + r.H
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Camera tracks the viewport position for scrolling large levels.
type Camera struct {
	X, Y float64 // World position of the bottom-left corner of the view
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// CubeSpawn places a time cube in a level.
type CubeSpawn struct {
	Name        string
	BatteryLife int
	Pos         geom.Vec3
}

// Level is the static layout the game is played in.
type Level struct {
	Name        string
	Width       float64
	Platforms   []Rect
	PlayerSpawn geom.Vec3
	Crates      []geom.Vec3
	Cubes       []CubeSpawn
}
