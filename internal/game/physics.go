package game

import (
	"math"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/timetravel"
)

// Movement tuning, in world units and seconds. Smoothing factors are applied
// once per tick.
const (
	gravity         = 30.0
	runSpeed        = 6.0
	jumpSpeed       = 11.0
	groundSmoothing = 0.25
	airSmoothing    = 0.08
	groundFriction  = 0.8

	playerHalfWidth = 0.35
	playerHeight    = 2.0
)

// Player is the controllable figure.
type Player struct {
	Skeleton *Skeleton
	Velocity geom.Vec3
	Grounded bool

	phase float64 // walk cycle
}

// Body is a dynamic box whose pose is recorded by a history.
type Body struct {
	Part     *Part
	Velocity geom.Vec3
	Grounded bool
	History  *timetravel.History
}

// CubeProp is the in-level object that carries a time cube.
type CubeProp struct {
	Cube *timetravel.TimeCube
	*Body
}

// box returns the world-space bounds of a body standing on its position.
func (b *Body) box() Rect {
	p := b.Part.Position()
	return Rect{X: p.X - b.Part.Length/2, Y: p.Y, W: b.Part.Length, H: b.Part.Length}
}

func (p *Player) box() Rect {
	pos := p.Skeleton.Root().Position()
	return Rect{X: pos.X - playerHalfWidth, Y: pos.Y, W: 2 * playerHalfWidth, H: playerHeight}
}

// moveBox integrates gravity and velocity for a box of the given half width
// and height standing at pos, resolving X then Y against solids. It reports
// whether the box came to rest on top of something.
func moveBox(pos, vel *geom.Vec3, halfW, h, dt float64, solids []Rect) bool {
	vel.Y -= gravity * dt

	pos.X += vel.X * dt
	box := Rect{X: pos.X - halfW, Y: pos.Y, W: 2 * halfW, H: h}
	for _, s := range solids {
		if !box.Overlaps(s) {
			continue
		}
		switch {
		case vel.X > 0:
			pos.X = s.X - halfW
		case vel.X < 0:
			pos.X = s.X + s.W + halfW
		}
		vel.X = 0
		box.X = pos.X - halfW
	}

	grounded := false
	pos.Y += vel.Y * dt
	box.Y = pos.Y
	for _, s := range solids {
		if !box.Overlaps(s) {
			continue
		}
		if vel.Y <= 0 {
			pos.Y = s.Top()
			grounded = true
		} else {
			pos.Y = s.Y - h
		}
		vel.Y = 0
		box.Y = pos.Y
	}
	return grounded
}

// stepBody moves a dynamic body for one tick.
func stepBody(b *Body, dt float64, solids []Rect) {
	pos := b.Part.Position()
	b.Grounded = moveBox(&pos, &b.Velocity, b.Part.Length/2, b.Part.Length, dt, solids)
	if b.Grounded {
		b.Velocity.X *= groundFriction
		if math.Abs(b.Velocity.X) < 0.01 {
			b.Velocity.X = 0
		}
	}
	b.Part.SetPosition(pos)
}

// steer moves the player's velocity towards h*runSpeed, jumps when asked
// and grounded, and turns the figure to face h.
func (p *Player) steer(h float64, jump bool) {
	smoothing := airSmoothing
	if p.Grounded {
		smoothing = groundSmoothing
	}
	p.Velocity.X = geom.Lerp(p.Velocity.X, h*runSpeed, smoothing)
	if jump && p.Grounded {
		p.Velocity.Y = jumpSpeed
	}
	p.Skeleton.Root().SetFacing(h)
}

// move integrates the player against solids. The walk cycle follows the
// resulting speed.
func (p *Player) move(dt float64, solids []Rect) {
	root := p.Skeleton.Root()
	pos := root.Position()
	p.Grounded = moveBox(&pos, &p.Velocity, playerHalfWidth, playerHeight, dt, solids)
	root.SetPosition(pos)

	speed := math.Abs(p.Velocity.X)
	p.phase += speed * dt * 3
	p.Skeleton.animate(p.phase, math.Min(1, speed/runSpeed), p.Grounded)
}

// push hands the player's horizontal velocity to a grounded crate it is
// walking into.
func (p *Player) push(crates []*Body) {
	if p.Velocity.X == 0 {
		return
	}
	reach := p.box()
	reach.X += math.Copysign(0.05, p.Velocity.X)
	for _, c := range crates {
		if c.Grounded && reach.Overlaps(c.box()) {
			c.Velocity.X = p.Velocity.X
		}
	}
}
