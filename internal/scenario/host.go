package scenario

import (
	"fmt"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/timetravel"
)

// ParkHeight is where a ghost waits while its cube is off.
const ParkHeight = 10000

// skeleton bones of the headless player, root first. Child offsets are
// local to the root and never change.
var skeleton = []struct {
	name   string
	offset geom.Vec3
}{
	{"root", geom.Vec3{}},
	{"torso", geom.Vec3{Y: 0.5}},
	{"head", geom.Vec3{Y: 1}},
}

// Body is a simulated part with a local pose and a constant velocity.
type Body struct {
	name     string
	pose     timetravel.Pose
	Velocity geom.Vec3
}

// NewBody creates a body at position with identity rotation and unit scale.
func NewBody(name string, position, velocity geom.Vec3) *Body {
	pose := timetravel.IdentityPose
	pose.Position = position
	return &Body{name: name, pose: pose, Velocity: velocity}
}

func (b *Body) Name() string { return b.name }
func (b *Body) LocalPose() timetravel.Pose { return b.pose }
func (b *Body) SetLocalPose(p timetravel.Pose) { b.pose = p }
func (b *Body) Position() geom.Vec3 { return b.pose.Position }

// Skeleton is a named set of bodies, root first.
type Skeleton struct {
	bones []*Body
}

func newSkeleton(position geom.Vec3) *Skeleton {
	s := &Skeleton{}
	for i, b := range skeleton {
		pos := b.offset
		if i == 0 {
			pos = position
		}
		s.bones = append(s.bones, NewBody(b.name, pos, geom.Vec3{}))
	}
	return s
}

// Root returns the root body.
func (s *Skeleton) Root() *Body {
	return s.bones[0]
}

// Bone finds a body by name.
func (s *Skeleton) Bone(name string) (*Body, bool) {
	for _, b := range s.bones {
		if b.name == name {
			return b, true
		}
	}
	return nil, false
}

// Host is a headless timetravel.Host: bodies move at constant velocity, the
// player stops moving while its input drives a rewind.
type Host struct {
	Player  *Skeleton
	Objects []*Body

	ghosts map[*timetravel.TimeCube]*Skeleton
	frozen bool
	mode   timetravel.ControlMode
	axis   float64
}

// NewHost places the player and objects described by s.
func NewHost(s *Scenario) *Host {
	h := &Host{
		Player: newSkeleton(vec(s.Player.Position)),
		ghosts: make(map[*timetravel.TimeCube]*Skeleton),
	}
	h.Player.Root().Velocity = vec(s.Player.Velocity)
	for i, o := range s.Objects {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("object%d", i)
		}
		h.Objects = append(h.Objects, NewBody(name, vec(o.Position), vec(o.Velocity)))
	}
	return h
}

// SpawnClone builds a ghost skeleton and pairs its bones with the player's
// by name.
func (h *Host) SpawnClone(c *timetravel.TimeCube) ([]timetravel.Bone, []timetravel.Bone, error) {
	ghost := newSkeleton(geom.Vec3{Y: ParkHeight})

	var source, target []timetravel.Bone
	for _, b := range skeleton {
		src, ok := h.Player.Bone(b.name)
		if !ok {
			return nil, nil, fmt.Errorf("player bone %q: %w", b.name, timetravel.ErrMissingBone)
		}
		dst, ok := ghost.Bone(b.name)
		if !ok {
			return nil, nil, fmt.Errorf("ghost bone %q: %w", b.name, timetravel.ErrMissingBone)
		}
		source = append(source, src)
		target = append(target, dst)
	}

	h.ghosts[c] = ghost
	return source, target, nil
}

func (h *Host) DestroyClone(c *timetravel.TimeCube) {
	delete(h.ghosts, c)
}

func (h *Host) ParkClone(c *timetravel.TimeCube) {
	if g, ok := h.ghosts[c]; ok {
		root := g.Root()
		pose := root.LocalPose()
		pose.Position = geom.Vec3{Y: ParkHeight}
		root.SetLocalPose(pose)
	}
}

func (h *Host) SetDynamicsFrozen(frozen bool) { h.frozen = frozen }
func (h *Host) SetControlMode(mode timetravel.ControlMode) { h.mode = mode }
func (h *Host) ScrubAxis() float64 { return h.axis }

// SetScrubAxis sets the scrub input used from now on.
func (h *Host) SetScrubAxis(axis float64) {
	h.axis = axis
}

// Ghost returns the ghost skeleton paired with c.
func (h *Host) Ghost(c *timetravel.TimeCube) (*Skeleton, bool) {
	g, ok := h.ghosts[c]
	return g, ok
}

// Frozen reports whether dynamic objects are paused.
func (h *Host) Frozen() bool {
	return h.frozen
}

// Physics advances bodies by one tick. Frozen objects stay put; the player
// keeps moving unless its input is scrubbing a rewind.
func (h *Host) Physics() {
	if h.mode == timetravel.ControlNormal {
		move(h.Player.Root())
	}
	if h.frozen {
		return
	}
	for _, o := range h.Objects {
		move(o)
	}
}

// move applies velocity and turns the body to face its horizontal motion.
func move(b *Body) {
	pose := b.LocalPose()
	pose.Position = pose.Position.Add(b.Velocity)
	switch {
	case b.Velocity.X > 0:
		pose.Scale.X = 1
	case b.Velocity.X < 0:
		pose.Scale.X = -1
	}
	b.SetLocalPose(pose)
}

func vec(v [2]float64) geom.Vec3 {
	return geom.Vec3{X: v[0], Y: v[1]}
}
