package game

import (
	"math"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/timetravel"
)

// PartKind selects how a part is drawn.
type PartKind int

const (
	PartRoot PartKind = iota // not drawn
	PartUp                   // segment from the joint upwards
	PartDown                 // segment from the joint downwards
	PartHead                 // circle centred on the joint
	PartBox                  // box standing on the joint
)

// Part is one posed piece of an entity. The root part's position is in
// world units; other parts are offset from the root.
type Part struct {
	name string
	pose timetravel.Pose

	Kind   PartKind
	Length float64 // Segment length, head radius or box size
	Width  float64
}

// NewPart creates a part at position with identity rotation and unit scale.
func NewPart(name string, kind PartKind, position geom.Vec3, length, width float64) *Part {
	pose := timetravel.IdentityPose
	pose.Position = position
	return &Part{name: name, pose: pose, Kind: kind, Length: length, Width: width}
}

func (p *Part) Name() string { return p.name }
func (p *Part) LocalPose() timetravel.Pose { return p.pose }
func (p *Part) SetLocalPose(pose timetravel.Pose) { p.pose = pose }

// Position returns the part's local position.
func (p *Part) Position() geom.Vec3 {
	return p.pose.Position
}

// SetPosition moves the part, keeping rotation and scale.
func (p *Part) SetPosition(pos geom.Vec3) {
	p.pose.Position = pos
}

// Angle returns the part's rotation about Z in radians.
func (p *Part) Angle() float64 {
	return p.pose.Rotation.AngleZ()
}

// SetAngle rotates the part about Z.
func (p *Part) SetAngle(angle float64) {
	p.pose.Rotation = geom.FromAngleZ(angle)
}

// Facing returns +1 when the part faces right and -1 when it faces left.
func (p *Part) Facing() float64 {
	if p.pose.Scale.X < 0 {
		return -1
	}
	return 1
}

// SetFacing turns the part by the sign of dir. Zero keeps the current
// facing.
func (p *Part) SetFacing(dir float64) {
	switch {
	case dir > 0:
		p.pose.Scale.X = math.Abs(p.pose.Scale.X)
	case dir < 0:
		p.pose.Scale.X = -math.Abs(p.pose.Scale.X)
	}
}

// partDef describes one part of the player skeleton. Offsets are relative to
// the root, which sits between the feet.
type partDef struct {
	name   string
	kind   PartKind
	offset geom.Vec3
	length float64
	width  float64
}

// playerParts is in draw order: back limbs, body, then front limbs.
var playerParts = []partDef{
	{"root", PartRoot, geom.Vec3{}, 0, 0},
	{"arm_back", PartDown, geom.Vec3{Y: 1.45}, 0.6, 0.14},
	{"leg_back", PartDown, geom.Vec3{Y: 0.85}, 0.85, 0.18},
	{"torso", PartUp, geom.Vec3{Y: 0.8}, 0.75, 0.36},
	{"head", PartHead, geom.Vec3{Y: 1.8}, 0.24, 0},
	{"leg_front", PartDown, geom.Vec3{Y: 0.85}, 0.85, 0.18},
	{"arm_front", PartDown, geom.Vec3{Y: 1.45}, 0.6, 0.14},
}

// Skeleton is a named set of parts, root first.
type Skeleton struct {
	Parts []*Part
}

// NewPlayerSkeleton builds the player figure standing at position.
func NewPlayerSkeleton(position geom.Vec3) *Skeleton {
	s := &Skeleton{}
	for i, d := range playerParts {
		pos := d.offset
		if i == 0 {
			pos = position
		}
		s.Parts = append(s.Parts, NewPart(d.name, d.kind, pos, d.length, d.width))
	}
	return s
}

// Root returns the root part.
func (s *Skeleton) Root() *Part {
	return s.Parts[0]
}

// Part finds a part by name.
func (s *Skeleton) Part(name string) (*Part, bool) {
	for _, p := range s.Parts {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Bones returns the parts as history bones.
func (s *Skeleton) Bones() []timetravel.Bone {
	bones := make([]timetravel.Bone, len(s.Parts))
	for i, p := range s.Parts {
		bones[i] = p
	}
	return bones
}

// animate poses the limbs for a walk cycle at the given phase. Swing scales
// the stride from 0 (standing) to 1 (full run).
func (s *Skeleton) animate(phase, swing float64, grounded bool) {
	legs := 0.6 * swing * math.Sin(phase)
	arms := -0.8 * legs
	if !grounded {
		legs, arms = 0.35, -0.9
	}
	set := func(name string, angle float64) {
		if p, ok := s.Part(name); ok {
			p.SetAngle(angle)
		}
	}
	set("leg_front", legs)
	set("leg_back", -legs)
	set("arm_front", arms)
	set("arm_back", -arms)
}
