package timetravel

import "chosenoffset.com/timecube/internal/core/geom"

// Pose is the local transform of one entity part.
type Pose struct {
	Position geom.Vec3
	Rotation geom.Quat
	Scale    geom.Vec3
}

// IdentityPose is a pose at the origin with no rotation and unit scale.
var IdentityPose = Pose{Rotation: geom.Identity, Scale: geom.One}

// Bone is a handle to one part of an entity owned by the simulation host.
// Implementations must be comparable; pointer receivers are expected, and
// two bones are the same part exactly when they compare equal.
type Bone interface {
	Name() string
	LocalPose() Pose
	SetLocalPose(Pose)
}
