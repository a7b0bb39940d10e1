// Package geom provides the small vector and rotation value types used for
// entity poses.
package geom

import "math"

// Vec3 represents a point or direction in 3D space. The platformer only uses
// X and Y for motion; Z is carried so poses round-trip unchanged.
type Vec3 struct {
	X, Y, Z float64
}

// Quat represents a rotation as a unit quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the rotation that does nothing.
var Identity = Quat{W: 1}

// One is the unit scale.
var One = Vec3{X: 1, Y: 1, Z: 1}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Weighted returns w1*a + w2*b. With w1 == 0 and w2 == 1 the result is
// exactly b.
func Weighted(a Vec3, w1 float64, b Vec3, w2 float64) Vec3 {
	return Vec3{
		X: w1*a.X + w2*b.X,
		Y: w1*a.Y + w2*b.Y,
		Z: w1*a.Z + w2*b.Z,
	}
}

// FromAngleZ returns a rotation of angle radians about the Z axis.
func FromAngleZ(angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{Z: s, W: c}
}

// AngleZ returns the rotation about the Z axis in radians, assuming q only
// rotates about Z.
func (q Quat) AngleZ() float64 {
	return 2 * math.Atan2(q.Z, q.W)
}

// Dot returns the 4D dot product of q and o.
func (q Quat) Dot(o Quat) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Normalize returns q scaled to unit length. A zero quaternion becomes
// Identity.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q.Dot(q))
	if n == 0 {
		return Identity
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}
