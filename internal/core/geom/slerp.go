package geom

import "math"

// slerpLinearThreshold is the cosine above which Slerp falls back to a
// normalized linear blend.
const slerpLinearThreshold = 0.9995

// Slerp spherically interpolates from a to b by t in [0, 1], taking the
// shortest arc. t == 0 returns a and t == 1 returns b exactly.
func Slerp(a, b Quat, t float64) Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 || a == b {
		return b
	}

	cos := a.Dot(b)
	end := b
	if cos < 0 {
		// q and -q are the same rotation; flip to take the short way round
		cos = -cos
		end = Quat{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
	}

	var wa, wb float64
	if cos > slerpLinearThreshold {
		wa, wb = 1-t, t
	} else {
		theta := math.Acos(cos)
		sin := math.Sin(theta)
		wa = math.Sin((1-t)*theta) / sin
		wb = math.Sin(t*theta) / sin
	}

	return Quat{
		X: wa*a.X + wb*end.X,
		Y: wa*a.Y + wb*end.Y,
		Z: wa*a.Z + wb*end.Z,
		W: wa*a.W + wb*end.W,
	}.Normalize()
}

// Lerp linearly interpolates from a to b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
