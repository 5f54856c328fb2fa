package geom

import "math"

// Vec3 is a float64 point/vector in world space (Y up).
type Vec3 struct {
	X, Y, Z float64
}

func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Finite reports whether no component is NaN or Inf.
func (v Vec3) Finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// WithY returns v with its height replaced.
func (v Vec3) WithY(y float64) Vec3 { return Vec3{v.X, y, v.Z} }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Quat is a rotation quaternion stored x, y, z, w.
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the no-rotation quaternion (0, 0, 0, 1).
var Identity = Quat{W: 1}

func (q Quat) IsIdentity() bool { return q == Identity }
