// Package versor provides the unit-quaternion operations used to rotate the
// sphere under an orientation-mode projection.
//
// Vectors follow the s2 convention: x points at (lon 0, lat 0), y at
// (lon 90, lat 0) and z at the north pole. The view centre of every raw
// projection in this repo is +x, so rotations about +x twist the map about
// the line of sight.
package versor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// ViewAxis is the line of sight in view coordinates.
var ViewAxis = mgl64.Vec3{1, 0, 0}

// Identity returns the rotation that leaves every point in place.
func Identity() mgl64.Quat {
	return mgl64.QuatIdent()
}

// Cartesian returns the unit vector of a lon/lat point given in degrees.
func Cartesian(p orb.Point) mgl64.Vec3 {
	v := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon()))
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Spherical returns the lon/lat point (degrees) of a vector. The vector
// does not need to be normalised.
func Spherical(v mgl64.Vec3) orb.Point {
	ll := s2.LatLngFromPoint(s2.Point{Vector: r3.Vector{X: v[0], Y: v[1], Z: v[2]}})
	return orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()}
}

// Delta returns the minimal rotation taking v0 onto v1. ok is false when
// either vector is degenerate or the two are exactly opposite, in which
// case no unique minimal rotation exists.
func Delta(v0, v1 mgl64.Vec3) (q mgl64.Quat, ok bool) {
	l0, l1 := v0.Len(), v1.Len()
	if l0 == 0 || l1 == 0 || !finite(l0) || !finite(l1) {
		return Identity(), false
	}
	a, b := v0.Mul(1/l0), v1.Mul(1/l1)
	w := a.Cross(b)
	l := w.Len()
	dot := math.Max(-1, math.Min(1, a.Dot(b)))
	if l == 0 {
		if dot < 0 {
			return Identity(), false
		}
		return Identity(), true
	}
	t := math.Acos(dot) / 2
	return mgl64.Quat{W: math.Cos(t), V: w.Mul(math.Sin(t) / l)}, true
}

// Twist returns the rotation by angle radians about the line of sight.
// Positive angles turn the map clockwise on a y-down screen.
func Twist(angle float64) mgl64.Quat {
	d := angle / 2
	return mgl64.Quat{W: math.Cos(d), V: ViewAxis.Mul(-math.Sin(d))}
}

// Compose returns the normalised Hamilton product a*b: b is applied first.
func Compose(a, b mgl64.Quat) mgl64.Quat {
	return Normalize(a.Mul(b))
}

// Normalize rescales q to unit length. A zero quaternion becomes the
// identity.
func Normalize(q mgl64.Quat) mgl64.Quat {
	l := q.Len()
	if l == 0 || !finite(l) {
		return Identity()
	}
	return q.Scale(1 / l)
}

// Rotate applies q to the vector v.
func Rotate(q mgl64.Quat, v mgl64.Vec3) mgl64.Vec3 {
	return q.Rotate(v)
}

// Equal reports whether a and b describe the same rotation within tol.
// q and -q are the same rotation.
func Equal(a, b mgl64.Quat, tol float64) bool {
	d := math.Abs(a.W*b.W + a.V.Dot(b.V))
	return math.Abs(1-d) <= tol
}

// FromRotation builds a quaternion from lon/lat/roll angles in degrees:
// the sphere is turned so that (-lambda, -phi) lands at the view centre,
// then rolled by gamma about the line of sight.
func FromRotation(lambda, phi, gamma float64) mgl64.Quat {
	toRad := math.Pi / 180
	yaw := mgl64.QuatRotate(lambda*toRad, mgl64.Vec3{0, 0, 1})
	pitch := mgl64.QuatRotate(-phi*toRad, mgl64.Vec3{0, 1, 0})
	roll := Twist(gamma * toRad)
	return Compose(roll, Compose(pitch, yaw))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
