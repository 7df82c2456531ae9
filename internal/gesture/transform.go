package gesture

import (
	"math"

	"github.com/golang/geo/r2"
)

// Transform is a uniform scale K followed by a translate (X, Y), applied to
// base screen coordinates.
type Transform struct {
	K, X, Y float64
}

// IdentityTransform is the transform of an untouched scene.
var IdentityTransform = Transform{K: 1}

// Apply maps a base screen point through the transform.
func (t Transform) Apply(p r2.Point) r2.Point {
	return r2.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a transformed screen point back to base screen space.
func (t Transform) Invert(p r2.Point) r2.Point {
	return r2.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// ScaleAround returns the transform with scale k that keeps the point
// currently under p fixed on screen.
func (t Transform) ScaleAround(k float64, p r2.Point) Transform {
	w := t.Invert(p)
	return Transform{K: k, X: p.X - w.X*k, Y: p.Y - w.Y*k}
}

// translate shifts by (x, y) in base units.
func (t Transform) translate(x, y float64) Transform {
	return Transform{K: t.K, X: t.X + t.K*x, Y: t.Y + t.K*y}
}

// constrain shifts t so that the viewport, seen through t, stays within
// bounds. Content narrower than the viewport is centred.
func constrain(t Transform, viewport, bounds r2.Rect) Transform {
	lo := t.Invert(viewport.Lo())
	hi := t.Invert(viewport.Hi())
	dx0, dx1 := lo.X-bounds.X.Lo, hi.X-bounds.X.Hi
	dy0, dy1 := lo.Y-bounds.Y.Lo, hi.Y-bounds.Y.Hi
	return t.translate(shift(dx0, dx1), shift(dy0, dy1))
}

func shift(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if v := math.Min(0, d0); v != 0 {
		return v
	}
	return math.Max(0, d1)
}

func hasArea(r r2.Rect) bool {
	return !r.IsEmpty() && r.X.Length() > 0 && r.Y.Length() > 0
}
