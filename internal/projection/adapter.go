package projection

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"

	"github.com/inamate/geoview/internal/versor"
)

// Mode selects which half of the projection state gestures mutate.
// It is fixed when the adapter is created.
type Mode int

const (
	// ModeAffine pans and zooms the projected plane.
	ModeAffine Mode = iota
	// ModeOrientation rotates the sphere under a fixed projection.
	ModeOrientation
)

func (m Mode) String() string {
	if m == ModeOrientation {
		return "orientation"
	}
	return "affine"
}

// ParseMode maps "affine"/"orientation" to a Mode. Anything else yields
// ok == false.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "affine", "zoom":
		return ModeAffine, true
	case "orientation", "rotate", "versor":
		return ModeOrientation, true
	}
	return ModeAffine, false
}

// State is the mutable part of a projection.
type State struct {
	BaseScale     float64
	BaseTranslate r2.Point
	Scale         float64
	Translate     r2.Point

	// Rotation is nil for affine scenes.
	Rotation *mgl64.Quat
}

// Adapter applies State to a Raw projection. Screen coordinates are y-down:
//
//	x = tx + k*rx
//	y = ty - k*ry
type Adapter struct {
	raw   Raw
	mode  Mode
	state State

	baseRotation mgl64.Quat
}

// NewAdapter returns an adapter at its base scale and translate. For
// orientation mode the rotation starts at the identity.
func NewAdapter(raw Raw, mode Mode, baseScale float64, baseTranslate r2.Point) *Adapter {
	a := &Adapter{
		raw:  raw,
		mode: mode,
		state: State{
			BaseScale:     baseScale,
			BaseTranslate: baseTranslate,
			Scale:         baseScale,
			Translate:     baseTranslate,
		},
		baseRotation: versor.Identity(),
	}
	if mode == ModeOrientation {
		q := versor.Identity()
		a.state.Rotation = &q
	}
	return a
}

// Mode reports the adapter's gesture mode.
func (a *Adapter) Mode() Mode { return a.mode }

// Raw returns the wrapped raw projection.
func (a *Adapter) Raw() Raw { return a.raw }

// State returns a copy of the current state.
func (a *Adapter) State() State {
	s := a.state
	if s.Rotation != nil {
		q := *s.Rotation
		s.Rotation = &q
	}
	return s
}

// Scale returns the current projection scale.
func (a *Adapter) Scale() float64 { return a.state.Scale }

// Translate returns the current projection translate.
func (a *Adapter) Translate() r2.Point { return a.state.Translate }

// Rotation returns the current rotation, the identity for affine scenes.
func (a *Adapter) Rotation() mgl64.Quat {
	if a.state.Rotation == nil {
		return versor.Identity()
	}
	return *a.state.Rotation
}

// SetScale sets the projection scale.
func (a *Adapter) SetScale(k float64) { a.state.Scale = k }

// SetTranslate sets the projection translate.
func (a *Adapter) SetTranslate(t r2.Point) { a.state.Translate = t }

// SetRotation sets the sphere rotation. It does nothing in affine mode.
func (a *Adapter) SetRotation(q mgl64.Quat) {
	if a.mode != ModeOrientation {
		return
	}
	*a.state.Rotation = q
}

// SetBaseRotation sets the rotation that ResetToBase restores and applies
// it immediately.
func (a *Adapter) SetBaseRotation(q mgl64.Quat) {
	a.baseRotation = q
	a.SetRotation(q)
}

// ResetToBase restores the base scale, translate and rotation.
func (a *Adapter) ResetToBase() {
	a.state.Scale = a.state.BaseScale
	a.state.Translate = a.state.BaseTranslate
	a.SetRotation(a.baseRotation)
}

// Project maps a lon/lat point (degrees) to the screen. Points outside the
// visible domain yield (NaN, NaN).
func (a *Adapter) Project(p orb.Point) r2.Point {
	return a.project(p, a.Rotation())
}

// Unproject maps a screen point back to lon/lat. Points outside the domain
// yield (NaN, NaN).
func (a *Adapter) Unproject(p r2.Point) orb.Point {
	return a.UnprojectWith(p, a.Rotation())
}

// UnprojectWith is Unproject under rotation q instead of the live one.
func (a *Adapter) UnprojectWith(p r2.Point, q mgl64.Quat) orb.Point {
	k := a.state.Scale
	if k == 0 {
		return nan()
	}
	rx := (p.X - a.state.Translate.X) / k
	ry := (a.state.Translate.Y - p.Y) / k
	lambda, phi, ok := a.raw.Inverse(rx, ry)
	if !ok {
		return nan()
	}
	ll := orb.Point{lambda * 180 / math.Pi, phi * 180 / math.Pi}
	if a.mode != ModeOrientation {
		return ll
	}
	return versor.Spherical(q.Inverse().Rotate(versor.Cartesian(ll)))
}

// Outline returns the screen-space boundary of the projection domain, or
// nil when the raw cannot describe one.
func (a *Adapter) Outline() []r2.Point {
	o, ok := a.raw.(Outliner)
	if !ok {
		return nil
	}
	ring := o.Outline()
	out := make([]r2.Point, len(ring))
	for i, p := range ring {
		out[i] = a.fromRaw(p[0], p[1])
	}
	return out
}

func (a *Adapter) project(p orb.Point, q mgl64.Quat) r2.Point {
	if a.mode == ModeOrientation {
		p = versor.Spherical(q.Rotate(versor.Cartesian(p)))
	}
	rx, ry, ok := a.raw.Forward(p.Lon()*math.Pi/180, p.Lat()*math.Pi/180)
	if !ok {
		return r2.Point{X: math.NaN(), Y: math.NaN()}
	}
	return a.fromRaw(rx, ry)
}

func (a *Adapter) fromRaw(rx, ry float64) r2.Point {
	return r2.Point{
		X: a.state.Translate.X + a.state.Scale*rx,
		Y: a.state.Translate.Y - a.state.Scale*ry,
	}
}

// Visible reports whether a projected point can be drawn.
func Visible(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func nan() orb.Point {
	return orb.Point{math.NaN(), math.NaN()}
}
