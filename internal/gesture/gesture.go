// Package gesture turns pointer and wheel input into projection updates.
//
// A scene uses exactly one controller: Affine for planar projections,
// Orientation for azimuthal ones. Controllers mutate the projection adapter
// in place and report every change to a Listener. They are not safe for
// concurrent use; callers feed events one at a time from a single loop.
package gesture

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

// DefaultScaleExtent is the zoom range used when a scene configures none.
var DefaultScaleExtent = [2]float64{1, 8}

// UpdateKind distinguishes the updates a controller emits.
type UpdateKind int

const (
	// UpdateTransform carries a new affine transform.
	UpdateTransform UpdateKind = iota
	// UpdateRotation carries a new rotation and scale.
	UpdateRotation
	// UpdateReset reports a return to the base state.
	UpdateReset
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateTransform:
		return "transform"
	case UpdateRotation:
		return "rotation"
	case UpdateReset:
		return "reset"
	}
	return "unknown"
}

// Update is what a controller emits after mutating the projection.
type Update struct {
	Kind      UpdateKind
	Transform Transform  // affine controllers
	Rotation  mgl64.Quat // orientation controllers
	Scale     float64    // projection scale after the update
}

// Listener receives updates. It runs synchronously inside the input call.
type Listener func(Update)

// Tooltip is the tooltip collaborator. Controllers only ever hide it; the
// tooltip system shows itself again.
type Tooltip interface {
	SetVisible(visible bool)
}

// Controller is the input surface shared by both controllers.
type Controller interface {
	PointerDown(id int, p r2.Point)
	PointerMove(id int, p r2.Point)
	PointerUp(id int, p r2.Point)
	Wheel(p r2.Point, deltaY float64)
	ScaleBy(factor float64, p r2.Point)
	Reset()
	Abort()
	Active() bool
}

// SessionKind tells which controller owns a session.
type SessionKind int

const (
	SessionAffine SessionKind = iota
	SessionOrientation
)

// Session is the state of one gesture, from the first pointer down to the
// last pointer up.
type Session struct {
	Kind         SessionKind
	PointerCount int

	// orientation
	StartRotation *mgl64.Quat
	StartVector   *mgl64.Vec3
	StartBearing  *float64
	Reanchors     int

	// affine
	StartTransform Transform
	StartPointer   r2.Point

	// pinch, both kinds
	StartSpread float64
	StartScale  float64

	Moved   bool
	MaxSeen int
}

// pointer is one active contact.
type pointer struct {
	id int
	p  r2.Point
}

// pointers keeps active contacts in arrival order.
type pointers []pointer

func (ps pointers) find(id int) int {
	for i, p := range ps {
		if p.id == id {
			return i
		}
	}
	return -1
}

func (ps *pointers) add(id int, p r2.Point) bool {
	if i := ps.find(id); i >= 0 {
		(*ps)[i].p = p
		return false
	}
	*ps = append(*ps, pointer{id: id, p: p})
	return true
}

func (ps *pointers) remove(id int) bool {
	i := ps.find(id)
	if i < 0 {
		return false
	}
	*ps = append((*ps)[:i], (*ps)[i+1:]...)
	return true
}

// centroid of all contacts.
func (ps pointers) centroid() r2.Point {
	var c r2.Point
	for _, p := range ps {
		c = c.Add(p.p)
	}
	return c.Mul(1 / float64(len(ps)))
}

// bearing between the two leading contacts, radians, y-down.
func (ps pointers) bearing() float64 {
	d := ps[1].p.Sub(ps[0].p)
	return math.Atan2(d.Y, d.X)
}

// spread between the two leading contacts.
func (ps pointers) spread() float64 {
	return ps[1].p.Sub(ps[0].p).Norm()
}

func wheelScale(deltaY, factor float64) float64 {
	return math.Pow(2, -deltaY*factor)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// wrapAngle maps a to (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
