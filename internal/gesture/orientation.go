package gesture

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/projection"
	"github.com/inamate/geoview/internal/versor"
)

// DefaultThreshold is the smallest scalar part a gesture's delta rotation
// may have before the gesture re-anchors. Below it the pivot is closer to
// the antipode of the anchor than to the anchor itself.
const DefaultThreshold = 0.7

// OrientationOptions configures an Orientation controller.
type OrientationOptions struct {
	// ScaleExtent bounds the scale relative to the base scale. Zero
	// selects DefaultScaleExtent.
	ScaleExtent [2]float64

	// Threshold overrides DefaultThreshold when non-zero. A negative value
	// disables re-anchoring.
	Threshold float64

	// WheelFactor as in AffineOptions.
	WheelFactor float64
}

func (o OrientationOptions) withDefaults() OrientationOptions {
	if o.ScaleExtent == [2]float64{} {
		o.ScaleExtent = DefaultScaleExtent
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.WheelFactor == 0 {
		o.WheelFactor = 0.002
	}
	return o
}

// OrientationPhase is the state of an Orientation controller.
type OrientationPhase int

const (
	OrientationIdle OrientationPhase = iota
	OrientationActive
	// OrientationReanchored is Active after the anchor was moved to the
	// current pivot to keep the delta rotation well conditioned.
	OrientationReanchored
)

func (p OrientationPhase) String() string {
	switch p {
	case OrientationActive:
		return "active"
	case OrientationReanchored:
		return "reanchored"
	}
	return "idle"
}

// Orientation rotates the sphere under an azimuthal projection. One contact
// drags the point under it; two or more also twist about the line of sight
// and pinch the scale.
type Orientation struct {
	opts    OrientationOptions
	proj    *projection.Adapter
	notify  Listener
	tooltip Tooltip

	phase    OrientationPhase
	session  *Session
	contacts pointers
}

// NewOrientation creates a controller bound to proj, which must be in
// orientation mode. tooltip may be nil.
func NewOrientation(proj *projection.Adapter, opts OrientationOptions, notify Listener, tooltip Tooltip) *Orientation {
	return &Orientation{
		opts:    opts.withDefaults(),
		proj:    proj,
		notify:  notify,
		tooltip: tooltip,
	}
}

// Phase returns the controller state.
func (c *Orientation) Phase() OrientationPhase { return c.phase }

// Session returns the active session, or nil.
func (c *Orientation) Session() *Session { return c.session }

// Active reports whether a gesture is in progress.
func (c *Orientation) Active() bool { return c.phase != OrientationIdle }

// PointerDown starts a gesture or adds a contact to the running one.
func (c *Orientation) PointerDown(id int, p r2.Point) {
	if !finite(p) {
		return
	}
	if c.session == nil {
		c.phase = OrientationActive
		c.session = &Session{Kind: SessionOrientation}
		if c.tooltip != nil {
			c.tooltip.SetVisible(false)
		}
		slog.Debug("gesture start", "mode", "orientation")
	}
	if c.contacts.add(id, p) {
		c.anchor()
	}
}

// PointerMove composes the rotation that keeps the anchor under the
// contacts.
func (c *Orientation) PointerMove(id int, p r2.Point) {
	i := c.contacts.find(id)
	if c.session == nil || i < 0 || !finite(p) {
		return
	}
	c.contacts[i].p = p
	s := c.session
	if s.StartVector == nil {
		// the gesture began off the globe; try again from here
		c.anchor()
		return
	}

	prevScale := c.proj.Scale()
	multi := len(c.contacts) >= 2
	if multi && s.StartSpread > 0 {
		if spread := c.contacts.spread(); spread > 0 {
			c.proj.SetScale(c.clampScale(s.StartScale * spread / s.StartSpread))
		}
	}

	q0 := *s.StartRotation
	ll := c.proj.UnprojectWith(c.contacts.centroid(), q0)
	v1 := versor.Cartesian(ll)
	delta, ok := versor.Delta(*s.StartVector, v1)
	if !ok || math.IsNaN(ll[0]) {
		c.proj.SetScale(prevScale)
		slog.Debug("gesture frame skipped", "mode", "orientation")
		return
	}
	s.Moved = true

	q1 := versor.Compose(q0, delta)
	if multi && s.StartBearing != nil {
		d := wrapAngle(c.contacts.bearing() - *s.StartBearing)
		q1 = versor.Compose(versor.Twist(d), q1)
	}
	c.proj.SetRotation(q1)
	c.emit(UpdateRotation)

	if delta.W < c.opts.Threshold {
		c.phase = OrientationReanchored
		c.anchor()
		s.Reanchors++
		slog.Debug("gesture re-anchored", "mode", "orientation", "w", delta.W)
	}
}

// PointerUp removes a contact. The rotation is kept when the last contact
// lifts.
func (c *Orientation) PointerUp(id int, p r2.Point) {
	if c.session == nil || !c.contacts.remove(id) {
		return
	}
	if len(c.contacts) > 0 {
		c.anchor()
		return
	}
	c.end()
}

// Wheel magnifies about the projection centre.
func (c *Orientation) Wheel(p r2.Point, deltaY float64) {
	c.ScaleBy(wheelScale(deltaY, c.opts.WheelFactor), p)
}

// ScaleBy multiplies the projection scale by factor within the scale
// extent. The rotation is unchanged.
func (c *Orientation) ScaleBy(factor float64, p r2.Point) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	if c.session == nil && c.tooltip != nil {
		c.tooltip.SetVisible(false)
	}
	c.proj.SetScale(c.clampScale(c.proj.Scale() * factor))
	if c.session != nil {
		c.anchor()
	}
	c.emit(UpdateRotation)
}

// Reset restores the base rotation and scale.
func (c *Orientation) Reset() {
	c.end()
	c.proj.ResetToBase()
	c.emit(UpdateReset)
}

// Abort drops the active gesture without emitting anything.
func (c *Orientation) Abort() {
	if c.session != nil {
		slog.Debug("gesture aborted", "mode", "orientation")
	}
	c.end()
}

// anchor records the rotation, pivot and bearing the following moves are
// measured against.
func (c *Orientation) anchor() {
	s := c.session
	s.PointerCount = len(c.contacts)
	s.MaxSeen = max(s.MaxSeen, s.PointerCount)
	s.StartVector, s.StartBearing = nil, nil
	s.StartSpread = 0
	if len(c.contacts) == 0 {
		return
	}

	q0 := c.proj.Rotation()
	s.StartRotation = &q0
	s.StartScale = c.proj.Scale()
	ll := c.proj.UnprojectWith(c.contacts.centroid(), q0)
	if !math.IsNaN(ll[0]) && !math.IsNaN(ll[1]) {
		v0 := versor.Cartesian(ll)
		s.StartVector = &v0
	}
	if len(c.contacts) >= 2 {
		a0 := c.contacts.bearing()
		s.StartBearing = &a0
		s.StartSpread = c.contacts.spread()
	}
}

func (c *Orientation) end() {
	c.session = nil
	c.contacts = c.contacts[:0]
	c.phase = OrientationIdle
}

func (c *Orientation) clampScale(k float64) float64 {
	base := c.proj.State().BaseScale
	return clamp(k, c.opts.ScaleExtent[0]*base, c.opts.ScaleExtent[1]*base)
}

func (c *Orientation) emit(kind UpdateKind) {
	if c.notify == nil {
		return
	}
	c.notify(Update{Kind: kind, Rotation: c.proj.Rotation(), Scale: c.proj.Scale()})
}

var _ Controller = (*Orientation)(nil)
var _ Controller = (*Affine)(nil)

// Rotation returns the current projection rotation.
func (c *Orientation) Rotation() mgl64.Quat { return c.proj.Rotation() }
