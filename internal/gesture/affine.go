package gesture

import (
	"log/slog"

	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/projection"
)

// AffineOptions configures an Affine controller.
type AffineOptions struct {
	// ScaleExtent bounds K. Zero selects DefaultScaleExtent.
	ScaleExtent [2]float64

	// Extent is the viewport. With no area, translate is not clamped.
	Extent r2.Rect

	// TranslateExtent bounds the content in base screen units. With no
	// area it defaults to Extent.
	TranslateExtent r2.Rect

	// TapTolerance is how far a pointer may travel, in pixels, and still
	// count as a tap. Zero selects 3.
	TapTolerance float64

	// WheelFactor converts wheel delta units to log2 scale steps. Zero
	// selects 0.002, one line of a typical mouse wheel being ~100 units.
	WheelFactor float64
}

func (o AffineOptions) withDefaults() AffineOptions {
	if o.ScaleExtent == [2]float64{} {
		o.ScaleExtent = DefaultScaleExtent
	}
	if !hasArea(o.TranslateExtent) {
		o.TranslateExtent = o.Extent
	}
	if o.TapTolerance == 0 {
		o.TapTolerance = 3
	}
	if o.WheelFactor == 0 {
		o.WheelFactor = 0.002
	}
	return o
}

// affinePhase is the state of an Affine controller.
type affinePhase int

const (
	affineIdle affinePhase = iota
	affineDragging
	affineWheeling
)

func (p affinePhase) String() string {
	switch p {
	case affineDragging:
		return "dragging"
	case affineWheeling:
		return "wheeling"
	}
	return "idle"
}

// Affine pans and zooms a planar projection. The projection's scale is
// K*BaseScale and its translate K*BaseTranslate + (X, Y).
type Affine struct {
	opts    AffineOptions
	proj    *projection.Adapter
	notify  Listener
	tooltip Tooltip

	t        Transform
	phase    affinePhase
	session  *Session
	contacts pointers
}

// NewAffine creates a controller bound to proj. tooltip may be nil.
func NewAffine(proj *projection.Adapter, opts AffineOptions, notify Listener, tooltip Tooltip) *Affine {
	return &Affine{
		opts:    opts.withDefaults(),
		proj:    proj,
		notify:  notify,
		tooltip: tooltip,
		t:       IdentityTransform,
	}
}

// Transform returns the current transform.
func (c *Affine) Transform() Transform { return c.t }

// Session returns the active session, or nil.
func (c *Affine) Session() *Session { return c.session }

// Active reports whether a gesture is in progress.
func (c *Affine) Active() bool { return c.phase != affineIdle }

// PointerDown starts a drag, or turns a drag into a pinch.
func (c *Affine) PointerDown(id int, p r2.Point) {
	if !finite(p) {
		return
	}
	if c.session == nil {
		c.begin(affineDragging)
	}
	if c.contacts.add(id, p) {
		c.anchor()
	}
}

// PointerMove pans (one contact) or pinches (two or more contacts).
func (c *Affine) PointerMove(id int, p r2.Point) {
	i := c.contacts.find(id)
	if c.session == nil || i < 0 || !finite(p) {
		return
	}
	c.contacts[i].p = p
	s := c.session

	if len(c.contacts) == 1 {
		d := p.Sub(s.StartPointer)
		if !s.Moved && d.Norm() <= c.opts.TapTolerance {
			return
		}
		s.Moved = true
		t := s.StartTransform
		c.apply(Transform{K: t.K, X: t.X + d.X, Y: t.Y + d.Y}, UpdateTransform)
		return
	}

	spread := c.contacts.spread()
	if s.StartSpread == 0 || spread == 0 {
		return
	}
	s.Moved = true
	start := s.StartTransform
	k := c.clampK(start.K * spread / s.StartSpread)
	w := start.Invert(s.StartPointer)
	ctr := c.contacts.centroid()
	c.apply(Transform{K: k, X: ctr.X - w.X*k, Y: ctr.Y - w.Y*k}, UpdateTransform)
}

// PointerUp ends a contact. A lone contact that never moved is a tap and
// resets the view.
func (c *Affine) PointerUp(id int, p r2.Point) {
	if c.session == nil || !c.contacts.remove(id) {
		return
	}
	if len(c.contacts) > 0 {
		c.anchor()
		return
	}
	tap := !c.session.Moved && c.session.MaxSeen == 1
	c.end()
	if tap {
		c.Reset()
	}
}

// Wheel zooms about p.
func (c *Affine) Wheel(p r2.Point, deltaY float64) {
	c.ScaleBy(wheelScale(deltaY, c.opts.WheelFactor), p)
}

// ScaleBy multiplies the scale by factor, keeping the point under p fixed.
func (c *Affine) ScaleBy(factor float64, p r2.Point) {
	if !finite(p) || factor <= 0 {
		return
	}
	standalone := c.session == nil
	if standalone {
		c.begin(affineWheeling)
	}
	c.apply(c.t.ScaleAround(c.clampK(c.t.K*factor), p), UpdateTransform)
	if standalone {
		c.end()
	} else {
		c.anchor()
	}
}

// Reset returns to the identity transform and the base projection.
func (c *Affine) Reset() {
	c.session = nil
	c.contacts = c.contacts[:0]
	c.phase = affineIdle
	c.t = IdentityTransform
	c.proj.ResetToBase()
	c.emit(UpdateReset)
}

// Abort drops the active gesture without emitting anything.
func (c *Affine) Abort() {
	if c.session != nil {
		slog.Debug("gesture aborted", "mode", "affine")
	}
	c.end()
}

func (c *Affine) begin(phase affinePhase) {
	c.phase = phase
	c.session = &Session{Kind: SessionAffine}
	if c.tooltip != nil {
		c.tooltip.SetVisible(false)
	}
	slog.Debug("gesture start", "mode", "affine", "phase", phase)
}

func (c *Affine) end() {
	c.session = nil
	c.contacts = c.contacts[:0]
	c.phase = affineIdle
}

// anchor restarts the session's reference after the contact set changed.
func (c *Affine) anchor() {
	s := c.session
	s.PointerCount = len(c.contacts)
	s.MaxSeen = max(s.MaxSeen, s.PointerCount)
	s.StartTransform = c.t
	s.StartSpread = 0
	if len(c.contacts) == 0 {
		return
	}
	if len(c.contacts) == 1 {
		s.StartPointer = c.contacts[0].p
		return
	}
	s.StartPointer = c.contacts.centroid()
	s.StartSpread = c.contacts.spread()
}

func (c *Affine) clampK(k float64) float64 {
	return clamp(k, c.opts.ScaleExtent[0], c.opts.ScaleExtent[1])
}

func (c *Affine) apply(t Transform, kind UpdateKind) {
	if hasArea(c.opts.Extent) {
		t = constrain(t, c.opts.Extent, c.opts.TranslateExtent)
	}
	c.t = t
	st := c.proj.State()
	c.proj.SetScale(t.K * st.BaseScale)
	c.proj.SetTranslate(r2.Point{
		X: t.K*st.BaseTranslate.X + t.X,
		Y: t.K*st.BaseTranslate.Y + t.Y,
	})
	c.emit(kind)
}

func (c *Affine) emit(kind UpdateKind) {
	if c.notify == nil {
		return
	}
	c.notify(Update{Kind: kind, Transform: c.t, Scale: c.proj.Scale()})
}
