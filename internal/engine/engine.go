package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"

	"github.com/inamate/geoview/internal/gesture"
	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/projection"
)

// ErrInvalidSetup indicates a scene setup the engine cannot run.
var ErrInvalidSetup = errors.New("invalid scene setup")

// Setup is what a scene supplies when it creates an engine.
type Setup struct {
	Projection    projection.Raw
	Mode          projection.Mode
	BaseScale     float64
	BaseTranslate r2.Point

	// BaseRotation is the initial and reset rotation of orientation
	// scenes. Nil means the identity.
	BaseRotation *mgl64.Quat

	// ScaleExtent bounds the zoom relative to BaseScale. Zero selects
	// gesture.DefaultScaleExtent.
	ScaleExtent [2]float64

	// Extent is the viewport. It bounds affine panning and the tile range.
	Extent r2.Rect

	// Threshold overrides the antipode restart threshold of orientation
	// scenes.
	Threshold float64
}

func (s Setup) validate() error {
	if s.Projection == nil {
		return fmt.Errorf("%w: no projection", ErrInvalidSetup)
	}
	if s.BaseScale <= 0 || math.IsNaN(s.BaseScale) || math.IsInf(s.BaseScale, 0) {
		return fmt.Errorf("%w: base scale %g", ErrInvalidSetup, s.BaseScale)
	}
	if s.ScaleExtent != [2]float64{} {
		lo, hi := s.ScaleExtent[0], s.ScaleExtent[1]
		if lo <= 0 || hi < lo {
			return fmt.Errorf("%w: scale extent [%g, %g]", ErrInvalidSetup, lo, hi)
		}
	}
	return nil
}

type pendingOp struct {
	remove bool
	desc   layer.Descriptor
	id     string
}

// Engine owns one scene: the projection, its layers and the controller
// chosen for the scene's mode. Every input runs to completion, including
// the dispatch pass it triggers, before the call returns.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	proj     *projection.Adapter
	reg      *layer.Registry
	dispatch *Dispatcher
	ctrl     gesture.Controller
	renderer Renderer

	// structural changes requested while a pass held the registry
	pending []pendingOp

	passes int
	last   gesture.Update
}

// New creates an engine and registers the initial layers. Nothing is
// rendered until the first Render or input.
func New(s Setup, layers []layer.Descriptor, renderer Renderer, tooltip gesture.Tooltip) (*Engine, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		renderer = NewRecorder()
	}

	e := &Engine{
		proj:     projection.NewAdapter(s.Projection, s.Mode, s.BaseScale, s.BaseTranslate),
		reg:      layer.NewRegistry(),
		renderer: renderer,
	}
	if s.BaseRotation != nil {
		e.proj.SetBaseRotation(*s.BaseRotation)
	}
	e.dispatch = NewDispatcher(e.proj, e.reg, renderer, s.Extent)

	switch s.Mode {
	case projection.ModeOrientation:
		e.ctrl = gesture.NewOrientation(e.proj, gesture.OrientationOptions{
			ScaleExtent: s.ScaleExtent,
			Threshold:   s.Threshold,
		}, e.onUpdate, tooltip)
	default:
		e.ctrl = gesture.NewAffine(e.proj, gesture.AffineOptions{
			ScaleExtent: s.ScaleExtent,
			Extent:      s.Extent,
		}, e.onUpdate, tooltip)
	}

	for i, d := range layers {
		if err := e.reg.Upsert(d); err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, d.ID, err)
		}
	}

	slog.Debug("engine created", "mode", s.Mode, "layers", e.reg.Len())
	return e, nil
}

// --- Input ---

// PointerDown starts a gesture or adds a contact to the running one.
func (e *Engine) PointerDown(id int, p r2.Point) { e.ctrl.PointerDown(id, p) }

// PointerMove moves a contact.
func (e *Engine) PointerMove(id int, p r2.Point) { e.ctrl.PointerMove(id, p) }

// PointerUp lifts a contact.
func (e *Engine) PointerUp(id int, p r2.Point) { e.ctrl.PointerUp(id, p) }

// PointerCancel aborts the running gesture, e.g. after losing pointer
// capture. Nothing is emitted.
func (e *Engine) PointerCancel() { e.ctrl.Abort() }

// Wheel zooms by a wheel delta at p.
func (e *Engine) Wheel(p r2.Point, deltaY float64) { e.ctrl.Wheel(p, deltaY) }

// ZoomBy multiplies the zoom by factor about p.
func (e *Engine) ZoomBy(factor float64, p r2.Point) { e.ctrl.ScaleBy(factor, p) }

// Reset returns to the base view.
func (e *Engine) Reset() { e.ctrl.Reset() }

// Active reports whether a gesture is in progress.
func (e *Engine) Active() bool { return e.ctrl.Active() }

func (e *Engine) onUpdate(u gesture.Update) {
	e.last = u
	e.pass()
}

// --- Layers ---

// Upsert registers or updates a layer and renders it. During a dispatch
// pass the change is queued until Flush.
func (e *Engine) Upsert(d layer.Descriptor) error {
	err := e.reg.Upsert(d)
	if errors.Is(err, layer.ErrBusy) {
		e.pending = append(e.pending, pendingOp{desc: d})
		slog.Debug("layer upsert queued", "layer", d.ID)
		return nil
	}
	if err != nil {
		return err
	}
	e.dispatch.DispatchLayer(d.ID)
	return nil
}

// Remove deletes a layer. Unknown ids are ignored. During a dispatch pass
// the removal is queued until Flush.
func (e *Engine) Remove(id string) error {
	err := e.reg.Remove(id)
	if errors.Is(err, layer.ErrBusy) {
		e.pending = append(e.pending, pendingOp{remove: true, id: id})
		slog.Debug("layer remove queued", "layer", id)
		return nil
	}
	if err != nil {
		return err
	}
	if r, ok := e.renderer.(LayerRemover); ok {
		r.RemoveLayer(id)
	}
	return nil
}

// Flush applies the structural changes queued during passes, in the order
// they were requested, and returns how many were applied. It does nothing
// while a pass is running.
func (e *Engine) Flush() int {
	if e.reg.Locked() || len(e.pending) == 0 {
		return 0
	}
	ops := e.pending
	e.pending = nil
	for _, op := range ops {
		var err error
		if op.remove {
			err = e.Remove(op.id)
		} else {
			err = e.Upsert(op.desc)
		}
		if err != nil {
			slog.Warn("queued layer change failed", "error", err)
		}
	}
	return len(ops)
}

// Pending returns the number of queued structural changes.
func (e *Engine) Pending() int { return len(e.pending) }

// Layers returns the registered layers in order.
func (e *Engine) Layers() []layer.Descriptor { return e.reg.All() }

// --- Queries ---

// Render recomputes every layer and returns the number dispatched.
func (e *Engine) Render() int { return e.pass() }

func (e *Engine) pass() int {
	e.passes++
	n := e.dispatch.Dispatch()
	slog.Debug("dispatch pass", "pass", e.passes, "layers", n)
	return n
}

// Passes returns the number of full dispatch passes so far.
func (e *Engine) Passes() int { return e.passes }

// State returns a copy of the projection state.
func (e *Engine) State() projection.State { return e.proj.State() }

// Mode returns the scene's gesture mode.
func (e *Engine) Mode() projection.Mode { return e.proj.Mode() }

// LastUpdate returns the most recent controller update.
func (e *Engine) LastUpdate() gesture.Update { return e.last }

// Project maps a lon/lat point to the screen.
func (e *Engine) Project(p orb.Point) r2.Point { return e.proj.Project(p) }

// Unproject maps a screen point to lon/lat.
func (e *Engine) Unproject(p r2.Point) orb.Point { return e.proj.Unproject(p) }
