package engine

import (
	"log/slog"

	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/projection"
)

// Dispatcher recomputes layer geometry under the current projection and
// hands it to the renderer.
type Dispatcher struct {
	proj     *projection.Adapter
	reg      *layer.Registry
	renderer Renderer
	viewport r2.Rect
}

// NewDispatcher creates a dispatcher. viewport bounds the tile range; an
// empty rect disables tile layers.
func NewDispatcher(proj *projection.Adapter, reg *layer.Registry, renderer Renderer, viewport r2.Rect) *Dispatcher {
	return &Dispatcher{proj: proj, reg: reg, renderer: renderer, viewport: viewport}
}

// Dispatch walks the registry once in registration order and forwards
// every layer's geometry. The registry is locked for the duration of the
// pass. It returns the number of layers dispatched.
func (d *Dispatcher) Dispatch() int {
	d.reg.Lock()
	defer d.reg.Unlock()

	layers := d.reg.All()
	for _, l := range layers {
		d.renderer.ApplyGeometry(l.ID, d.Compute(l))
	}
	return len(layers)
}

// DispatchLayer recomputes a single layer. It reports false for unknown
// ids.
func (d *Dispatcher) DispatchLayer(id string) bool {
	l, ok := d.reg.Get(id)
	if !ok {
		return false
	}
	d.reg.Lock()
	defer d.reg.Unlock()
	d.renderer.ApplyGeometry(l.ID, d.Compute(l))
	return true
}

// Compute returns the geometry of one layer under the current projection.
func (d *Dispatcher) Compute(l layer.Descriptor) Geometry {
	switch p := l.Params.(type) {
	case layer.PathParams:
		b := newPathBuilder(d.proj, defaultPrecision)
		b.features(p.Features)
		return b.result(false)
	case layer.OutlineParams:
		return d.outline(false)
	case layer.ClipPathParams:
		return d.outline(true)
	case layer.GraticuleParams:
		spec := newGraticuleSpec(p.Step, p.Precision)
		b := newPathBuilder(d.proj, spec.precision)
		b.seam = false
		b.geometry(graticule(spec))
		return b.result(false)
	case layer.CircleParams:
		return circles(d.proj, p)
	case layer.SpikeParams:
		return spikes(d.proj, p)
	case layer.TextParams:
		return labels(d.proj, p)
	case layer.TileParams:
		return tiles(d.proj, d.viewport, p)
	case layer.ScalebarParams:
		return scalebar(d.proj, p)
	case layer.NorthParams:
		return north(d.proj, p)
	}
	slog.Warn("no geometry for layer", "layer", l.ID, "kind", l.Kind())
	return PathGeometry{Path: []PathCommand{}}
}

// outline is the projection domain boundary. Raws that cannot describe
// one fall back to the projected world bound.
func (d *Dispatcher) outline(clip bool) PathGeometry {
	b := newPathBuilder(d.proj, defaultPrecision)
	if ring := d.proj.Outline(); ring != nil {
		b.ring(ring)
	} else {
		b.seam = false
		b.geometry(worldBound)
	}
	return b.result(clip)
}
