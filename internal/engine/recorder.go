package engine

import (
	"encoding/json"
)

// Renderer is the collaborator that turns computed geometry into pixels.
// ApplyGeometry must be idempotent and only affect the one layer.
type Renderer interface {
	ApplyGeometry(layerID string, g Geometry)
}

// LayerRemover is implemented by renderers that want to hear about removed
// layers.
type LayerRemover interface {
	RemoveLayer(layerID string)
}

// LayerGeometry is the latest geometry of one layer.
type LayerGeometry struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Geometry Geometry `json:"geometry,omitempty"`
	Removed  bool     `json:"removed,omitempty"`
}

// Recorder is an in-memory renderer. It keeps the latest geometry per
// layer in first-seen order and tracks which layers changed since the last
// Drain.
type Recorder struct {
	order   []string
	latest  map[string]Geometry
	changed []string
	pending map[string]bool
	applied int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		latest:  make(map[string]Geometry),
		pending: make(map[string]bool),
	}
}

// ApplyGeometry records g as the geometry of layerID.
func (r *Recorder) ApplyGeometry(layerID string, g Geometry) {
	if _, ok := r.latest[layerID]; !ok {
		r.order = append(r.order, layerID)
	}
	r.latest[layerID] = g
	r.applied++
	r.touch(layerID)
}

// RemoveLayer forgets layerID.
func (r *Recorder) RemoveLayer(layerID string) {
	if _, ok := r.latest[layerID]; !ok {
		return
	}
	delete(r.latest, layerID)
	for i, id := range r.order {
		if id == layerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.touch(layerID)
}

func (r *Recorder) touch(layerID string) {
	if !r.pending[layerID] {
		r.pending[layerID] = true
		r.changed = append(r.changed, layerID)
	}
}

// Get returns the latest geometry of layerID.
func (r *Recorder) Get(layerID string) (Geometry, bool) {
	g, ok := r.latest[layerID]
	return g, ok
}

// Applied returns how many ApplyGeometry calls the recorder has seen.
func (r *Recorder) Applied() int { return r.applied }

// Layers returns the latest geometry of every layer.
func (r *Recorder) Layers() []LayerGeometry {
	out := make([]LayerGeometry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, layerGeometry(id, r.latest[id]))
	}
	return out
}

// Drain returns the layers that changed since the previous Drain, in the
// order they first changed. Removed layers are reported with Removed set.
func (r *Recorder) Drain() []LayerGeometry {
	out := make([]LayerGeometry, 0, len(r.changed))
	for _, id := range r.changed {
		g, ok := r.latest[id]
		if !ok {
			out = append(out, LayerGeometry{ID: id, Removed: true})
			continue
		}
		out = append(out, layerGeometry(id, g))
	}
	r.changed = r.changed[:0]
	clear(r.pending)
	return out
}

// JSON serialises Layers.
func (r *Recorder) JSON() (string, error) {
	data, err := json.Marshal(r.Layers())
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

func layerGeometry(id string, g Geometry) LayerGeometry {
	lg := LayerGeometry{ID: id, Geometry: g}
	if g != nil {
		lg.Kind = g.GeometryKind()
	}
	return lg
}
