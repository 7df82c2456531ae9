package layer

import (
	"errors"
	"slices"

	"github.com/inamate/geoview/internal/typeid"
)

var (
	// ErrEmptyID indicates a descriptor without an id.
	ErrEmptyID = errors.New("layer id must not be empty")
	// ErrNilParams indicates a descriptor without params.
	ErrNilParams = errors.New("layer params must not be nil")
	// ErrBusy indicates a structural change during a dispatch pass.
	ErrBusy = errors.New("layer registry is locked by a dispatch pass")
)

// Registry is an ordered, id-keyed store of descriptors. Updating an
// existing id keeps its position.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	order  []Descriptor
	index  map[string]int // id -> position in order
	locks  int            // nested Lock calls
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// NewID returns a fresh layer id.
func NewID() string {
	return typeid.NewLayerID()
}

// Upsert inserts d, or replaces the params of the descriptor with the same
// id in place.
func (r *Registry) Upsert(d Descriptor) error {
	if d.ID == "" {
		return ErrEmptyID
	}
	if d.Params == nil {
		return ErrNilParams
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if r.Locked() {
		return ErrBusy
	}
	if i, ok := r.index[d.ID]; ok {
		r.order[i].Params = d.Params
		return nil
	}
	r.index[d.ID] = len(r.order)
	r.order = append(r.order, d)
	return nil
}

// Get returns the descriptor with the given id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.order[i], true
}

// Remove deletes the descriptor with the given id. Unknown ids are ignored.
func (r *Registry) Remove(id string) error {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	if r.Locked() {
		return ErrBusy
	}
	r.order = slices.Delete(r.order, i, i+1)
	delete(r.index, id)
	for j := i; j < len(r.order); j++ {
		r.index[r.order[j].ID] = j
	}
	return nil
}

// All returns the descriptors in registration order. The slice is a copy.
func (r *Registry) All() []Descriptor {
	return slices.Clone(r.order)
}

// Len returns the number of registered layers.
func (r *Registry) Len() int {
	return len(r.order)
}

// Lock fences the registry against structural changes until the matching
// Unlock. Locks nest.
func (r *Registry) Lock() { r.locks++ }

// Unlock releases one Lock.
func (r *Registry) Unlock() {
	if r.locks > 0 {
		r.locks--
	}
}

// Locked reports whether a pass currently holds the registry.
func (r *Registry) Locked() bool { return r.locks > 0 }
