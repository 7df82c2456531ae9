package layer

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/inamate/geoview/internal/typeid"
)

func ids(r *Registry) []string {
	var out []string
	for _, d := range r.All() {
		out = append(out, d.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUpsertPreservesPosition(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"outline", "graticule", "cities"} {
		if err := r.Upsert(Descriptor{ID: id, Params: OutlineParams{}}); err != nil {
			t.Fatal(err)
		}
	}
	before := ids(r)

	for i := 0; i < 2; i++ {
		err := r.Upsert(Descriptor{ID: "graticule", Params: GraticuleParams{Step: [2]float64{15, 15}}})
		if err != nil {
			t.Fatal(err)
		}
	}

	if r.Len() != 3 {
		t.Errorf("len = %d, want 3", r.Len())
	}
	if got := ids(r); !equalStrings(got, before) {
		t.Errorf("order = %v, want %v", got, before)
	}
	d, ok := r.Get("graticule")
	if !ok {
		t.Fatal("graticule missing")
	}
	g, ok := d.Params.(GraticuleParams)
	if !ok || g.Step != [2]float64{15, 15} {
		t.Errorf("params = %#v", d.Params)
	}
	if d.Kind() != KindGraticule {
		t.Errorf("kind = %q", d.Kind())
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"a", "b", "c", "d"} {
		r.Upsert(Descriptor{ID: id, Params: ClipPathParams{}})
	}
	if err := r.Remove("b"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("missing"); err != nil {
		t.Errorf("removing a missing id: %v", err)
	}
	if got := ids(r); !equalStrings(got, []string{"a", "c", "d"}) {
		t.Errorf("order = %v", got)
	}
	// the index must follow the shifted positions
	r.Upsert(Descriptor{ID: "d", Params: OutlineParams{}})
	if d, _ := r.Get("d"); d.Kind() != KindOutline {
		t.Errorf("d has kind %q after upsert", d.Kind())
	}
	if got := ids(r); !equalStrings(got, []string{"a", "c", "d"}) {
		t.Errorf("order after upsert = %v", got)
	}
}

func TestUpsertValidation(t *testing.T) {
	r := NewRegistry()
	if err := r.Upsert(Descriptor{Params: OutlineParams{}}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("empty id: %v", err)
	}
	if err := r.Upsert(Descriptor{ID: "x"}); !errors.Is(err, ErrNilParams) {
		t.Errorf("nil params: %v", err)
	}
}

func TestLockFencesMutation(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Descriptor{ID: "a", Params: OutlineParams{}})
	r.Lock()
	if err := r.Upsert(Descriptor{ID: "b", Params: OutlineParams{}}); !errors.Is(err, ErrBusy) {
		t.Errorf("upsert while locked: %v", err)
	}
	if err := r.Remove("a"); !errors.Is(err, ErrBusy) {
		t.Errorf("remove while locked: %v", err)
	}
	if err := r.Remove("missing"); err != nil {
		t.Errorf("removing a missing id while locked: %v", err)
	}
	r.Unlock()
	if err := r.Upsert(Descriptor{ID: "b", Params: OutlineParams{}}); err != nil {
		t.Errorf("upsert after unlock: %v", err)
	}
}

func TestAllIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Descriptor{ID: "a", Params: OutlineParams{}})
	all := r.All()
	all[0].ID = "changed"
	if _, ok := r.Get("a"); !ok || ids(r)[0] != "a" {
		t.Error("All exposed internal storage")
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if err := typeid.Validate(id, typeid.PrefixLayer); err != nil {
		t.Error(err)
	}
	if NewID() == id {
		t.Error("ids repeat")
	}
}

func TestSizeFuncs(t *testing.T) {
	sq := SqrtSize(100, 20)
	if got := sq(25); math.Abs(got-10) > 1e-12 {
		t.Errorf("sqrt(25) = %g", got)
	}
	lin := LinearSize(100, 20)
	if got := lin(25); math.Abs(got-5) > 1e-12 {
		t.Errorf("linear(25) = %g", got)
	}
	for _, f := range []SizeFunc{sq, lin, SqrtSize(0, 10)} {
		if f(-1) != 0 || f(math.NaN()) != 0 {
			t.Error("non-positive values must map to zero")
		}
	}
}

func TestMaxValue(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for _, v := range []float64{3, 12, 7} {
		f := geojson.NewFeature(orb.Point{0, 0})
		f.Properties["pop"] = v
		fc.Append(f)
	}
	fc.Append(geojson.NewFeature(orb.Point{1, 1}))
	if got := MaxValue(fc, "pop"); got != 12 {
		t.Errorf("max = %g", got)
	}
	if MaxValue(nil, "pop") != 0 {
		t.Error("nil collection")
	}
}

func TestNestedLocks(t *testing.T) {
	r := NewRegistry()
	r.Lock()
	r.Lock()
	r.Unlock()
	if !r.Locked() {
		t.Fatal("inner unlock released the outer pass")
	}
	if err := r.Upsert(Descriptor{ID: "a", Params: OutlineParams{}}); !errors.Is(err, ErrBusy) {
		t.Errorf("upsert under the outer lock: %v", err)
	}
	r.Unlock()
	r.Unlock()
	if r.Locked() {
		t.Error("extra unlock left the registry locked")
	}
	r.Lock()
	if !r.Locked() {
		t.Error("lock after an extra unlock did not hold")
	}
}

func TestValidateLimits(t *testing.T) {
	for name, tc := range map[string]struct {
		p  Params
		ok bool
	}{
		"defaults":       {GraticuleParams{}, true},
		"fine step":      {GraticuleParams{Step: [2]float64{0.01, 10}}, false},
		"fine precision": {GraticuleParams{Precision: 0.001}, false},
		"negative step":  {GraticuleParams{Step: [2]float64{-5, 10}}, false},
		"nan precision":  {GraticuleParams{Precision: math.NaN()}, false},
		"smallest":       {GraticuleParams{Step: [2]float64{MinGraticuleStep, MinGraticuleStep}, Precision: MinPrecision}, true},
		"tiny tiles":     {TileParams{TileSize: 0.5}, false},
		"deep zoom":      {TileParams{ZoomDelta: 12}, false},
		"tile defaults":  {TileParams{ZoomDelta: -2}, true},
		"other kinds":    {CircleParams{}, true},
	} {
		d := Descriptor{ID: "x", Params: tc.p}
		err := d.Validate()
		if tc.ok != (err == nil) || (err != nil && !errors.Is(err, ErrOutOfRange)) {
			t.Errorf("%s: err = %v", name, err)
		}
		if err := NewRegistry().Upsert(d); tc.ok != (err == nil) {
			t.Errorf("%s: upsert err = %v", name, err)
		}
	}
}
