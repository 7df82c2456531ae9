package gesture

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/projection"
)

type recorder struct {
	updates []Update
}

func (r *recorder) listen(u Update) { r.updates = append(r.updates, u) }

func (r *recorder) last() Update { return r.updates[len(r.updates)-1] }

type fakeTooltip struct {
	hidden int
}

func (f *fakeTooltip) SetVisible(v bool) {
	if !v {
		f.hidden++
	}
}

var viewport = r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 600, Y: 300})

func newAffine(opts AffineOptions) (*Affine, *projection.Adapter, *recorder, *fakeTooltip) {
	proj := projection.NewAdapter(projection.Equirectangular{}, projection.ModeAffine, 100, r2.Point{X: 300, Y: 150})
	rec := &recorder{}
	tip := &fakeTooltip{}
	return NewAffine(proj, opts, rec.listen, tip), proj, rec, tip
}

func closeTo(a, b r2.Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestAffineZoomKeepsPivot(t *testing.T) {
	c, proj, rec, _ := newAffine(AffineOptions{Extent: viewport})
	cursor := r2.Point{X: 100, Y: 100}
	pivot := proj.Unproject(cursor)

	c.ScaleBy(2, cursor)

	if len(rec.updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(rec.updates))
	}
	if got := c.Transform(); got.K != 2 {
		t.Errorf("k = %g, want 2", got.K)
	}
	if got := proj.Project(pivot); !closeTo(got, cursor, 1e-9) {
		t.Errorf("pivot projects to %v, want %v", got, cursor)
	}
	if c.Active() {
		t.Error("a standalone zoom left the controller active")
	}
}

func TestAffineZoomCenterProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	c, proj, _, _ := newAffine(AffineOptions{ScaleExtent: [2]float64{0.25, 32}})
	for i := 0; i < 500; i++ {
		cursor := r2.Point{X: 150 + rng.Float64()*300, Y: 80 + rng.Float64()*140}
		pivot := proj.Unproject(cursor)
		if math.IsNaN(pivot[0]) {
			continue
		}
		c.Wheel(cursor, (rng.Float64()-0.5)*800)
		if got := proj.Project(pivot); !closeTo(got, cursor, 1e-6) {
			t.Fatalf("step %d: pivot drifted to %v, want %v", i, got, cursor)
		}
	}
}

func TestAffineScaleClamped(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	c, proj, _, _ := newAffine(AffineOptions{Extent: viewport})
	base := proj.State().BaseScale
	for i := 0; i < 1000; i++ {
		p := r2.Point{X: rng.Float64() * 600, Y: rng.Float64() * 300}
		if rng.IntN(2) == 0 {
			c.Wheel(p, (rng.Float64()-0.5)*5000)
		} else {
			c.ScaleBy(math.Exp((rng.Float64()-0.5)*6), p)
		}
		k := proj.Scale()
		if k < base-1e-9 || k > 8*base+1e-9 {
			t.Fatalf("step %d: scale %g outside [%g, %g]", i, k, base, 8*base)
		}
	}
}

func TestAffineDrag(t *testing.T) {
	c, proj, rec, tip := newAffine(AffineOptions{})
	c.PointerDown(1, r2.Point{X: 10, Y: 10})
	if !c.Active() || tip.hidden != 1 {
		t.Fatalf("active=%v hidden=%d after pointer down", c.Active(), tip.hidden)
	}
	c.PointerMove(1, r2.Point{X: 11, Y: 10})
	if len(rec.updates) != 0 {
		t.Fatal("movement inside the tap tolerance emitted an update")
	}
	c.PointerMove(1, r2.Point{X: 60, Y: 40})
	if got := c.Transform(); got != (Transform{K: 1, X: 50, Y: 30}) {
		t.Errorf("transform = %+v", got)
	}
	if got := proj.Translate(); got != (r2.Point{X: 350, Y: 180}) {
		t.Errorf("translate = %v", got)
	}
	c.PointerUp(1, r2.Point{X: 60, Y: 40})
	if c.Active() {
		t.Error("still active after pointer up")
	}
	if rec.last().Kind != UpdateTransform {
		t.Errorf("drag end emitted %v", rec.last().Kind)
	}
}

func TestAffineTranslateClamped(t *testing.T) {
	c, _, _, _ := newAffine(AffineOptions{Extent: viewport})

	// at k=1 the content exactly fills the viewport
	c.PointerDown(1, r2.Point{X: 100, Y: 100})
	c.PointerMove(1, r2.Point{X: 300, Y: 200})
	if got := c.Transform(); got != IdentityTransform {
		t.Errorf("k=1 drag moved content to %+v", got)
	}
	c.PointerUp(1, r2.Point{X: 300, Y: 200})

	c.ScaleBy(2, r2.Point{X: 300, Y: 150})
	c.PointerDown(1, r2.Point{X: 100, Y: 100})
	c.PointerMove(1, r2.Point{X: 1000, Y: 100})
	got := c.Transform()
	if got.X != 0 {
		t.Errorf("content left edge at %g, want 0", got.X)
	}
	c.PointerMove(1, r2.Point{X: -2000, Y: 100})
	got = c.Transform()
	if want := 600 - 2*600.0; got.X != want {
		t.Errorf("content right edge clamp: x = %g, want %g", got.X, want)
	}
}

func TestAffineTapResets(t *testing.T) {
	c, proj, rec, _ := newAffine(AffineOptions{Extent: viewport})
	c.ScaleBy(4, r2.Point{X: 200, Y: 100})
	c.PointerDown(7, r2.Point{X: 50, Y: 50})
	c.PointerMove(7, r2.Point{X: 51, Y: 51})
	c.PointerUp(7, r2.Point{X: 51, Y: 51})

	if rec.last().Kind != UpdateReset {
		t.Fatalf("tap emitted %v, want reset", rec.last().Kind)
	}
	if c.Transform() != IdentityTransform {
		t.Errorf("transform after tap = %+v", c.Transform())
	}
	s := proj.State()
	if s.Scale != s.BaseScale || s.Translate != s.BaseTranslate {
		t.Errorf("projection after tap = %+v", s)
	}
}

func TestAffineResetIdempotent(t *testing.T) {
	c, proj, _, _ := newAffine(AffineOptions{Extent: viewport})
	c.ScaleBy(3, r2.Point{X: 400, Y: 200})
	c.Reset()
	once, t1 := proj.State(), c.Transform()
	c.Reset()
	twice, t2 := proj.State(), c.Transform()
	if once.Scale != twice.Scale || once.Translate != twice.Translate || t1 != t2 {
		t.Errorf("reset twice: %+v %+v vs %+v %+v", once, t1, twice, t2)
	}
}

func TestAffinePinch(t *testing.T) {
	c, _, _, _ := newAffine(AffineOptions{})
	c.PointerDown(1, r2.Point{X: 250, Y: 150})
	c.PointerDown(2, r2.Point{X: 350, Y: 150})
	c.PointerMove(1, r2.Point{X: 200, Y: 150})
	c.PointerMove(2, r2.Point{X: 400, Y: 150})
	got := c.Transform()
	if math.Abs(got.K-2) > 1e-12 {
		t.Errorf("k = %g, want 2", got.K)
	}
	// the centroid (300, 150) stays put
	if p := got.Apply(r2.Point{X: 300, Y: 150}); !closeTo(p, r2.Point{X: 300, Y: 150}, 1e-9) {
		t.Errorf("centroid moved to %v", p)
	}

	// lifting one finger and releasing is not a tap
	c.PointerUp(1, r2.Point{})
	c.PointerUp(2, r2.Point{})
	if c.Transform() != got {
		t.Error("ending a pinch changed the transform")
	}
}

func TestAffineAbort(t *testing.T) {
	c, _, rec, _ := newAffine(AffineOptions{})
	c.PointerDown(1, r2.Point{X: 0, Y: 0})
	c.PointerMove(1, r2.Point{X: 20, Y: 0})
	n := len(rec.updates)
	before := c.Transform()

	c.Abort()
	c.PointerMove(1, r2.Point{X: 90, Y: 0})
	c.PointerUp(1, r2.Point{X: 90, Y: 0})

	if len(rec.updates) != n {
		t.Errorf("abort was followed by %d updates", len(rec.updates)-n)
	}
	if c.Transform() != before || c.Active() || c.Session() != nil {
		t.Error("abort left gesture state behind")
	}
}

func TestAffineIgnoresBadInput(t *testing.T) {
	c, _, rec, _ := newAffine(AffineOptions{})
	c.PointerMove(3, r2.Point{X: 1, Y: 1})
	c.PointerUp(3, r2.Point{X: 1, Y: 1})
	c.ScaleBy(0, r2.Point{})
	c.ScaleBy(2, r2.Point{X: math.NaN()})
	c.PointerDown(1, r2.Point{X: math.Inf(1)})
	if len(rec.updates) != 0 || c.Active() {
		t.Errorf("bad input produced %d updates", len(rec.updates))
	}
}

func TestConstrainCentresSmallContent(t *testing.T) {
	bounds := r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 600, Y: 300})
	got := constrain(Transform{K: 0.5, X: 0, Y: 0}, bounds, bounds)
	if got.X != 150 || got.Y != 75 {
		t.Errorf("half-size content placed at %+v, want centred", got)
	}
}
