package gesture

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/projection"
	"github.com/inamate/geoview/internal/versor"
)

var globeCentre = r2.Point{X: 250, Y: 250}

const globeRadius = 200.0

func newOrientation(opts OrientationOptions) (*Orientation, *projection.Adapter, *recorder, *fakeTooltip) {
	proj := projection.NewAdapter(projection.Orthographic{}, projection.ModeOrientation, globeRadius, globeCentre)
	rec := &recorder{}
	tip := &fakeTooltip{}
	return NewOrientation(proj, opts, rec.listen, tip), proj, rec, tip
}

// onGlobe returns the screen point at fraction (fx, fy) of the radius from
// the centre.
func onGlobe(fx, fy float64) r2.Point {
	return r2.Point{X: globeCentre.X + fx*globeRadius, Y: globeCentre.Y + fy*globeRadius}
}

func TestOrientationDragKeepsPointUnderCursor(t *testing.T) {
	c, proj, rec, tip := newOrientation(OrientationOptions{})
	start := onGlobe(-0.3, 0.1)
	grabbed := proj.Unproject(start)

	c.PointerDown(1, start)
	if tip.hidden != 1 || c.Phase() != OrientationActive {
		t.Fatalf("hidden=%d phase=%v", tip.hidden, c.Phase())
	}
	end := onGlobe(0.2, -0.25)
	c.PointerMove(1, end)

	if len(rec.updates) != 1 || rec.last().Kind != UpdateRotation {
		t.Fatalf("updates = %+v", rec.updates)
	}
	if got := proj.Project(grabbed); !closeTo(got, end, 1e-6) {
		t.Errorf("grabbed point at %v, want %v", got, end)
	}
	c.PointerUp(1, end)
	if c.Active() {
		t.Error("still active after the last pointer lifted")
	}
	if versor.Equal(proj.Rotation(), versor.Identity(), 1e-9) {
		t.Error("rotation was not retained")
	}
}

func TestOrientationUnitNorm(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	c, proj, _, _ := newOrientation(OrientationOptions{})
	for g := 0; g < 50; g++ {
		n := 1 + rng.IntN(3)
		for id := 0; id < n; id++ {
			c.PointerDown(id, onGlobe(rng.Float64()*1.2-0.6, rng.Float64()*1.2-0.6))
		}
		for step := 0; step < 40; step++ {
			id := rng.IntN(n)
			c.PointerMove(id, onGlobe(rng.Float64()*2.2-1.1, rng.Float64()*2.2-1.1))
			if l := proj.Rotation().Len(); math.Abs(l-1) > 1e-6 {
				t.Fatalf("gesture %d step %d: |q| = %.12f", g, step, l)
			}
		}
		for id := 0; id < n; id++ {
			c.PointerUp(id, r2.Point{})
		}
	}
}

func TestOrientationAntipodeRestartIsTransparent(t *testing.T) {
	from, to := onGlobe(-0.9, 0), onGlobe(0.9, 0)

	stepped, steppedProj, _, _ := newOrientation(OrientationOptions{})
	stepped.PointerDown(1, from)
	const n = 200
	for i := 1; i <= n; i++ {
		f := float64(i) / n
		stepped.PointerMove(1, r2.Point{X: from.X + f*(to.X-from.X), Y: from.Y})
		if i == n/2 && stepped.Session().Reanchors > 0 {
			t.Fatal("re-anchored before crossing the threshold")
		}
	}
	if stepped.Session().Reanchors == 0 {
		t.Fatal("the path never crossed the stability threshold")
	}
	if stepped.Phase() != OrientationReanchored {
		t.Errorf("phase = %v", stepped.Phase())
	}
	stepped.PointerUp(1, to)

	direct, directProj, _, _ := newOrientation(OrientationOptions{Threshold: -1})
	direct.PointerDown(1, from)
	direct.PointerMove(1, to)
	direct.PointerUp(1, to)

	if !versor.Equal(steppedProj.Rotation(), directProj.Rotation(), 1e-9) {
		t.Errorf("stepped %v, direct %v", steppedProj.Rotation(), directProj.Rotation())
	}
}

func TestOrientationTwist(t *testing.T) {
	c, proj, rec, _ := newOrientation(OrientationOptions{})
	q0 := versor.FromRotation(20, -10, 0)
	proj.SetRotation(q0)

	centre := onGlobe(0.1, 0.2)
	at := func(bearingDeg float64) (r2.Point, r2.Point) {
		a := bearingDeg * math.Pi / 180
		d := r2.Point{X: 40 * math.Cos(a), Y: 40 * math.Sin(a)}
		return centre.Sub(d), centre.Add(d)
	}

	p1, p2 := at(30)
	c.PointerDown(1, p1)
	c.PointerDown(2, p2)
	p1, p2 = at(90)
	c.PointerMove(1, p1)
	c.PointerMove(2, p2)

	want := versor.Compose(versor.Twist(60*math.Pi/180), q0)
	if got := rec.last().Rotation; !versor.Equal(got, want, 1e-9) {
		t.Errorf("rotation %v, want %v", got, want)
	}
	if math.Abs(proj.Scale()-globeRadius) > 1e-9 {
		t.Errorf("constant spread changed the scale to %g", proj.Scale())
	}
}

func TestOrientationPinchScale(t *testing.T) {
	c, proj, _, _ := newOrientation(OrientationOptions{})
	c.PointerDown(1, onGlobe(-0.1, 0))
	c.PointerDown(2, onGlobe(0.1, 0))
	c.PointerMove(1, onGlobe(-0.3, 0))
	c.PointerMove(2, onGlobe(0.3, 0))
	if got := proj.Scale(); math.Abs(got-3*globeRadius) > 1e-9 {
		t.Errorf("scale = %g, want %g", got, 3*globeRadius)
	}
}

func TestOrientationSkipsInvalidFrames(t *testing.T) {
	c, proj, rec, _ := newOrientation(OrientationOptions{})
	off := r2.Point{X: 5, Y: 5}
	c.PointerDown(1, off)
	c.PointerMove(1, r2.Point{X: 6, Y: 5})
	if len(rec.updates) != 0 {
		t.Fatal("a gesture off the globe emitted an update")
	}

	// the first frame on the globe anchors, the next one rotates
	c.PointerMove(1, onGlobe(0, 0))
	if len(rec.updates) != 0 {
		t.Fatal("anchoring frame emitted an update")
	}
	c.PointerMove(1, onGlobe(0.2, 0))
	if len(rec.updates) != 1 {
		t.Fatalf("got %d updates after moving on the globe", len(rec.updates))
	}
	before := proj.Rotation()

	// dragging back off the globe keeps the last good rotation
	c.PointerMove(1, off)
	if len(rec.updates) != 1 || !versor.Equal(proj.Rotation(), before, 1e-12) {
		t.Error("invalid frame changed the state")
	}
}

func TestOrientationPointerLiftReanchors(t *testing.T) {
	c, proj, _, _ := newOrientation(OrientationOptions{})
	c.PointerDown(1, onGlobe(-0.2, 0))
	c.PointerDown(2, onGlobe(0.2, 0))
	c.PointerMove(2, onGlobe(0.3, 0.1))
	c.PointerUp(1, r2.Point{})
	if c.Session().PointerCount != 1 {
		t.Fatalf("pointer count = %d", c.Session().PointerCount)
	}

	here := onGlobe(0.3, 0.1)
	grabbed := proj.Unproject(here)
	there := onGlobe(0.1, -0.2)
	c.PointerMove(2, there)
	if got := proj.Project(grabbed); !closeTo(got, there, 1e-6) {
		t.Errorf("after lifting a finger the grabbed point is at %v, want %v", got, there)
	}
}

func TestOrientationAbort(t *testing.T) {
	c, proj, rec, _ := newOrientation(OrientationOptions{})
	c.PointerDown(1, onGlobe(0, 0))
	c.PointerMove(1, onGlobe(0.1, 0))
	n, q := len(rec.updates), proj.Rotation()
	c.Abort()
	c.PointerMove(1, onGlobe(0.5, 0))
	c.PointerUp(1, onGlobe(0.5, 0))
	if len(rec.updates) != n || !versor.Equal(proj.Rotation(), q, 1e-12) {
		t.Error("abort emitted or changed the rotation")
	}
	if c.Active() {
		t.Error("still active after abort")
	}
}

func TestOrientationWheelAndReset(t *testing.T) {
	c, proj, rec, _ := newOrientation(OrientationOptions{})
	for i := 0; i < 20; i++ {
		c.Wheel(globeCentre, -500)
	}
	if got := proj.Scale(); got != 8*globeRadius {
		t.Errorf("scale = %g, want clamp at %g", got, 8*globeRadius)
	}
	c.PointerDown(1, onGlobe(0, 0))
	c.PointerMove(1, onGlobe(0.05, 0.05))
	c.PointerUp(1, onGlobe(0.05, 0.05))

	c.Reset()
	if rec.last().Kind != UpdateReset {
		t.Errorf("reset emitted %v", rec.last().Kind)
	}
	first := proj.State()
	c.Reset()
	second := proj.State()
	if first.Scale != globeRadius || !versor.Equal(*first.Rotation, versor.Identity(), 1e-12) {
		t.Errorf("reset state %+v", first)
	}
	if first.Scale != second.Scale || first.Translate != second.Translate || *first.Rotation != *second.Rotation {
		t.Error("reset is not idempotent")
	}
}

func TestWrapAngle(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	} {
		if got := wrapAngle(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("wrapAngle(%g) = %g, want %g", tc.in, got, tc.want)
		}
	}
}
