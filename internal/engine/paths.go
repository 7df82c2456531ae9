package engine

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/projection"
)

const (
	// defaultPrecision is the longest segment, in degrees, projected
	// without interpolation.
	defaultPrecision = 2.5

	defaultGraticuleStep = 10.0

	// maxGraticuleVertices bounds the samples of one graticule; finer
	// steps coarsen the precision to fit.
	maxGraticuleVertices = 200000
)

// pathBuilder projects geographic lines into Canvas2D path commands.
type pathBuilder struct {
	proj      *projection.Adapter
	precision float64

	// seam breaks segments that wrap across the antimeridian. Only
	// meaningful when the sphere is not rotated.
	seam bool

	cmds []PathCommand
}

func newPathBuilder(proj *projection.Adapter, precision float64) *pathBuilder {
	if !(precision > 0) {
		precision = defaultPrecision
	}
	precision = math.Max(precision, layer.MinPrecision)
	return &pathBuilder{
		proj:      proj,
		precision: precision,
		seam:      proj.Mode() == projection.ModeAffine,
		cmds:      []PathCommand{},
	}
}

func (b *pathBuilder) result(clip bool) PathGeometry {
	return PathGeometry{Path: b.cmds, Clip: clip, Bounds: computePathBounds(b.cmds)}
}

// features adds every line and polygon of fc. Point geometries have no
// outline and are skipped.
func (b *pathBuilder) features(fc *geojson.FeatureCollection) {
	if fc == nil {
		return
	}
	for _, f := range fc.Features {
		if f != nil && f.Geometry != nil {
			b.geometry(f.Geometry)
		}
	}
}

func (b *pathBuilder) geometry(g orb.Geometry) {
	switch g := g.(type) {
	case orb.LineString:
		b.line(g, false)
	case orb.MultiLineString:
		for _, ls := range g {
			b.line(ls, false)
		}
	case orb.Ring:
		b.line(g, true)
	case orb.Polygon:
		for _, r := range g {
			b.line(r, true)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			b.geometry(p)
		}
	case orb.Collection:
		for _, c := range g {
			b.geometry(c)
		}
	case orb.Bound:
		b.geometry(g.ToPolygon())
	}
}

// line appends one polyline. A closed ring gets a Z only when none of its
// vertices was hidden.
func (b *pathBuilder) line(pts []orb.Point, closed bool) {
	down, broken := false, false
	for i, p := range pts {
		if i > 0 {
			prev := pts[i-1]
			if b.seam && math.Abs(p[0]-prev[0]) > 180 {
				down, broken = false, true
			} else {
				for _, q := range interpolate(prev, p, b.precision) {
					down, broken = b.vertex(q, down, broken)
				}
			}
		}
		down, broken = b.vertex(p, down, broken)
	}
	if closed && down && !broken {
		b.cmds = append(b.cmds, PathCommand{"Z"})
	}
}

func (b *pathBuilder) vertex(p orb.Point, down, broken bool) (bool, bool) {
	s := b.proj.Project(p)
	if !projection.Visible(s) {
		return false, true
	}
	op := "L"
	if !down {
		op = "M"
	}
	b.cmds = append(b.cmds, PathCommand{op, s.X, s.Y})
	return true, broken
}

// ring appends a closed screen-space ring.
func (b *pathBuilder) ring(pts []r2.Point) {
	if len(pts) == 0 {
		return
	}
	for i, p := range pts {
		op := "L"
		if i == 0 {
			op = "M"
		}
		b.cmds = append(b.cmds, PathCommand{op, p.X, p.Y})
	}
	b.cmds = append(b.cmds, PathCommand{"Z"})
}

// maxInterpolated caps the points inserted into one segment; a full turn
// at the finest precision.
const maxInterpolated = 360/layer.MinPrecision + 1

// interpolate returns the points strictly between a and b spaced at most
// step degrees apart, up to maxInterpolated of them.
func interpolate(a, b orb.Point, step float64) []orb.Point {
	d := math.Max(math.Abs(b[0]-a[0]), math.Abs(b[1]-a[1]))
	if !(d > 0) || math.IsInf(d, 0) || !(step > 0) {
		return nil
	}
	n := int(math.Min(math.Ceil(d/step), maxInterpolated))
	if n < 2 {
		return nil
	}
	out := make([]orb.Point, 0, n-1)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		out = append(out, orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t})
	}
	return out
}

// graticule returns the meridians and parallels of a graticule. Lines are
// sampled every precision degrees so no segment wraps.
func graticule(p graticuleSpec) orb.MultiLineString {
	var lines orb.MultiLineString
	for lon := -180.0; lon <= 180+1e-9; lon += p.lonStep {
		var ls orb.LineString
		for lat := -90.0; lat < 90; lat += p.precision {
			ls = append(ls, orb.Point{lon, lat})
		}
		ls = append(ls, orb.Point{lon, 90})
		lines = append(lines, ls)
	}
	for lat := -90 + p.latStep; lat < 90-1e-9; lat += p.latStep {
		var ls orb.LineString
		for lon := -180.0; lon < 180; lon += p.precision {
			ls = append(ls, orb.Point{lon, lat})
		}
		ls = append(ls, orb.Point{180, lat})
		lines = append(lines, ls)
	}
	return lines
}

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

type graticuleSpec struct {
	lonStep, latStep, precision float64
}

func newGraticuleSpec(step [2]float64, precision float64) graticuleSpec {
	s := graticuleSpec{lonStep: step[0], latStep: step[1], precision: precision}
	if !(s.lonStep > 0) {
		s.lonStep = defaultGraticuleStep
	}
	if !(s.latStep > 0) {
		s.latStep = defaultGraticuleStep
	}
	if !(s.precision > 0) {
		s.precision = defaultPrecision
	}
	s.lonStep = math.Max(s.lonStep, layer.MinGraticuleStep)
	s.latStep = math.Max(s.latStep, layer.MinGraticuleStep)
	s.precision = math.Max(s.precision, layer.MinPrecision)
	// meridians span 180°, parallels 360°
	if v := 64800 * (1/s.lonStep + 1/s.latStep) / s.precision; v > maxGraticuleVertices {
		s.precision *= v / maxGraticuleVertices
	}
	return s
}
