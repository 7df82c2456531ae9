package engine

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/projection"
)

const (
	defaultScalebarWidth = 100.0
	defaultScalebarUnits = "km"
	defaultScalebarFmt   = "%g %s"

	// northOffset is how far north of the anchor, in degrees, the arrow
	// direction is sampled.
	northOffset = 0.01
)

var unitMetres = map[string]float64{
	"m":  1,
	"km": 1000,
	"mi": 1609.344,
	"nm": 1852,
}

// scalebar measures one screen pixel at the anchor and rounds the longest
// bar that fits MaxWidth down to a 1-2-5 step.
func scalebar(proj *projection.Adapter, p layer.ScalebarParams) ScalebarGeometry {
	units, format := p.Units, p.Format
	if _, ok := unitMetres[units]; !ok {
		units = defaultScalebarUnits
	}
	if format == "" {
		format = defaultScalebarFmt
	}
	maxWidth := p.MaxWidth
	if maxWidth <= 0 {
		maxWidth = defaultScalebarWidth
	}
	ticks := max(1, p.Ticks)

	g := ScalebarGeometry{Units: units, Hidden: true}
	a := proj.Unproject(p.Anchor)
	b := proj.Unproject(p.Anchor.Add(r2.Point{X: 1}))
	if !finitePoint(a) || !finitePoint(b) {
		return g
	}
	mpp := geo.DistanceHaversine(a, b)
	if mpp <= 0 || math.IsNaN(mpp) {
		return g
	}

	unit := unitMetres[units]
	dist := niceFloor(maxWidth * mpp / unit)
	if dist <= 0 {
		return g
	}
	length := dist * unit / mpp

	g.X, g.Y = p.Anchor.X, p.Anchor.Y
	g.Length, g.Distance, g.MetresPerPixel = length, dist, mpp
	g.Hidden = false
	g.Ticks = make([]float64, 0, ticks+1)
	g.Labels = make([]string, 0, ticks+1)
	for i := 0; i <= ticks; i++ {
		f := float64(i) / float64(ticks)
		g.Ticks = append(g.Ticks, f*length)
		g.Labels = append(g.Labels, fmt.Sprintf(format, f*dist, units))
	}
	return g
}

// niceFloor rounds x down to 1, 2 or 5 times a power of ten.
func niceFloor(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	e := math.Pow(10, math.Floor(math.Log10(x)))
	f := x / e
	switch {
	case f >= 5:
		f = 5
	case f >= 2:
		f = 2
	default:
		f = 1
	}
	return f * e
}

// north derives the arrow angle from the screen direction toward a point
// just north of the anchor.
func north(proj *projection.Adapter, p layer.NorthParams) NorthGeometry {
	g := NorthGeometry{X: p.Anchor.X, Y: p.Anchor.Y}
	if p.FixedAngle != nil {
		g.Angle = *p.FixedAngle
		return g
	}

	here := proj.Unproject(p.Anchor)
	if !finitePoint(here) {
		g.Hidden = true
		return g
	}
	toward, flip := orb.Point{here[0], here[1] + northOffset}, 0.0
	if toward[1] > 90 {
		// past the pole: sample south and turn around
		toward, flip = orb.Point{here[0], here[1] - northOffset}, 180
	}
	s := proj.Project(toward)
	if !projection.Visible(s) {
		g.Hidden = true
		return g
	}
	d := s.Sub(p.Anchor)
	if d.Norm() == 0 {
		g.Hidden = true
		return g
	}
	bearing := s1.Angle(math.Atan2(d.X, -d.Y)).Degrees()
	g.Angle = math.Mod(bearing+flip+360, 360)
	return g
}

func finitePoint(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
