// Package projection wraps raw cartographic projections with the scale,
// translate and rotation state that gestures mutate.
package projection

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownProjection is returned by ByName for unregistered names.
var ErrUnknownProjection = errors.New("unknown projection")

// Raw converts between sphere coordinates (radians) and the unit raw plane
// (y up). ok is false when the point is outside the projection's domain.
type Raw interface {
	Forward(lambda, phi float64) (x, y float64, ok bool)
	Inverse(x, y float64) (lambda, phi float64, ok bool)
}

// Outliner is implemented by raws that can describe the boundary of their
// domain as a closed ring in the raw plane.
type Outliner interface {
	Outline() [][2]float64
}

// Azimuthal is implemented by raws that show a single hemisphere and are
// driven by sphere rotation rather than planar pan/zoom.
type Azimuthal interface {
	Azimuthal() bool
}

// ByName returns the raw registered under name.
func ByName(name string) (Raw, error) {
	switch strings.ToLower(name) {
	case "orthographic", "globe":
		return Orthographic{}, nil
	case "equirectangular", "platecarree", "":
		return Equirectangular{}, nil
	case "mercator", "webmercator":
		return Mercator{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, name)
}

// DefaultMode picks the gesture mode for a raw.
func DefaultMode(raw Raw) Mode {
	if a, ok := raw.(Azimuthal); ok && a.Azimuthal() {
		return ModeOrientation
	}
	return ModeAffine
}

// Orthographic shows the hemisphere centred on (0, 0) as seen from
// infinitely far away.
type Orthographic struct{}

func (Orthographic) Forward(lambda, phi float64) (float64, float64, bool) {
	cosPhi := math.Cos(phi)
	if cosPhi*math.Cos(lambda) < -epsilon {
		return math.NaN(), math.NaN(), false
	}
	return cosPhi * math.Sin(lambda), math.Sin(phi), true
}

func (Orthographic) Inverse(x, y float64) (float64, float64, bool) {
	z := math.Hypot(x, y)
	if z > 1+epsilon {
		return math.NaN(), math.NaN(), false
	}
	z = math.Min(z, 1)
	c := math.Asin(z)
	sc, cc := math.Sin(c), math.Cos(c)
	phi := 0.0
	if z != 0 {
		phi = math.Asin(math.Max(-1, math.Min(1, y*sc/z)))
	}
	return math.Atan2(x*sc, z*cc), phi, true
}

// Outline is the horizon circle.
func (Orthographic) Outline() [][2]float64 {
	const n = 128
	ring := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / n
		ring = append(ring, [2]float64{math.Cos(a), math.Sin(a)})
	}
	return ring
}

func (Orthographic) Azimuthal() bool { return true }

// Equirectangular maps longitude and latitude linearly.
type Equirectangular struct{}

func (Equirectangular) Forward(lambda, phi float64) (float64, float64, bool) {
	return lambda, phi, true
}

func (Equirectangular) Inverse(x, y float64) (float64, float64, bool) {
	if math.Abs(x) > math.Pi+epsilon || math.Abs(y) > math.Pi/2+epsilon {
		return math.NaN(), math.NaN(), false
	}
	return x, y, true
}

func (Equirectangular) Outline() [][2]float64 {
	return rectRing(math.Pi, math.Pi/2)
}

// MaxMercatorLatitude is where the square Web-Mercator world ends.
const MaxMercatorLatitude = 85.0511287798066

// Mercator is the spherical (web) Mercator projection.
type Mercator struct{}

func (Mercator) Forward(lambda, phi float64) (float64, float64, bool) {
	if math.Abs(phi) > MaxMercatorLatitude*math.Pi/180+epsilon {
		return math.NaN(), math.NaN(), false
	}
	return lambda, math.Log(math.Tan(math.Pi/4 + phi/2)), true
}

func (Mercator) Inverse(x, y float64) (float64, float64, bool) {
	if math.Abs(x) > math.Pi+epsilon || math.Abs(y) > math.Pi+epsilon {
		return math.NaN(), math.NaN(), false
	}
	return x, 2*math.Atan(math.Exp(y)) - math.Pi/2, true
}

func (Mercator) Outline() [][2]float64 {
	return rectRing(math.Pi, math.Pi)
}

const epsilon = 1e-9

func rectRing(w, h float64) [][2]float64 {
	return [][2]float64{{-w, -h}, {w, -h}, {w, h}, {-w, h}, {-w, -h}}
}
