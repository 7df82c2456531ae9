package engine

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/document"
	"github.com/inamate/geoview/internal/gesture"
	"github.com/inamate/geoview/internal/projection"
	"github.com/inamate/geoview/internal/versor"
)

// SceneSetup derives the engine setup of a scene. The viewport is the
// scene's size; a zero base scale fits the world into it.
func SceneSetup(s *document.Scene) (Setup, error) {
	if err := s.Validate(); err != nil {
		return Setup{}, err
	}
	raw, err := projection.ByName(s.Projection)
	if err != nil {
		return Setup{}, fmt.Errorf("%w: %w", document.ErrInvalidScene, err)
	}
	mode := projection.DefaultMode(raw)
	if s.Mode != "" {
		m, ok := projection.ParseMode(s.Mode)
		if !ok {
			return Setup{}, fmt.Errorf("%w: mode %q", document.ErrInvalidScene, s.Mode)
		}
		mode = m
	}

	w, h := float64(s.Width), float64(s.Height)
	setup := Setup{
		Projection:    raw,
		Mode:          mode,
		BaseScale:     s.BaseScale,
		BaseTranslate: r2.Point{X: w / 2, Y: h / 2},
		Extent:        r2.RectFromPoints(r2.Point{}, r2.Point{X: w, Y: h}),
	}
	if setup.BaseScale == 0 {
		setup.BaseScale = fitScale(raw, w, h)
	}
	if t := s.BaseTranslate; t != nil {
		setup.BaseTranslate = r2.Point{X: t[0], Y: t[1]}
	}
	if e := s.ScaleExtent; e != nil {
		setup.ScaleExtent = *e
	}
	if r := s.Rotation; r != nil && mode == projection.ModeOrientation {
		q := versor.FromRotation(r[0], r[1], r[2])
		setup.BaseRotation = &q
	}
	return setup, nil
}

// fitScale sizes the projection's outline to the viewport.
func fitScale(raw projection.Raw, w, h float64) float64 {
	if a, ok := raw.(projection.Azimuthal); ok && a.Azimuthal() {
		return 0.95 * min(w, h) / 2
	}
	// the cylindrical projections here are 2π wide
	return w / (2 * math.Pi)
}

// Options carries process-wide overrides applied to every scene.
type Options struct {
	ScaleExtent [2]float64
	Threshold   float64
}

// NewFromScene creates an engine for a scene document. The options fill in
// a scale extent the scene leaves unset.
func NewFromScene(s *document.Scene, opts Options, renderer Renderer, tooltip gesture.Tooltip) (*Engine, error) {
	setup, err := SceneSetup(s)
	if err != nil {
		return nil, err
	}
	if setup.ScaleExtent == [2]float64{} {
		setup.ScaleExtent = opts.ScaleExtent
	}
	setup.Threshold = opts.Threshold

	layers, err := s.Descriptors()
	if err != nil {
		return nil, err
	}
	return New(setup, layers, renderer, tooltip)
}
