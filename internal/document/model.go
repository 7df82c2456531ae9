// Package document is the JSON description of a map scene: its size, its
// projection and the layers drawn on it.
package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb/geojson"

	"github.com/inamate/geoview/internal/layer"
)

var (
	// ErrInvalidScene wraps every validation failure of a scene.
	ErrInvalidScene = errors.New("invalid scene")
	// ErrUnknownKind indicates a layer kind outside layer.Kinds.
	ErrUnknownKind = errors.New("unknown layer kind")
)

type Scene struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`

	// Projection names a raw projection, see projection.ByName.
	Projection string `json:"projection"`
	// Mode is "affine" or "orientation". Empty derives it from the
	// projection.
	Mode string `json:"mode,omitempty"`

	// BaseScale zero fits the world to the scene size.
	BaseScale float64 `json:"baseScale,omitempty"`
	// BaseTranslate nil centres the projection.
	BaseTranslate *[2]float64 `json:"baseTranslate,omitempty"`
	// Rotation is the initial [lambda, phi, gamma] in degrees of an
	// orientation scene.
	Rotation    *[3]float64 `json:"rotation,omitempty"`
	ScaleExtent *[2]float64 `json:"scaleExtent,omitempty"`

	Layers []Layer `json:"layers"`
}

// Layer is one mark. Data holds the kind-specific fields.
type Layer struct {
	ID   string          `json:"id"`
	Kind layer.Kind      `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Kind-specific layer data.

type PathData struct {
	Features *geojson.FeatureCollection `json:"features"`
}

type GraticuleData struct {
	Step      [2]float64 `json:"step,omitempty"`
	Precision float64    `json:"precision,omitempty"`
}

type CircleData struct {
	Features  *geojson.FeatureCollection `json:"features"`
	Value     string                     `json:"value,omitempty"`
	SizeScale string                     `json:"sizeScale,omitempty"` // "sqrt" (default) or "linear"
	MaxSize   float64                    `json:"maxSize,omitempty"`
}

type SpikeData struct {
	Features  *geojson.FeatureCollection `json:"features"`
	Value     string                     `json:"value,omitempty"`
	SizeScale string                     `json:"sizeScale,omitempty"` // "linear" (default) or "sqrt"
	MaxSize   float64                    `json:"maxSize,omitempty"`
	Width     float64                    `json:"width,omitempty"`
	Curved    bool                       `json:"curved,omitempty"`
}

type TextData struct {
	Features *geojson.FeatureCollection `json:"features"`
	Text     string                     `json:"text"`
	Offset   [2]float64                 `json:"offset,omitempty"`
}

type TileData struct {
	URL        string   `json:"url"`
	Subdomains []string `json:"subdomains,omitempty"`
	TileSize   float64  `json:"tileSize,omitempty"`
	ZoomDelta  float64  `json:"zoomDelta,omitempty"`
}

type ScalebarData struct {
	Anchor   [2]float64 `json:"anchor"`
	MaxWidth float64    `json:"maxWidth,omitempty"`
	Units    string     `json:"units,omitempty"`
	Ticks    int        `json:"ticks,omitempty"`
	Format   string     `json:"format,omitempty"`
}

type NorthData struct {
	Anchor     [2]float64 `json:"anchor"`
	FixedAngle *float64   `json:"fixedAngle,omitempty"`
}

const (
	defaultMaxRadius = 20.0
	defaultMaxSpike  = 100.0
)

// Parse decodes and validates a scene.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scene size and layer ids.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidScene, s.Width, s.Height)
	}
	if s.BaseScale < 0 {
		return fmt.Errorf("%w: base scale %g", ErrInvalidScene, s.BaseScale)
	}
	if e := s.ScaleExtent; e != nil && (e[0] <= 0 || e[1] < e[0]) {
		return fmt.Errorf("%w: scale extent %v", ErrInvalidScene, *e)
	}
	seen := make(map[string]bool, len(s.Layers))
	for i, l := range s.Layers {
		if l.ID == "" {
			return fmt.Errorf("%w: layer %d has no id", ErrInvalidScene, i)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate layer id %q", ErrInvalidScene, l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

// Descriptors decodes the layers in order.
func (s *Scene) Descriptors() ([]layer.Descriptor, error) {
	out := make([]layer.Descriptor, 0, len(s.Layers))
	for _, l := range s.Layers {
		d, err := l.Descriptor()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Descriptor decodes one layer.
func (l Layer) Descriptor() (layer.Descriptor, error) {
	p, err := l.params()
	if err != nil {
		return layer.Descriptor{}, fmt.Errorf("%w: layer %q: %w", ErrInvalidScene, l.ID, err)
	}
	d := layer.Descriptor{ID: l.ID, Params: p}
	if err := d.Validate(); err != nil {
		return layer.Descriptor{}, fmt.Errorf("%w: layer %q: %w", ErrInvalidScene, l.ID, err)
	}
	return d, nil
}

func (l Layer) params() (layer.Params, error) {
	switch l.Kind {
	case layer.KindOutline:
		return layer.OutlineParams{}, nil
	case layer.KindClipPath:
		return layer.ClipPathParams{}, nil
	case layer.KindPath:
		var d PathData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.PathParams{Features: d.Features}, nil
	case layer.KindGraticule:
		var d GraticuleData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.GraticuleParams{Step: d.Step, Precision: d.Precision}, nil
	case layer.KindCircle:
		var d CircleData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		p := layer.CircleParams{Features: d.Features, Value: d.Value}
		if d.Value != "" {
			p.Size = sizeFunc(d.SizeScale, "sqrt", layer.MaxValue(d.Features, d.Value), d.MaxSize, defaultMaxRadius)
		}
		return p, nil
	case layer.KindSpike:
		var d SpikeData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.SpikeParams{
			Features: d.Features,
			Value:    d.Value,
			Size:     sizeFunc(d.SizeScale, "linear", layer.MaxValue(d.Features, d.Value), d.MaxSize, defaultMaxSpike),
			Width:    d.Width,
			Curved:   d.Curved,
		}, nil
	case layer.KindText:
		var d TextData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.TextParams{Features: d.Features, Text: d.Text, Offset: point(d.Offset)}, nil
	case layer.KindTile:
		var d TileData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.TileParams{URL: d.URL, Subdomains: d.Subdomains, TileSize: d.TileSize, ZoomDelta: d.ZoomDelta}, nil
	case layer.KindScalebar:
		var d ScalebarData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.ScalebarParams{
			Anchor:   point(d.Anchor),
			MaxWidth: d.MaxWidth,
			Units:    d.Units,
			Ticks:    d.Ticks,
			Format:   d.Format,
		}, nil
	case layer.KindNorth:
		var d NorthData
		if err := l.decode(&d); err != nil {
			return nil, err
		}
		return layer.NorthParams{Anchor: point(d.Anchor), FixedAngle: d.FixedAngle}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, l.Kind)
}

func (l Layer) decode(v any) error {
	if len(l.Data) == 0 {
		return nil
	}
	return json.Unmarshal(l.Data, v)
}

func sizeFunc(scale, fallback string, domainMax, maxSize, defaultMax float64) layer.SizeFunc {
	if maxSize <= 0 {
		maxSize = defaultMax
	}
	if scale == "" {
		scale = fallback
	}
	if scale == "linear" {
		return layer.LinearSize(domainMax, maxSize)
	}
	return layer.SqrtSize(domainMax, maxSize)
}

func point(p [2]float64) r2.Point {
	return r2.Point{X: p[0], Y: p[1]}
}

// NewLayer encodes data as the payload of a layer.
func NewLayer(id string, kind layer.Kind, data any) (Layer, error) {
	l := Layer{ID: id, Kind: kind}
	if data == nil {
		return l, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Layer{}, err
	}
	l.Data = raw
	return l, nil
}
