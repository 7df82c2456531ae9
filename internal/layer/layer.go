// Package layer holds the descriptors of the marks drawn in a scene and the
// ordered registry they live in.
package layer

import (
	"github.com/golang/geo/r2"
	"github.com/paulmach/orb/geojson"
)

// Kind tags a layer descriptor.
type Kind string

const (
	KindPath      Kind = "path"
	KindOutline   Kind = "outline"
	KindGraticule Kind = "graticule"
	KindCircle    Kind = "circle"
	KindSpike     Kind = "spike"
	KindText      Kind = "text"
	KindTile      Kind = "tile"
	KindScalebar  Kind = "scalebar"
	KindNorth     Kind = "north"
	KindClipPath  Kind = "clippath"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindPath, KindOutline, KindGraticule, KindCircle, KindSpike,
	KindText, KindTile, KindScalebar, KindNorth, KindClipPath,
}

// Params is the kind-specific part of a descriptor. The set of
// implementations is closed.
type Params interface {
	Kind() Kind
	sealed()
}

// Descriptor is one registered layer.
type Descriptor struct {
	ID     string
	Params Params
}

// Kind returns the tag of the descriptor's params.
func (d Descriptor) Kind() Kind {
	if d.Params == nil {
		return ""
	}
	return d.Params.Kind()
}

// PathParams draws the features as projected outlines.
type PathParams struct {
	Features *geojson.FeatureCollection
}

// OutlineParams draws the boundary of the projection domain.
type OutlineParams struct{}

// ClipPathParams is the projection domain boundary used as a clip region.
type ClipPathParams struct{}

// GraticuleParams draws meridians and parallels. Zero values select a
// 10 degree step and 2.5 degree precision.
type GraticuleParams struct {
	Step      [2]float64 // lon, lat spacing in degrees
	Precision float64    // sampling step along each line, degrees
}

// CircleParams draws one proportional circle per feature.
type CircleParams struct {
	Features *geojson.FeatureCollection
	Value    string   // numeric property mapped to size
	Size     SizeFunc // value -> radius in pixels
}

// SpikeParams draws one proportional spike per feature.
type SpikeParams struct {
	Features *geojson.FeatureCollection
	Value    string
	Size     SizeFunc // value -> height in pixels
	Width    float64  // base width in pixels
	Curved   bool
}

// TextParams places one label per feature.
type TextParams struct {
	Features *geojson.FeatureCollection
	Text     string   // property holding the label
	Offset   r2.Point // pixel offset from the anchor
}

// TileParams positions raster tiles of a Web-Mercator pyramid.
type TileParams struct {
	URL        string // template with {z}, {x}, {y} and optionally {s}
	Subdomains []string
	TileSize   float64
	ZoomDelta  float64
}

// ScalebarParams positions a distance scale.
type ScalebarParams struct {
	Anchor   r2.Point // left end of the bar, screen pixels
	MaxWidth float64  // upper bound of the bar length in pixels
	Units    string   // "km" or "mi"
	Ticks    int      // number of intervals
	Format   string   // fmt verb for labels, e.g. "%g %s"
}

// NorthParams positions a north arrow.
type NorthParams struct {
	Anchor     r2.Point
	FixedAngle *float64 // degrees clockwise from up; nil derives it
}

func (PathParams) Kind() Kind      { return KindPath }
func (OutlineParams) Kind() Kind   { return KindOutline }
func (ClipPathParams) Kind() Kind  { return KindClipPath }
func (GraticuleParams) Kind() Kind { return KindGraticule }
func (CircleParams) Kind() Kind    { return KindCircle }
func (SpikeParams) Kind() Kind     { return KindSpike }
func (TextParams) Kind() Kind      { return KindText }
func (TileParams) Kind() Kind      { return KindTile }
func (ScalebarParams) Kind() Kind  { return KindScalebar }
func (NorthParams) Kind() Kind     { return KindNorth }

func (PathParams) sealed()      {}
func (OutlineParams) sealed()   {}
func (ClipPathParams) sealed()  {}
func (GraticuleParams) sealed() {}
func (CircleParams) sealed()    {}
func (SpikeParams) sealed()     {}
func (TextParams) sealed()      {}
func (TileParams) sealed()      {}
func (ScalebarParams) sealed()  {}
func (NorthParams) sealed()     {}
