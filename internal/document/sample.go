package document

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/typeid"
)

type city struct {
	name     string
	lon, lat float64
	pop      float64
}

var sampleCities = []city{
	{"Tokyo", 139.69, 35.69, 37.4e6},
	{"Delhi", 77.10, 28.70, 31.0e6},
	{"Shanghai", 121.47, 31.23, 27.1e6},
	{"São Paulo", -46.63, -23.55, 22.0e6},
	{"Mexico City", -99.13, 19.43, 21.8e6},
	{"Cairo", 31.24, 30.04, 21.3e6},
	{"New York", -74.01, 40.71, 18.8e6},
	{"Lagos", 3.38, 6.52, 14.4e6},
	{"London", -0.13, 51.51, 9.5e6},
	{"Sydney", 151.21, -33.87, 5.3e6},
}

// SampleCities returns the sample city points with "name" and "population"
// properties.
func SampleCities() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range sampleCities {
		f := geojson.NewFeature(orb.Point{c.lon, c.lat})
		f.Properties["name"] = c.name
		f.Properties["population"] = c.pop
		fc.Append(f)
	}
	return fc
}

// sampleRoutes returns a few great-circle-ish flight paths and a box
// straddling the antimeridian.
func sampleRoutes() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{-0.13, 51.51}, {-74.01, 40.71}}))
	fc.Append(geojson.NewFeature(orb.LineString{{139.69, 35.69}, {-122.42, 37.77}}))
	fc.Append(geojson.NewFeature(orb.LineString{{151.21, -33.87}, {77.10, 28.70}}))
	fc.Append(geojson.NewFeature(orb.Polygon{{{170, -20}, {-170, -20}, {-170, -10}, {170, -10}, {170, -20}}}))
	return fc
}

// NewSampleScene returns a world globe with every overlay kind that works
// on a sphere. An empty id generates one.
func NewSampleScene(id string) *Scene {
	if id == "" {
		id = typeid.NewSceneID()
	}
	cities := SampleCities()
	return &Scene{
		ID:         id,
		Name:       "World",
		Width:      800,
		Height:     600,
		Background: "#1a1a2e",
		Projection: "orthographic",
		Mode:       "orientation",
		BaseScale:  280,
		Rotation:   &[3]float64{-10, -30, 0},
		Layers: []Layer{
			mustLayer("sphere", layer.KindOutline, nil),
			mustLayer("clip", layer.KindClipPath, nil),
			mustLayer("graticule", layer.KindGraticule, GraticuleData{Step: [2]float64{15, 15}}),
			mustLayer("routes", layer.KindPath, PathData{Features: sampleRoutes()}),
			mustLayer("population", layer.KindCircle, CircleData{Features: cities, Value: "population", MaxSize: 24}),
			mustLayer("names", layer.KindText, TextData{Features: cities, Text: "name", Offset: [2]float64{0, -12}}),
			mustLayer("scale", layer.KindScalebar, ScalebarData{Anchor: [2]float64{24, 570}, MaxWidth: 120}),
			mustLayer("north", layer.KindNorth, NorthData{Anchor: [2]float64{760, 40}}),
		},
	}
}

// NewSampleTileScene returns a flat Web-Mercator map with a raster base.
func NewSampleTileScene(id, tileURL string) *Scene {
	if id == "" {
		id = typeid.NewSceneID()
	}
	cities := SampleCities()
	return &Scene{
		ID:         id,
		Name:       "Tiles",
		Width:      800,
		Height:     600,
		Background: "#ffffff",
		Projection: "mercator",
		Mode:       "affine",
		Layers: []Layer{
			mustLayer("base", layer.KindTile, TileData{URL: tileURL, Subdomains: []string{"a", "b", "c"}}),
			mustLayer("population", layer.KindSpike, SpikeData{Features: cities, Value: "population", Curved: true}),
			mustLayer("names", layer.KindText, TextData{Features: cities, Text: "name", Offset: [2]float64{0, 14}}),
			mustLayer("scale", layer.KindScalebar, ScalebarData{Anchor: [2]float64{24, 570}, Units: "mi"}),
			mustLayer("north", layer.KindNorth, NorthData{Anchor: [2]float64{760, 40}}),
		},
	}
}

func mustLayer(id string, kind layer.Kind, data any) Layer {
	l, err := NewLayer(id, kind, data)
	if err != nil {
		panic(err)
	}
	return l
}
