package document

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/inamate/geoview/internal/layer"
)

const sceneJSON = `{
	"id": "scene_1",
	"name": "Test",
	"width": 600,
	"height": 300,
	"projection": "equirectangular",
	"layers": [
		{"id": "grid", "kind": "graticule", "data": {"step": [20, 10]}},
		{"id": "sphere", "kind": "outline"},
		{"id": "pop", "kind": "circle", "data": {
			"value": "v",
			"maxSize": 10,
			"features": {"type": "FeatureCollection", "features": [
				{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"v": 4}},
				{"type": "Feature", "geometry": {"type": "Point", "coordinates": [10, 0]}, "properties": {"v": 16}}
			]}
		}},
		{"id": "north", "kind": "north", "data": {"anchor": [550, 40], "fixedAngle": 45}}
	]
}`

func TestParseDescriptors(t *testing.T) {
	s, err := Parse([]byte(sceneJSON))
	if err != nil {
		t.Fatal(err)
	}
	ds, err := s.Descriptors()
	if err != nil {
		t.Fatal(err)
	}
	want := []layer.Kind{layer.KindGraticule, layer.KindOutline, layer.KindCircle, layer.KindNorth}
	if len(ds) != len(want) {
		t.Fatalf("got %d descriptors", len(ds))
	}
	for i, d := range ds {
		if d.Kind() != want[i] {
			t.Errorf("descriptor %d: kind %q, want %q", i, d.Kind(), want[i])
		}
	}

	g := ds[0].Params.(layer.GraticuleParams)
	if g.Step != [2]float64{20, 10} {
		t.Errorf("step = %v", g.Step)
	}

	c := ds[2].Params.(layer.CircleParams)
	if len(c.Features.Features) != 2 || c.Size == nil {
		t.Fatalf("circle params %+v", c)
	}
	// sqrt scale over [0, 16] to [0, 10]
	if r := c.Size(4); math.Abs(r-5) > 1e-12 {
		t.Errorf("size(4) = %g, want 5", r)
	}

	n := ds[3].Params.(layer.NorthParams)
	if n.FixedAngle == nil || *n.FixedAngle != 45 || n.Anchor.X != 550 {
		t.Errorf("north params %+v", n)
	}
}

func TestSpikeDefaultsToLinear(t *testing.T) {
	l := mustLayer("s", layer.KindSpike, SpikeData{Features: SampleCities(), Value: "population"})
	d, err := l.Descriptor()
	if err != nil {
		t.Fatal(err)
	}
	p := d.Params.(layer.SpikeParams)
	m := layer.MaxValue(p.Features, "population")
	if h := p.Size(m / 2); math.Abs(h-defaultMaxSpike/2) > 1e-9 {
		t.Errorf("size(max/2) = %g, want %g", h, defaultMaxSpike/2)
	}
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"bad json":     `{"width": `,
		"no size":      `{"width": 0, "height": 10}`,
		"bad extent":   `{"width": 10, "height": 10, "scaleExtent": [4, 2]}`,
		"empty id":     `{"width": 10, "height": 10, "layers": [{"kind": "outline"}]}`,
		"duplicate id": `{"width": 10, "height": 10, "layers": [{"id": "a", "kind": "outline"}, {"id": "a", "kind": "north"}]}`,
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalidScene) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestUnknownKind(t *testing.T) {
	s := &Scene{Width: 10, Height: 10, Layers: []Layer{{ID: "x", Kind: "heatmap"}}}
	_, err := s.Descriptors()
	if !errors.Is(err, ErrUnknownKind) || !errors.Is(err, ErrInvalidScene) {
		t.Errorf("err = %v", err)
	}

	s.Layers[0] = Layer{ID: "x", Kind: layer.KindPath, Data: json.RawMessage(`{"features": 3}`)}
	if _, err := s.Descriptors(); !errors.Is(err, ErrInvalidScene) {
		t.Errorf("bad data: err = %v", err)
	}
}

func TestSampleScenes(t *testing.T) {
	for _, s := range []*Scene{NewSampleScene(""), NewSampleTileScene("tiles", "https://{s}.tile.example/{z}/{x}/{y}.png")} {
		if s.ID == "" {
			t.Error("sample scene has no id")
		}
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Parse(data)
		if err != nil {
			t.Fatalf("%s: %v", s.Name, err)
		}
		ds, err := back.Descriptors()
		if err != nil {
			t.Fatalf("%s: %v", s.Name, err)
		}
		if len(ds) != len(s.Layers) {
			t.Errorf("%s: %d descriptors for %d layers", s.Name, len(ds), len(s.Layers))
		}
	}
}

func TestDescriptorLimits(t *testing.T) {
	for name, data := range map[string]string{
		"graticule precision": `{"precision": 0.001}`,
		"graticule step":      `{"step": [0.01, 0.01]}`,
	} {
		l := Layer{ID: "g", Kind: layer.KindGraticule, Data: json.RawMessage(data)}
		if _, err := l.Descriptor(); !errors.Is(err, ErrInvalidScene) || !errors.Is(err, layer.ErrOutOfRange) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
	l := Layer{ID: "t", Kind: layer.KindTile, Data: json.RawMessage(`{"url": "x", "tileSize": 0.5}`)}
	if _, err := l.Descriptor(); !errors.Is(err, layer.ErrOutOfRange) {
		t.Errorf("tile size: err = %v", err)
	}
}
