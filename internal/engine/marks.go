package engine

import (
	"slices"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/projection"
)

const (
	defaultRadius     = 4.5
	defaultMaxRadius  = 20.0
	defaultSpikeWidth = 7.0
	defaultMaxSpike   = 100.0
)

// anchors projects the planar centroid of every feature. The callback
// fills in the kind-specific fields of each visible mark.
func anchors(proj *projection.Adapter, fc *geojson.FeatureCollection, fill func(f *geojson.Feature, m *Mark)) []Mark {
	if fc == nil {
		return []Mark{}
	}
	marks := make([]Mark, 0, len(fc.Features))
	for i, f := range fc.Features {
		m := Mark{Feature: i, Hidden: true}
		if f != nil && f.Geometry != nil {
			c, _ := planar.CentroidArea(f.Geometry)
			s := proj.Project(c)
			if projection.Visible(s) {
				m.X, m.Y, m.Hidden = s.X, s.Y, false
				fill(f, &m)
			}
		}
		marks = append(marks, m)
	}
	return marks
}

func circles(proj *projection.Adapter, p layer.CircleParams) MarkGeometry {
	size := p.Size
	if size == nil && p.Value != "" {
		size = layer.SqrtSize(layer.MaxValue(p.Features, p.Value), defaultMaxRadius)
	}
	marks := anchors(proj, p.Features, func(f *geojson.Feature, m *Mark) {
		if size == nil {
			m.Radius = defaultRadius
			return
		}
		m.Value = f.Properties.MustFloat64(p.Value, 0)
		m.Radius = size(m.Value)
	})
	// largest first so small symbols stay on top
	slices.SortStableFunc(marks, func(a, b Mark) int {
		switch {
		case a.Radius > b.Radius:
			return -1
		case a.Radius < b.Radius:
			return 1
		}
		return 0
	})
	return MarkGeometry{Kind: string(layer.KindCircle), Marks: marks}
}

func spikes(proj *projection.Adapter, p layer.SpikeParams) MarkGeometry {
	size := p.Size
	if size == nil {
		size = layer.LinearSize(layer.MaxValue(p.Features, p.Value), defaultMaxSpike)
	}
	w := p.Width
	if w <= 0 {
		w = defaultSpikeWidth
	}
	marks := anchors(proj, p.Features, func(f *geojson.Feature, m *Mark) {
		m.Value = f.Properties.MustFloat64(p.Value, 0)
		m.Path = spikePath(m.X, m.Y, w, size(m.Value), p.Curved)
	})
	return MarkGeometry{Kind: string(layer.KindSpike), Marks: marks}
}

// spikePath draws a spike of height h standing on (x, y).
func spikePath(x, y, w, h float64, curved bool) []PathCommand {
	if curved {
		return []PathCommand{
			{"M", x - w/2, y},
			{"Q", x, y, x, y - h},
			{"Q", x, y, x + w/2, y},
		}
	}
	return []PathCommand{
		{"M", x - w/2, y},
		{"L", x, y - h},
		{"L", x + w/2, y},
	}
}

func labels(proj *projection.Adapter, p layer.TextParams) MarkGeometry {
	marks := anchors(proj, p.Features, func(f *geojson.Feature, m *Mark) {
		m.X += p.Offset.X
		m.Y += p.Offset.Y
		m.Label = f.Properties.MustString(p.Text, "")
	})
	return MarkGeometry{Kind: string(layer.KindText), Marks: marks}
}
