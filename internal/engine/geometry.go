package engine

import (
	"math"

	"github.com/paulmach/orb"
)

// Geometry is the renderable result of recomputing one layer. The set of
// implementations is closed.
type Geometry interface {
	GeometryKind() string
	geometry()
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Q", cx, cy, x, y], ["Z"].
type PathCommand []interface{}

// PathGeometry is a projected outline. Subpaths are broken wherever a
// vertex is outside the projection domain.
type PathGeometry struct {
	Path   []PathCommand `json:"path"`
	Clip   bool          `json:"clip,omitempty"` // use as a clip region rather than draw
	Bounds Rect          `json:"bounds"`
}

// Mark is one feature of a circle, spike or text layer. Hidden marks carry
// a zero position.
type Mark struct {
	Feature int           `json:"feature"` // index into the layer's feature collection
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Hidden  bool          `json:"hidden,omitempty"`
	Value   float64       `json:"value,omitempty"`
	Radius  float64       `json:"radius,omitempty"` // circles
	Path    []PathCommand `json:"path,omitempty"`   // spikes
	Label   string        `json:"label,omitempty"`  // text
}

// MarkGeometry holds the marks of a point-symbol layer in drawing order.
type MarkGeometry struct {
	Kind  string `json:"kind"`
	Marks []Mark `json:"marks"`
}

// Visible returns the number of marks that are drawn.
func (g MarkGeometry) Visible() int {
	n := 0
	for _, m := range g.Marks {
		if !m.Hidden {
			n++
		}
	}
	return n
}

// TilePlacement positions one tile image on screen.
type TilePlacement struct {
	X      uint32    `json:"x"`
	Y      uint32    `json:"y"`
	Z      uint32    `json:"z"`
	URL    string    `json:"url"`
	Screen Rect      `json:"screen"`
	Bound  orb.Bound `json:"bound"`
}

// TileGeometry is the set of tiles covering the viewport.
type TileGeometry struct {
	Zoom  int             `json:"zoom"`
	Size  float64         `json:"size"` // rendered tile edge in pixels
	Tiles []TilePlacement `json:"tiles"`
}

// ScalebarGeometry is a distance scale anchored at its left end.
type ScalebarGeometry struct {
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Length         float64   `json:"length"`   // pixels
	Distance       float64   `json:"distance"` // in Units
	Units          string    `json:"units"`
	MetresPerPixel float64   `json:"metresPerPixel"`
	Ticks          []float64 `json:"ticks"` // pixel offsets from the anchor
	Labels         []string  `json:"labels"`
	Hidden         bool      `json:"hidden,omitempty"`
}

// NorthGeometry is a north arrow.
type NorthGeometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"` // degrees clockwise from screen up
	Hidden bool    `json:"hidden,omitempty"`
}

func (PathGeometry) GeometryKind() string     { return "path" }
func (MarkGeometry) GeometryKind() string     { return "marks" }
func (TileGeometry) GeometryKind() string     { return "tiles" }
func (ScalebarGeometry) GeometryKind() string { return "scalebar" }
func (NorthGeometry) GeometryKind() string    { return "north" }

func (PathGeometry) geometry()     {}
func (MarkGeometry) geometry()     {}
func (TileGeometry) geometry()     {}
func (ScalebarGeometry) geometry() {}
func (NorthGeometry) geometry()    {}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// computePathBounds computes the axis-aligned bounding box of a path.
func computePathBounds(path []PathCommand) Rect {
	var minX, minY, maxX, maxY float64
	first := true
	add := func(x, y float64) {
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			return
		}
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		op, ok := cmd[0].(string)
		if !ok {
			continue
		}
		switch op {
		case "M", "L":
			if len(cmd) >= 3 {
				add(toFloat64(cmd[1]), toFloat64(cmd[2]))
			}
		case "Q":
			// control point and endpoint
			if len(cmd) >= 5 {
				add(toFloat64(cmd[1]), toFloat64(cmd[2]))
				add(toFloat64(cmd[3]), toFloat64(cmd[4]))
			}
		}
	}

	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// toFloat64 converts an interface{} to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
