package engine

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb/maptile"

	"github.com/inamate/geoview/internal/layer"
	"github.com/inamate/geoview/internal/projection"
)

const (
	defaultTileSize = 256.0
	maxTileZoom     = 22

	// maxTiles bounds one pass whatever the tile size or zoom delta.
	maxTiles = 4096

	// tileSnap ignores slivers thinner than this fraction of a tile at the
	// viewport edges.
	tileSnap = 1e-9
)

// tiles computes the Web-Mercator tiles covering the viewport from the live
// scale and translate. Columns wrap around the antimeridian, rows are
// clamped to the world. The zoom drops while the cover exceeds about four
// times the tiles that fit the viewport.
func tiles(proj *projection.Adapter, viewport r2.Rect, p layer.TileParams) TileGeometry {
	size := p.TileSize
	if size <= 0 {
		size = defaultTileSize
	}
	size = math.Max(size, layer.MinTileSize)
	g := TileGeometry{Size: size, Tiles: []TilePlacement{}}
	if _, ok := proj.Raw().(projection.Mercator); !ok || proj.Mode() != projection.ModeAffine {
		slog.Debug("tile layer needs an affine mercator scene")
		return g
	}
	if viewport.IsEmpty() || viewport.Size().X <= 0 || viewport.Size().Y <= 0 {
		return g
	}
	delta := p.ZoomDelta
	if math.IsNaN(delta) {
		delta = 0
	}
	delta = math.Max(-layer.MaxZoomDelta, math.Min(layer.MaxZoomDelta, delta))

	k := proj.Scale()
	t := proj.Translate()
	world := 2 * math.Pi * k
	if !(world > 0) || math.IsInf(world, 0) {
		return g
	}
	limit := tileLimit(viewport, size)
	z := int(math.Round(math.Log2(world/size) + delta))
	z = max(0, min(maxTileZoom, z))

	// top-left corner of the square world
	x0, y0 := t.X-math.Pi*k, t.Y-math.Pi*k
	var c0, c1, r0, r1, n int
	var ts float64
	for {
		n = 1 << z
		ts = world / float64(n)
		c0 = int(math.Floor((viewport.X.Lo-x0)/ts + tileSnap))
		c1 = int(math.Ceil((viewport.X.Hi-x0)/ts - tileSnap))
		r0 = max(0, int(math.Floor((viewport.Y.Lo-y0)/ts+tileSnap)))
		r1 = min(n, int(math.Ceil((viewport.Y.Hi-y0)/ts-tileSnap)))
		if z == 0 || (c1-c0)*max(0, r1-r0) <= limit {
			break
		}
		z--
	}
	g.Zoom, g.Size = z, ts
	if rows := r1 - r0; rows > 0 && (c1-c0)*rows > limit {
		// a world smaller than a tile repeated across a wide viewport
		slog.Debug("tile cover truncated", "columns", c1-c0, "rows", rows, "limit", limit)
		c1 = c0 + max(1, limit/rows)
	}

	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			wx := ((col % n) + n) % n
			tile := maptile.New(uint32(wx), uint32(row), maptile.Zoom(z))
			g.Tiles = append(g.Tiles, TilePlacement{
				X:      tile.X,
				Y:      tile.Y,
				Z:      uint32(tile.Z),
				URL:    tileURL(p, tile),
				Screen: Rect{X: x0 + float64(col)*ts, Y: y0 + float64(row)*ts, Width: ts, Height: ts},
				Bound:  tile.Bound(),
			})
		}
	}
	return g
}

// tileLimit is four times the tiles of the given size that fit the
// viewport, at least 4 and at most maxTiles.
func tileLimit(viewport r2.Rect, size float64) int {
	s := viewport.Size()
	fit := 4 * s.X * s.Y / (size * size)
	if math.IsNaN(fit) || fit > maxTiles {
		return maxTiles
	}
	return max(4, int(math.Ceil(fit)))
}

// tileURL expands {z}, {x}, {y} and {s} in the layer's URL template.
func tileURL(p layer.TileParams, t maptile.Tile) string {
	if p.URL == "" {
		return ""
	}
	s := ""
	if len(p.Subdomains) > 0 {
		s = p.Subdomains[int(t.X+t.Y)%len(p.Subdomains)]
	}
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{s}", s,
	)
	return r.Replace(p.URL)
}
