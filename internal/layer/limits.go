package layer

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange indicates a layer parameter outside the range the engine
// accepts. Zero values are always accepted and select the defaults.
var ErrOutOfRange = errors.New("layer parameter out of range")

const (
	// MinGraticuleStep is the finest line spacing, degrees.
	MinGraticuleStep = 0.1
	// MinPrecision is the finest sampling step along a line, degrees.
	MinPrecision = 0.1
	// MinTileSize is the smallest tile edge, pixels.
	MinTileSize = 16.0
	// MaxZoomDelta bounds the tile zoom offset either way.
	MaxZoomDelta = 4.0
)

// Validate checks the numeric params of d against the engine limits.
func (d Descriptor) Validate() error {
	switch p := d.Params.(type) {
	case GraticuleParams:
		for _, s := range p.Step {
			if err := atLeast("step", s, MinGraticuleStep); err != nil {
				return err
			}
		}
		return atLeast("precision", p.Precision, MinPrecision)
	case TileParams:
		if err := atLeast("tileSize", p.TileSize, MinTileSize); err != nil {
			return err
		}
		if math.IsNaN(p.ZoomDelta) || math.Abs(p.ZoomDelta) > MaxZoomDelta {
			return fmt.Errorf("%w: zoomDelta %g outside ±%g", ErrOutOfRange, p.ZoomDelta, MaxZoomDelta)
		}
	}
	return nil
}

func atLeast(name string, v, lo float64) error {
	if v == 0 {
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo {
		return fmt.Errorf("%w: %s %g below %g", ErrOutOfRange, name, v, lo)
	}
	return nil
}
