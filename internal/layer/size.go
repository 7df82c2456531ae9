package layer

import (
	"math"

	"github.com/paulmach/orb/geojson"
)

// SizeFunc maps a feature value to a pixel size.
type SizeFunc func(v float64) float64

// SqrtSize scales area with the value: a value of domainMax gets radius
// rangeMax.
func SqrtSize(domainMax, rangeMax float64) SizeFunc {
	if domainMax <= 0 {
		return func(float64) float64 { return 0 }
	}
	return func(v float64) float64 {
		if v <= 0 || math.IsNaN(v) {
			return 0
		}
		return math.Sqrt(v/domainMax) * rangeMax
	}
}

// LinearSize scales length with the value.
func LinearSize(domainMax, rangeMax float64) SizeFunc {
	if domainMax <= 0 {
		return func(float64) float64 { return 0 }
	}
	return func(v float64) float64 {
		if v <= 0 || math.IsNaN(v) {
			return 0
		}
		return v / domainMax * rangeMax
	}
}

// MaxValue returns the largest finite value of property key, or 0.
func MaxValue(fc *geojson.FeatureCollection, key string) float64 {
	if fc == nil {
		return 0
	}
	m := 0.0
	for _, f := range fc.Features {
		v := f.Properties.MustFloat64(key, 0)
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > m {
			m = v
		}
	}
	return m
}
