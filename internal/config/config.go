package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// zero keeps each scene's own extent, or the gesture default
	ScaleExtentMin float64 `envconfig:"SCALE_EXTENT_MIN" default:"0"`
	ScaleExtentMax float64 `envconfig:"SCALE_EXTENT_MAX" default:"0"`

	// AntipodeThreshold overrides the re-anchoring threshold of globe
	// gestures when non-zero.
	AntipodeThreshold float64 `envconfig:"ANTIPODE_THRESHOLD" default:"0"`

	// TileURL is the raster source of the sample tile scene.
	TileURL string `envconfig:"TILE_URL" default:"https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if (c.ScaleExtentMin == 0) != (c.ScaleExtentMax == 0) {
		return fmt.Errorf("SCALE_EXTENT_MIN and SCALE_EXTENT_MAX must be set together")
	}
	if c.ScaleExtentMin < 0 || c.ScaleExtentMax < c.ScaleExtentMin {
		return fmt.Errorf("scale extent [%g, %g] is not a valid range", c.ScaleExtentMin, c.ScaleExtentMax)
	}
	if c.AntipodeThreshold < -1 || c.AntipodeThreshold > 1 {
		return fmt.Errorf("ANTIPODE_THRESHOLD %g outside [-1, 1]", c.AntipodeThreshold)
	}
	return nil
}

// ScaleExtent returns the configured zoom bounds, zero when unset.
func (c *Config) ScaleExtent() [2]float64 {
	return [2]float64{c.ScaleExtentMin, c.ScaleExtentMax}
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LogLevel to a slog level. Unknown names yield info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
