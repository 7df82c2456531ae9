package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.ScaleExtent() != [2]float64{} || cfg.AntipodeThreshold != 0 {
		t.Errorf("defaults: %+v", cfg)
	}
	if got := cfg.Origins(); len(got) != 2 || got[0] != "http://localhost:5173" {
		t.Errorf("origins = %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCALE_EXTENT_MIN", "0.5")
	t.Setenv("SCALE_EXTENT_MAX", "16")
	t.Setenv("ANTIPODE_THRESHOLD", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 || cfg.Level() != slog.LevelDebug {
		t.Errorf("port=%d level=%v", cfg.Port, cfg.Level())
	}
	if cfg.ScaleExtent() != [2]float64{0.5, 16} || cfg.AntipodeThreshold != -1 {
		t.Errorf("extent=%v threshold=%g", cfg.ScaleExtent(), cfg.AntipodeThreshold)
	}
}

func TestLoadRejects(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"half extent":  {"SCALE_EXTENT_MIN": "1"},
		"inverted":     {"SCALE_EXTENT_MIN": "4", "SCALE_EXTENT_MAX": "2"},
		"threshold":    {"ANTIPODE_THRESHOLD": "2"},
		"not a number": {"PORT": "http"},
	} {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLevelFallback(t *testing.T) {
	c := &Config{LogLevel: "loud"}
	if c.Level() != slog.LevelInfo {
		t.Errorf("level = %v", c.Level())
	}
}
