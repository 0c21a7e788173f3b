package config

import (
	"log/slog"
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.GridDensity != 4 || cfg.TrackFile != "track.json" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " a.example , ,b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if got := cfg.Origins(); !reflect.DeepEqual(got, []string{"a.example", "b.example"}) {
		t.Errorf("Origins = %v", got)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestLoad_BadInt(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "lots")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric HISTORY_LIMIT")
	}
}
