package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
	if len(cfg.Cities) != 5 {
		t.Errorf("expected 5 reference cities, got %d", len(cfg.Cities))
	}
	if cfg.DefaultPairCount != 40 || cfg.DefaultRepeats != 3 || cfg.PenaltyRatio != 5.0 {
		t.Errorf("unexpected simulation defaults: %+v", cfg)
	}
}

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Addr != Default().Addr {
		t.Errorf("Addr = %q, expected default", cfg.Addr)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
addr: ":9090"
default_pair_count: 25
simulation_timeout: 90s
cities:
  - "Springfield, USA"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DefaultPairCount != 25 {
		t.Errorf("DefaultPairCount = %d", cfg.DefaultPairCount)
	}
	if cfg.SimulationTimeout.Std() != 90*time.Second {
		t.Errorf("SimulationTimeout = %v", cfg.SimulationTimeout)
	}
	if len(cfg.Cities) != 1 || cfg.Cities[0] != "Springfield, USA" {
		t.Errorf("Cities = %v", cfg.Cities)
	}
	// Untouched fields keep their defaults.
	if cfg.PenaltyRatio != 5.0 {
		t.Errorf("PenaltyRatio = %v, expected default", cfg.PenaltyRatio)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config path")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [not, a, string"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROADSHOCK_ADDR", ":7070")
	t.Setenv("ROADSHOCK_DEFAULT_PAIR_COUNT", "12")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("Addr = %q, env override lost", cfg.Addr)
	}
	if cfg.DefaultPairCount != 12 {
		t.Errorf("DefaultPairCount = %d, env override lost", cfg.DefaultPairCount)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"no cities", func(c *Config) { c.Cities = nil }},
		{"pair count too high", func(c *Config) { c.DefaultPairCount = 1000 }},
		{"zero penalty", func(c *Config) { c.PenaltyRatio = 0 }},
		{"tiny timeout", func(c *Config) { c.SimulationTimeout = Duration(time.Millisecond) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSupportsCity(t *testing.T) {
	cfg := Default()
	if !cfg.SupportsCity("Chicago, Illinois, USA") {
		t.Error("reference city rejected")
	}
	if cfg.SupportsCity("Atlantis") {
		t.Error("unknown city accepted")
	}
}
