// Package config loads the service configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/urbansim/roadshock/pkg/validation"
)

// Duration wraps time.Duration so YAML configs can use "90s"-style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full service configuration.
type Config struct {
	Addr string `yaml:"addr"`

	GraphCacheDir  string `yaml:"graph_cache_dir"`
	HazardCacheDir string `yaml:"hazard_cache_dir"`

	// OverpassURL is the map-data service endpoint graphs are fetched from.
	OverpassURL string `yaml:"overpass_url"`
	// GeocodeURL resolves a city name to a bounding box for hazard queries.
	GeocodeURL string `yaml:"geocode_url"`
	// HazardAPIURL is the hazard-data service (OGC API Features) root.
	HazardAPIURL string `yaml:"hazard_api_url"`
	// HazardCollection is the feature collection queried for flood polygons.
	HazardCollection string `yaml:"hazard_collection"`

	// Cities is the supported city list; requests for other cities are
	// rejected before any data access.
	Cities []string `yaml:"cities"`

	DefaultPairCount int     `yaml:"default_pair_count"`
	DefaultRepeats   int     `yaml:"default_repeats"`
	PenaltyRatio     float64 `yaml:"penalty_ratio"`

	// SimulationTimeout is the wall-clock budget for one simulation call.
	SimulationTimeout Duration `yaml:"simulation_timeout"`

	// DatabaseURL enables the PostgreSQL results store when set.
	DatabaseURL string `yaml:"database_url"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Addr:             ":8080",
		GraphCacheDir:    "graphs",
		HazardCacheDir:   "hazard_cache",
		OverpassURL:      "https://overpass-api.de/api/interpreter",
		GeocodeURL:       "https://nominatim.openstreetmap.org/search",
		HazardAPIURL:     "https://api.waterdata.usgs.gov/ogcapi/features",
		HazardCollection: "flood_inundation",
		Cities: []string{
			"Chicago, Illinois, USA",
			"Pittsburgh, Pennsylvania, USA",
			"Dallas, Texas, USA",
			"Phoenix, Arizona, USA",
			"San Francisco, California, USA",
		},
		DefaultPairCount:  40,
		DefaultRepeats:    3,
		PenaltyRatio:      5.0,
		SimulationTimeout: Duration(5 * time.Minute),
		LogLevel:          "info",
	}
}

// Load starts from defaults, overlays the YAML file at path (when not
// empty), applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ROADSHOCK_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("ROADSHOCK_GRAPH_CACHE_DIR"); v != "" {
		c.GraphCacheDir = v
	}
	if v := os.Getenv("ROADSHOCK_HAZARD_CACHE_DIR"); v != "" {
		c.HazardCacheDir = v
	}
	if v := os.Getenv("ROADSHOCK_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("ROADSHOCK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ROADSHOCK_DEFAULT_PAIR_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultPairCount = n
		}
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Required("Addr", c.Addr).
		Required("GraphCacheDir", c.GraphCacheDir).
		Required("HazardCacheDir", c.HazardCacheDir).
		Required("OverpassURL", c.OverpassURL).
		Required("HazardAPIURL", c.HazardAPIURL).
		NonEmptySlice("Cities", c.Cities).
		RangeInt("DefaultPairCount", c.DefaultPairCount, 1, 500).
		RangeInt("DefaultRepeats", c.DefaultRepeats, 1, 25).
		PositiveFloat("PenaltyRatio", c.PenaltyRatio).
		MinDuration("SimulationTimeout", c.SimulationTimeout.Std(), time.Second).
		Err()
}

// SupportsCity reports whether city is in the configured list.
func (c Config) SupportsCity(city string) bool {
	for _, supported := range c.Cities {
		if supported == city {
			return true
		}
	}
	return false
}
