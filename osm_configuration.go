package roadnet

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds explicit extraction parameters. Fields absent from a YAML file keep their defaults.
type Config struct {
	EnableWalk         bool    `yaml:"enable_walk"`
	EnableBicycle      bool    `yaml:"enable_bicycle"`
	EnableCar          bool    `yaml:"enable_car"`
	CollapseDistance   float64 `yaml:"collapse_distance_m"`
	FlushThreshold     int     `yaml:"flush_threshold"`
	EdgeFlushThreshold int     `yaml:"edge_flush_threshold"`
	CollapseWindow     int     `yaml:"collapse_window"`
}

// DefaultConfig returns every mode enabled, no collapsing and default thresholds
func DefaultConfig() Config {
	return Config{
		EnableWalk:     true,
		EnableBicycle:  true,
		EnableCar:      true,
		FlushThreshold: DEFAULT_FLUSH_THRESHOLD,
		CollapseWindow: DEFAULT_COLLAPSE_WINDOW,
	}
}

// LoadConfig reads YAML file on top of DefaultConfig
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "Can't read configuration file")
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, errors.Wrap(err, "Can't parse configuration file")
	}
	return cfg, nil
}

// Modes returns enabled modes
func (cfg Config) Modes() []Mode {
	modes := []Mode{}
	if cfg.EnableWalk {
		modes = append(modes, MODE_WALK)
	}
	if cfg.EnableBicycle {
		modes = append(modes, MODE_BICYCLE)
	}
	if cfg.EnableCar {
		modes = append(modes, MODE_CAR)
	}
	return modes
}

// Validate checks that parameters are usable
func (cfg Config) Validate() error {
	if len(cfg.Modes()) == 0 {
		return ErrNoModes
	}
	if cfg.CollapseDistance < 0 {
		return errors.Wrapf(ErrInvalidConfig, "collapse_distance_m must not be negative, got %f", cfg.CollapseDistance)
	}
	if cfg.FlushThreshold <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "flush_threshold must be positive, got %d", cfg.FlushThreshold)
	}
	if cfg.EdgeFlushThreshold < 0 {
		return errors.Wrapf(ErrInvalidConfig, "edge_flush_threshold must not be negative, got %d", cfg.EdgeFlushThreshold)
	}
	if cfg.CollapseWindow < 2 {
		return errors.Wrapf(ErrInvalidConfig, "collapse_window must be at least 2, got %d", cfg.CollapseWindow)
	}
	return nil
}

// Options converts configuration to Extractor options
func (cfg Config) Options() []func(*Extractor) {
	return []func(*Extractor){
		WithModes(cfg.Modes()),
		WithCollapseDistance(cfg.CollapseDistance),
		WithFlushThreshold(cfg.FlushThreshold),
		WithEdgeFlushThreshold(cfg.EdgeFlushThreshold),
		WithCollapseWindow(cfg.CollapseWindow),
	}
}
