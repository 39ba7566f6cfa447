package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/sim"
	"github.com/san-kum/trampball/internal/worldfile"
)

const (
	DefaultPreset     = "playground"
	DefaultIntervalMs = 10.0
	DefaultDuration   = 10.0
	DefaultSlomo      = 1
	DefaultOutput     = "runs"

	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultScaling    = 1.0
	DefaultFrameRate  = 60
	DefaultMouseScale = 8.0
)

type Config struct {
	World         string     `yaml:"world"`
	Preset        string     `yaml:"preset"`
	IntervalMs    float64    `yaml:"interval_ms"`
	Duration      float64    `yaml:"duration"`
	Slomo         int        `yaml:"slomo"`
	ValidateState bool       `yaml:"validate"`
	Output        string     `yaml:"output"`
	View          ViewConfig `yaml:"view"`
}

// ViewConfig holds window settings for the live and gui front ends.
type ViewConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Scaling    float64 `yaml:"scaling"`
	FrameRate  int     `yaml:"frame_rate"`
	MouseScale float64 `yaml:"mouse_scale"`
	Fullscreen bool    `yaml:"fullscreen"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:        DefaultPreset,
		IntervalMs:    DefaultIntervalMs,
		Duration:      DefaultDuration,
		Slomo:         DefaultSlomo,
		ValidateState: true,
		Output:        DefaultOutput,
		View: ViewConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			Scaling:    DefaultScaling,
			FrameRate:  DefaultFrameRate,
			MouseScale: DefaultMouseScale,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.IntervalMs > 0):
		return fmt.Errorf("interval_ms must be positive, got %v: %w", c.IntervalMs, dynamo.ErrParameterBounds)
	case !(c.Duration > 0):
		return fmt.Errorf("duration must be positive, got %v: %w", c.Duration, dynamo.ErrParameterBounds)
	case c.Slomo < 1:
		return fmt.Errorf("slomo must be at least 1, got %d: %w", c.Slomo, dynamo.ErrParameterBounds)
	case !(c.View.Scaling > 0):
		return fmt.Errorf("view scaling must be positive, got %v: %w", c.View.Scaling, dynamo.ErrParameterBounds)
	case c.World == "" && c.Preset != "" && !HasPreset(c.Preset):
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	return nil
}

// Scene loads the world to simulate: the World file when set, otherwise
// the named preset, otherwise the default preset.
func (c *Config) Scene() (*worldfile.Scene, error) {
	if c.World != "" {
		return worldfile.Load(c.World)
	}
	name := c.Preset
	if name == "" {
		name = DefaultPreset
	}
	return PresetScene(name)
}

// SimConfig is the headless run configuration.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		IntervalMs:    c.IntervalMs,
		Duration:      c.Duration,
		ValidateState: c.ValidateState,
	}
}

// Source names where the world came from, for logs and run metadata.
func (c *Config) Source() string {
	if c.World != "" {
		return c.World
	}
	if c.Preset == "" {
		return "preset:" + DefaultPreset
	}
	return "preset:" + c.Preset
}
