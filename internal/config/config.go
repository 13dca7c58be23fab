// Package config loads the CLI configuration file: device address, color
// calibration, discovery and animation defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glow-control/glow-go/pkg/color"
)

// Config represents the application configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Color     ColorConfig     `yaml:"color"`
	Glow      GlowConfig      `yaml:"glow"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Log       LogConfig       `yaml:"log"`
}

// DeviceConfig pins the target device so runs can skip discovery.
type DeviceConfig struct {
	Host string `yaml:"host"`
	MAC  string `yaml:"mac"`
}

// DiscoveryConfig contains network scan settings.
type DiscoveryConfig struct {
	Timeout Duration `yaml:"timeout"` // Listen window after the broadcast (default: 5s)
}

// ColorConfig contains the device color calibration.
type ColorConfig struct {
	Gamma      float64    `yaml:"gamma"`
	Brightness [3]float64 `yaml:"brightness"`
	Balance    [3]float64 `yaml:"balance"`
	RampStyle  string     `yaml:"ramp_style"` // "3col".."10col"
	Lightness  string     `yaml:"lightness"`  // "linear" or "equilight"
}

// ModelParams converts the calibration section into model parameters.
func (c *ColorConfig) ModelParams() (color.ModelParams, error) {
	params := color.ModelParams{
		Gamma:      c.Gamma,
		Brightness: c.Brightness,
		Balance:    c.Balance,
	}
	style, err := color.ParseRampStyle(c.RampStyle)
	if err != nil {
		return color.ModelParams{}, err
	}
	params.Style = style
	policy, err := color.ParseLightnessPolicy(c.Lightness)
	if err != nil {
		return color.ModelParams{}, err
	}
	params.Policy = policy
	return params, nil
}

// GlowConfig contains the glow animation defaults.
type GlowConfig struct {
	TimeBetweenStart Duration `yaml:"time_between_start"`
	RiseTime         Duration `yaml:"rise_time"`
	FadeTime         Duration `yaml:"fade_time"`
	Simultaneous     int      `yaml:"simultaneous"`
}

// RealtimeConfig contains frame streaming settings.
type RealtimeConfig struct {
	Version   int     `yaml:"version"`    // Wire version 1..3 (default: 3)
	FrameRate float64 `yaml:"frame_rate"` // Frames per second (default: 10)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file, filling in defaults for
// everything the file leaves out.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Discovery.Timeout == 0 {
		cfg.Discovery.Timeout = Duration(5 * time.Second)
	}

	// Color defaults match the common warm-white-biased RGB hardware.
	defaults := color.DefaultParams()
	if cfg.Color.Gamma == 0 {
		cfg.Color.Gamma = defaults.Gamma
	}
	if cfg.Color.Brightness == ([3]float64{}) {
		cfg.Color.Brightness = defaults.Brightness
	}
	if cfg.Color.Balance == ([3]float64{}) {
		cfg.Color.Balance = defaults.Balance
	}
	if cfg.Color.RampStyle == "" {
		cfg.Color.RampStyle = "8col"
	}
	if cfg.Color.Lightness == "" {
		cfg.Color.Lightness = "equilight"
	}

	if cfg.Glow.TimeBetweenStart == 0 {
		cfg.Glow.TimeBetweenStart = Duration(2 * time.Second)
	}
	if cfg.Glow.RiseTime == 0 {
		cfg.Glow.RiseTime = Duration(2 * time.Second)
	}
	if cfg.Glow.FadeTime == 0 {
		cfg.Glow.FadeTime = Duration(6 * time.Second)
	}
	if cfg.Glow.Simultaneous == 0 {
		cfg.Glow.Simultaneous = 5
	}

	if cfg.Realtime.Version == 0 {
		cfg.Realtime.Version = 3
	}
	if cfg.Realtime.FrameRate == 0 {
		cfg.Realtime.FrameRate = 10
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
