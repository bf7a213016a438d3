// Package config loads the compiler's tunable thresholds from an optional
// YAML file. Every knob has a default; an absent file means defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable threshold.
type Config struct {
	// TotalPoints is the default point pool for a quiz that does not set
	// its own.
	TotalPoints float64 `yaml:"total_points"`
	// HeavyWeight multiplies the allocation units of extended-response
	// items.
	HeavyWeight float64 `yaml:"heavy_weight"`
	// ZeroPercentFallback is the absolute margin used when a percent
	// tolerance meets a zero target.
	ZeroPercentFallback string `yaml:"zero_percent_fallback"`
	// LongestBiasThreshold is the tolerated fraction of single-select
	// items whose longest (or shortest) choice is correct.
	LongestBiasThreshold float64 `yaml:"longest_bias_threshold"`
	// LengthVarianceLimit is the tolerated coefficient of variation of
	// choice lengths when the correct choice is the longest.
	LengthVarianceLimit float64 `yaml:"length_variance_limit"`
	// MaxPositionRun is the longest tolerated streak of one correct
	// position.
	MaxPositionRun int `yaml:"max_position_run"`
	// VerseThreshold is the classifier's verse-share cutoff.
	VerseThreshold float64 `yaml:"verse_threshold"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		TotalPoints:          100,
		HeavyWeight:          2.5,
		ZeroPercentFallback:  "0.1",
		LongestBiasThreshold: 0.3,
		LengthVarianceLimit:  0.3,
		MaxPositionRun:       2,
		VerseThreshold:       0.6,
	}
}

// Load reads the config file at path, layering it over the defaults. An
// empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TotalPoints <= 0 {
		return fmt.Errorf("total_points must be positive, got %v", c.TotalPoints)
	}
	if c.HeavyWeight <= 0 {
		return fmt.Errorf("heavy_weight must be positive, got %v", c.HeavyWeight)
	}
	if c.MaxPositionRun < 1 {
		return fmt.Errorf("max_position_run must be at least 1, got %d", c.MaxPositionRun)
	}
	if c.VerseThreshold <= 0 || c.VerseThreshold >= 1 {
		return fmt.Errorf("verse_threshold must be in (0, 1), got %v", c.VerseThreshold)
	}
	return nil
}
