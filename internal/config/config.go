package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/autocrop/pkg/analyzer"
)

// Config holds the application configuration.
type Config struct {
	Crop   analyzer.Config `json:"crop"`
	Output OutputConfig    `json:"output"`
}

// OutputConfig holds configuration for output generation.
type OutputConfig struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Dir      string `json:"dir"`
	Suffix   string `json:"suffix"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Crop: analyzer.DefaultConfig(),
		Output: OutputConfig{
			Format:  "jpg",
			Quality: 90,
			Dir:     "./out",
			Suffix:  "_cropped",
		},
	}
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Crop.Width < 0 || c.Crop.Height < 0 {
		return fmt.Errorf("crop.width and crop.height must not be negative")
	}

	if c.Crop.CropWidth < 0 || c.Crop.CropHeight < 0 {
		return fmt.Errorf("crop.crop_width and crop.crop_height must not be negative")
	}

	if c.Crop.Step < 1 {
		return fmt.Errorf("crop.step must be at least 1")
	}

	if c.Crop.ScoreDownSample < 1 {
		return fmt.Errorf("crop.score_down_sample must be at least 1")
	}

	if c.Crop.ScaleStep <= 0 {
		return fmt.Errorf("crop.scale_step must be positive")
	}

	if c.Crop.MinScale <= 0 || c.Crop.MaxScale <= 0 || c.Crop.MinScale > c.Crop.MaxScale {
		return fmt.Errorf("crop.min_scale and crop.max_scale must be positive with min_scale <= max_scale")
	}

	for name, v := range map[string]float64{
		"crop.skin_threshold":       c.Crop.SkinThreshold,
		"crop.saturation_threshold": c.Crop.SaturationThreshold,
	} {
		if v < 0 || v >= 1 {
			return fmt.Errorf("%s must be in [0, 1)", name)
		}
	}

	if c.Crop.SkinBrightnessMin > c.Crop.SkinBrightnessMax {
		return fmt.Errorf("crop.skin_brightness_min must not exceed crop.skin_brightness_max")
	}

	if c.Crop.SaturationBrightnessMin > c.Crop.SaturationBrightnessMax {
		return fmt.Errorf("crop.saturation_brightness_min must not exceed crop.saturation_brightness_max")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch c.Output.Format {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be one of jpg, png, webp")
	}

	return nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "autocrop", "config.json")
}
