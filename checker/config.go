package checker

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level vizdrift configuration.
type Config struct {
	// StorePath is the SQLite database location.
	StorePath string `yaml:"store_path"`

	Browser  BrowserConfig  `yaml:"browser"`
	Viewport ViewportConfig `yaml:"viewport"`

	// Strictness for calibration: low | medium | high.
	Strictness string `yaml:"strictness"`

	// Samples is the number of captures per calibration run.
	Samples int `yaml:"samples"`

	// SampleDelay separates calibration captures.
	SampleDelay time.Duration `yaml:"sample_delay"`

	Pages []PageConfig `yaml:"pages"`
}

// BrowserConfig controls the Chrome connection.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome. Empty = launch.
	Remote string `yaml:"remote"`

	// Static skips the browser entirely and captures structure-only
	// snapshots over HTTP.
	Static bool `yaml:"static"`
}

// ViewportConfig is the capture window size.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PageConfig defines a page under regression watch.
type PageConfig struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("checker: parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.StorePath == "" {
		c.StorePath = "vizdrift.db"
	}
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 1280
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 800
	}
	if c.Strictness == "" {
		c.Strictness = "medium"
	}
	if c.Samples < 2 {
		c.Samples = 3
	}
	if c.SampleDelay <= 0 {
		c.SampleDelay = 2 * time.Second
	}
}
