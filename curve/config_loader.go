package curve

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Output format names accepted by OutputConfig.Format
const (
	FormatRaster = "raster"
	FormatVector = "vector"
	FormatBoth   = "both"
)

// DefaultConfig returns the configuration that reproduces the reference fit:
// fixed model constants, 21x11x31 coarse grid, 21x21x41 fine grid.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:    DefaultDataPath,
			XColumn: "x",
			YColumn: "y",
		},
		Model: DefaultModelFamily(),
		Search: SearchConfig{
			Coarse: DefaultCoarseLattice(),
			Fine:   DefaultRefinement(),
		},
		Output: OutputConfig{
			Dir:     "outputs",
			Plot:    "fit_plot",
			Report:  "params.txt",
			Result:  "fit_result.json",
			Format:  FormatRaster,
			DPI:     160,
			Samples: DefaultCurveSamples,
		},
	}
}

// LoadConfig loads configuration from a YAML file. Keys absent from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks required fields and search bounds
func (c *Config) Validate() error {
	if c.Data.XColumn == "" || c.Data.YColumn == "" {
		return fmt.Errorf("data.xColumn and data.yColumn are required")
	}
	if c.Data.XColumn == c.Data.YColumn {
		return fmt.Errorf("data.xColumn and data.yColumn must differ, both are %q", c.Data.XColumn)
	}
	if !isFinite(c.Model.YOffset) || !isFinite(c.Model.Frequency) {
		return fmt.Errorf("model.yOffset and model.frequency must be finite")
	}
	if err := c.Search.Coarse.Validate(); err != nil {
		return fmt.Errorf("search.coarse.%w", err)
	}
	if err := c.Search.Fine.Validate(); err != nil {
		return fmt.Errorf("search.fine: %w", err)
	}

	switch c.Output.Format {
	case FormatRaster, FormatVector, FormatBoth:
	default:
		return fmt.Errorf("output.format must be %q, %q or %q, got %q",
			FormatRaster, FormatVector, FormatBoth, c.Output.Format)
	}
	if c.Output.DPI <= 0 {
		return fmt.Errorf("output.dpi must be positive, got %g", c.Output.DPI)
	}
	if c.Output.Samples < 2 {
		return fmt.Errorf("output.samples must be at least 2, got %d", c.Output.Samples)
	}

	return nil
}

// ApplyEnv overlays MQTT settings from the environment. Environment values
// take precedence over the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		c.MQTT.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("MQTT_PUBLISH_PREFIX"); v != "" {
		c.MQTT.PublishPrefix = v
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
