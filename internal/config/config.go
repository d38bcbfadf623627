// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"caseplot/core/types"
	"caseplot/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Data contains input file locations
	Data DataConfig `json:"data"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`

	// DefaultAreas are plotted when no areas are given on the command line
	DefaultAreas []string `json:"default_areas"`
}

// DataConfig locates the source tables
type DataConfig struct {
	// Dir is the dataset root directory
	Dir string `json:"dir"`

	// SeriesDir holds the wide per-metric time-series tables
	SeriesDir string `json:"series_dir"`

	// DailyDir holds the per-date snapshot tables (MM-DD-YYYY.csv)
	DailyDir string `json:"daily_dir"`

	// PopulationFile is the Country,Value population reference table
	PopulationFile string `json:"population_file"`

	// SeriesFiles maps metric name to wide-table file name within SeriesDir
	SeriesFiles map[string]string `json:"series_files"`
}

// SeriesPath returns the wide-table path for a metric
func (d DataConfig) SeriesPath(m types.Metric) string {
	name, ok := d.SeriesFiles[m.String()]
	if !ok {
		s := m.String()
		name = "time_series_19-covid-" + strings.ToUpper(s[:1]) + s[1:] + ".csv"
	}
	return filepath.Join(d.SeriesDir, name)
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// Annotate enables per-sample value annotation by default
	Annotate bool `json:"annotate"`
}

// Default returns a default configuration
func Default() *Config {
	dataDir := "COVID-19/csse_covid_19_data"

	return &Config{
		Version: "1.0",
		Data: DataConfig{
			Dir:            dataDir,
			SeriesDir:      filepath.Join(dataDir, "csse_covid_19_time_series"),
			DailyDir:       filepath.Join(dataDir, "csse_covid_19_daily_reports"),
			PopulationFile: "population.csv",
			SeriesFiles: map[string]string{
				"confirmed": "time_series_19-covid-Confirmed.csv",
				"deaths":    "time_series_19-covid-Deaths.csv",
				"recovered": "time_series_19-covid-Recovered.csv",
			},
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			Annotate:      true,
		},
		Logging:      logging.DefaultConfig(),
		DefaultAreas: []string{"Switzerland"},
	}
}

// Load loads configuration from a file. JSON is the native format; files
// ending in .hcl are decoded as HCL.
func Load(path string) (*Config, error) {
	if strings.HasSuffix(path, ".hcl") {
		return loadHCL(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
