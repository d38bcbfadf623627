// Package config - HCL configuration files
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclConfig mirrors Config for gohcl decoding. Blocks are optional;
// anything absent keeps its default.
type hclConfig struct {
	Version      *string       `hcl:"version,optional"`
	DefaultAreas []string      `hcl:"default_areas,optional"`
	Data         *hclDataBlock `hcl:"data,block"`
	Output       *hclOutBlock  `hcl:"output,block"`
	Logging      *hclLogBlock  `hcl:"logging,block"`
}

type hclDataBlock struct {
	Dir            *string           `hcl:"dir,optional"`
	SeriesDir      *string           `hcl:"series_dir,optional"`
	DailyDir       *string           `hcl:"daily_dir,optional"`
	PopulationFile *string           `hcl:"population_file,optional"`
	SeriesFiles    map[string]string `hcl:"series_files,optional"`
}

type hclOutBlock struct {
	DefaultFormat *string `hcl:"default_format,optional"`
	Annotate      *bool   `hcl:"annotate,optional"`
}

type hclLogBlock struct {
	Level       *string `hcl:"level,optional"`
	Format      *string `hcl:"format,optional"`
	Output      *string `hcl:"output,optional"`
	Development *bool   `hcl:"development,optional"`
}

// loadHCL parses an HCL config file and merges it onto the defaults
func loadHCL(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL config %s: %s", path, diags.Error())
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL config %s: %s", path, diags.Error())
	}

	config := Default()
	if raw.Version != nil {
		config.Version = *raw.Version
	}
	if len(raw.DefaultAreas) > 0 {
		config.DefaultAreas = raw.DefaultAreas
	}
	if raw.Data != nil {
		setString(&config.Data.Dir, raw.Data.Dir)
		setString(&config.Data.SeriesDir, raw.Data.SeriesDir)
		setString(&config.Data.DailyDir, raw.Data.DailyDir)
		setString(&config.Data.PopulationFile, raw.Data.PopulationFile)
		for metric, name := range raw.Data.SeriesFiles {
			config.Data.SeriesFiles[metric] = name
		}
	}
	if raw.Output != nil {
		setString(&config.Output.DefaultFormat, raw.Output.DefaultFormat)
		setBool(&config.Output.Annotate, raw.Output.Annotate)
	}
	if raw.Logging != nil {
		setString(&config.Logging.Level, raw.Logging.Level)
		setString(&config.Logging.Format, raw.Logging.Format)
		setString(&config.Logging.Output, raw.Logging.Output)
		setBool(&config.Logging.Development, raw.Logging.Development)
	}

	return config, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
