// Package output defines the renderer-facing result structure and its
// formatters. The core emits structured series data and presentation
// metadata only; all drawing is the renderer's concern.
package output

import (
	"io"
	"strconv"

	"caseplot/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON for an external plot frontend
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *Result) error
}

// PlotSpec carries the presentation metadata a renderer needs alongside
// the series data
type PlotSpec struct {
	// XTicks are the x-axis tick labels: calendar dates, or ordinal
	// day indices after alignment
	XTicks []string `json:"x_ticks"`

	// Logarithmic selects a log y-scale
	Logarithmic bool `json:"logarithmic"`

	// Annotate enables per-sample value annotation
	Annotate bool `json:"annotate"`

	// PerCapita labels the y-axis as cases per 100'000 inhabitants
	PerCapita bool `json:"per_capita"`

	// Aligned indicates the x-domain is ordinal threshold-relative days
	Aligned bool `json:"aligned"`
}

// Result is the finished pipeline output handed to a renderer
type Result struct {
	// Data holds the per-area bundles in insertion order
	Data *types.DataSet `json:"data"`

	// Spec is the presentation metadata
	Spec PlotSpec `json:"spec"`
}

// Legend returns the "area - metric" legend labels in plot order
func (r *Result) Legend() []string {
	var legend []string
	for _, label := range r.Data.Labels {
		bundle := r.Data.Bundles[label]
		for _, metric := range types.AllMetrics() {
			if _, ok := bundle.Series[metric]; ok {
				legend = append(legend, label+" - "+metric.String())
			}
		}
	}
	return legend
}

// BuildTicks derives the x-axis tick labels from a data set. Calendar
// ticks come from the first bundle's first series (every bundle shares
// the date domain before alignment); aligned ticks are ordinals up to
// the longest remaining series.
func BuildTicks(data *types.DataSet, aligned bool) []string {
	if aligned {
		n := 0
		for _, bundle := range data.Bundles {
			for _, series := range bundle.Series {
				if series.Len() > n {
					n = series.Len()
				}
			}
		}
		ticks := make([]string, n)
		for i := range ticks {
			ticks[i] = strconv.Itoa(i)
		}
		return ticks
	}

	for _, label := range data.Labels {
		for _, metric := range types.AllMetrics() {
			if series, ok := data.Bundles[label].Series[metric]; ok && series.Len() > 0 {
				ticks := make([]string, series.Len())
				for i, date := range series.Dates {
					ticks[i] = date.Format("2006-01-02")
				}
				return ticks
			}
		}
	}
	return nil
}
