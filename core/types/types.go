// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metric identifies one of the tracked case-count categories
type Metric string

const (
	MetricConfirmed Metric = "confirmed"
	MetricDeaths    Metric = "deaths"
	MetricRecovered Metric = "recovered"
)

// String returns the string representation of the metric
func (m Metric) String() string {
	return string(m)
}

// IsValid checks if the metric is a known metric
func (m Metric) IsValid() bool {
	switch m {
	case MetricConfirmed, MetricDeaths, MetricRecovered:
		return true
	default:
		return false
	}
}

// AllMetrics lists every supported metric in presentation order
func AllMetrics() []Metric {
	return []Metric{MetricConfirmed, MetricDeaths, MetricRecovered}
}

// Observation is a single cell of source data: one area (optionally
// qualified by sub-area), one date, one metric, one cumulative count
type Observation struct {
	// Area is the country/region label, trimmed of surrounding whitespace
	Area string `json:"area"`

	// SubArea is the province/state label; empty means no sub-area
	SubArea string `json:"sub_area,omitempty"`

	// Date is the calendar date of the observation
	Date time.Time `json:"date"`

	// Metric is the case-count category
	Metric Metric `json:"metric"`

	// Count is the cumulative count on Date
	Count decimal.Decimal `json:"count"`
}

// Series is an ordered sequence of samples for one (area, metric) pair.
// Dates are strictly increasing with no duplicates. Values hold integer
// counts, or per-capita rates after normalization.
type Series struct {
	Dates  []time.Time       `json:"dates"`
	Values []decimal.Decimal `json:"values"`
}

// Len returns the number of samples in the series
func (s *Series) Len() int {
	return len(s.Values)
}

// Max returns the largest value in the series, or zero if empty
func (s *Series) Max() decimal.Decimal {
	max := decimal.Zero
	for i, v := range s.Values {
		if i == 0 || v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

// Copy creates a deep copy of the series
func (s *Series) Copy() *Series {
	dates := make([]time.Time, len(s.Dates))
	copy(dates, s.Dates)
	values := make([]decimal.Decimal, len(s.Values))
	copy(values, s.Values)
	return &Series{Dates: dates, Values: values}
}

// AreaBundle groups the per-metric series of one area label. The label
// is the bare area name, or "area - sub_area" when sub-area splitting
// was requested.
type AreaBundle struct {
	// Label identifies the area (possibly composed with a sub-area)
	Label string `json:"label"`

	// Series maps metric name to its ordered series
	Series map[Metric]*Series `json:"series"`

	// Shift is the alignment offset applied to this bundle's series.
	// Zero until the alignment engine has run.
	Shift int `json:"shift,omitempty"`

	// BelowThreshold marks a bundle whose confirmed counts never reached
	// the alignment threshold. Such bundles keep their original series.
	BelowThreshold bool `json:"below_threshold,omitempty"`
}

// DataSet is the finished mapping from area label to bundle. Labels
// preserves insertion order so downstream iteration is deterministic.
type DataSet struct {
	Labels  []string               `json:"labels"`
	Bundles map[string]*AreaBundle `json:"bundles"`
}

// NewDataSet creates an empty data set
func NewDataSet() *DataSet {
	return &DataSet{Bundles: make(map[string]*AreaBundle)}
}

// Bundle returns the bundle for a label, creating it on first use
func (d *DataSet) Bundle(label string) *AreaBundle {
	if b, ok := d.Bundles[label]; ok {
		return b
	}
	b := &AreaBundle{Label: label, Series: make(map[Metric]*Series)}
	d.Bundles[label] = b
	d.Labels = append(d.Labels, label)
	return b
}

// Len returns the number of bundles
func (d *DataSet) Len() int {
	return len(d.Labels)
}

// IsEmpty reports whether no bundle holds any samples
func (d *DataSet) IsEmpty() bool {
	for _, b := range d.Bundles {
		for _, s := range b.Series {
			if s.Len() > 0 {
				return false
			}
		}
	}
	return true
}

// PopulationTable maps area names to population counts. Built once per
// run and never mutated afterwards.
type PopulationTable struct {
	counts map[string]decimal.Decimal
}

// NewPopulationTable creates a table from a name-to-count mapping
func NewPopulationTable(counts map[string]decimal.Decimal) *PopulationTable {
	m := make(map[string]decimal.Decimal, len(counts))
	for k, v := range counts {
		m[k] = v
	}
	return &PopulationTable{counts: m}
}

// Lookup returns the population for an area and whether it is mapped
func (t *PopulationTable) Lookup(area string) (decimal.Decimal, bool) {
	v, ok := t.counts[area]
	return v, ok
}

// Len returns the number of mapped areas
func (t *PopulationTable) Len() int {
	return len(t.counts)
}
