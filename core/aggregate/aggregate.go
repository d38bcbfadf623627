// Package aggregate combines observations into per-area, per-metric
// ordered series.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"caseplot/core/loader"
	"caseplot/core/types"
)

// Builder accumulates observations into a DataSet with insert-or-merge
// semantics: a sample for an already-seen (label, metric, date) is added
// element-wise to the existing value. Finalize must be called once, after
// which the builder must not be reused.
type Builder struct {
	split bool
	data  *types.DataSet
	index map[string]map[types.Metric]map[time.Time]int
}

// NewBuilder creates a builder. When split is true each (area, sub-area)
// pair becomes its own bundle labeled "area - sub_area"; otherwise
// sub-area rows of one area are summed together.
func NewBuilder(split bool) *Builder {
	return &Builder{
		split: split,
		data:  types.NewDataSet(),
		index: make(map[string]map[types.Metric]map[time.Time]int),
	}
}

// Add merges one observation into the data set
func (b *Builder) Add(obs types.Observation) {
	label := obs.Area
	if b.split && obs.SubArea != "" {
		label = obs.Area + " - " + obs.SubArea
	}

	bundle := b.data.Bundle(label)
	series, ok := bundle.Series[obs.Metric]
	if !ok {
		series = &types.Series{}
		bundle.Series[obs.Metric] = series
	}

	metrics, ok := b.index[label]
	if !ok {
		metrics = make(map[types.Metric]map[time.Time]int)
		b.index[label] = metrics
	}
	positions, ok := metrics[obs.Metric]
	if !ok {
		positions = make(map[time.Time]int)
		metrics[obs.Metric] = positions
	}

	if pos, ok := positions[obs.Date]; ok {
		series.Values[pos] = series.Values[pos].Add(obs.Count)
		return
	}
	positions[obs.Date] = series.Len()
	series.Dates = append(series.Dates, obs.Date)
	series.Values = append(series.Values, obs.Count)
}

// AddAll merges a batch of observations
func (b *Builder) AddAll(observations []types.Observation) {
	for _, obs := range observations {
		b.Add(obs)
	}
}

// Finalize sorts every series by ascending date and returns the data
// set. Wide tables already arrive in column order, but the invariant is
// enforced here rather than assumed.
func (b *Builder) Finalize() *types.DataSet {
	for _, bundle := range b.data.Bundles {
		for _, series := range bundle.Series {
			sortSeries(series)
		}
	}
	return b.data
}

func sortSeries(s *types.Series) {
	if sort.SliceIsSorted(s.Dates, func(i, j int) bool { return s.Dates[i].Before(s.Dates[j]) }) {
		return
	}
	order := make([]int, len(s.Dates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return s.Dates[order[i]].Before(s.Dates[order[j]]) })

	dates := make([]time.Time, len(s.Dates))
	values := make([]decimal.Decimal, len(s.Values))
	for i, from := range order {
		dates[i] = s.Dates[from]
		values[i] = s.Values[from]
	}
	s.Dates = dates
	s.Values = values
}

// Accumulate builds a DataSet from successive daily snapshots. For an
// area absent from a day's snapshot the previous day's cumulative value
// is carried forward, or zero if the area has not appeared yet. Dates
// before the first snapshot containing any requested area are skipped,
// so every bundle ends up with one value per contributing date.
func Accumulate(snapshots []*loader.Snapshot, areas []string, metrics []types.Metric) *types.DataSet {
	data := types.NewDataSet()
	last := make(map[string]map[types.Metric]decimal.Decimal)
	started := false

	for _, snap := range snapshots {
		if !started {
			for _, area := range areas {
				if _, ok := snap.Counts[area]; ok {
					started = true
					break
				}
			}
			if !started {
				continue
			}
		}

		for _, area := range areas {
			carried, ok := last[area]
			if !ok {
				carried = make(map[types.Metric]decimal.Decimal)
				last[area] = carried
			}
			if counts, ok := snap.Counts[area]; ok {
				for _, metric := range metrics {
					carried[metric] = counts[metric]
				}
			}

			bundle := data.Bundle(area)
			for _, metric := range metrics {
				series, ok := bundle.Series[metric]
				if !ok {
					series = &types.Series{}
					bundle.Series[metric] = series
				}
				series.Dates = append(series.Dates, snap.Date)
				series.Values = append(series.Values, carried[metric])
			}
		}
	}

	return data
}
