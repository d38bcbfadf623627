// Package align re-indexes area series so that every area's confirmed
// series lines up at the sample where it first reaches the case
// threshold, instead of at the same calendar date.
package align

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"caseplot/core/types"
	"caseplot/internal/errors"
	"caseplot/internal/logging"
)

// Threshold is the confirmed-case count that marks the comparison
// origin ("day 0") of every area.
var Threshold = decimal.NewFromInt(100)

// Crossing returns the leftmost position whose value is >= Threshold.
// The series is assumed non-decreasing (cumulative counts); behavior on
// dipping data is undefined. Returns (0, false) when the threshold is
// never reached.
func Crossing(s *types.Series) (int, bool) {
	if s.Max().LessThan(Threshold) {
		return 0, false
	}
	pos := sort.Search(s.Len(), func(i int) bool {
		return s.Values[i].GreaterThanOrEqual(Threshold)
	})
	return pos, true
}

// Apply computes per-area shifts from the confirmed series and trims
// every metric series of each bundle accordingly. The area that crossed
// the threshold at the smallest position becomes the reference; ties go
// to the first label in data set order, which is the insertion order of
// the aggregation step. Areas that never reach the threshold keep shift
// zero. After Apply the x-domain is ordinal, not calendar.
func Apply(data *types.DataSet) error {
	crossings := make(map[string]int, data.Len())
	reference := -1
	for _, label := range data.Labels {
		bundle := data.Bundles[label]
		confirmed, ok := bundle.Series[types.MetricConfirmed]
		if !ok {
			return errors.Newf(errors.TypeInternal, "no confirmed series for %s", label)
		}
		pos, reached := Crossing(confirmed)
		if !reached {
			bundle.BelowThreshold = true
			continue
		}
		crossings[label] = pos
		if reference < 0 || pos < reference {
			reference = pos
		}
	}
	if reference < 0 {
		// Nobody reached the threshold; nothing to shift.
		return nil
	}

	for _, label := range data.Labels {
		bundle := data.Bundles[label]
		pos, reached := crossings[label]
		if !reached {
			continue
		}
		bundle.Shift = pos - reference
		shiftBundle(bundle)

		logging.Debug("aligned area",
			zap.String("area", label),
			zap.Int("crossing", pos),
			zap.Int("shift", bundle.Shift))
	}
	return nil
}

// shiftBundle trims all of a bundle's series by its shift: a positive
// shift drops that many leading samples, a negative shift drops trailing
// samples so the bundle stays internally consistent.
func shiftBundle(b *types.AreaBundle) {
	for _, series := range b.Series {
		switch {
		case b.Shift > 0 && b.Shift <= series.Len():
			series.Dates = series.Dates[b.Shift:]
			series.Values = series.Values[b.Shift:]
		case b.Shift < 0 && -b.Shift <= series.Len():
			n := series.Len() + b.Shift
			series.Dates = series.Dates[:n]
			series.Values = series.Values[:n]
		}
	}
}
