// Package engine runs the full pipeline: load, aggregate, normalize,
// align, and assemble the renderer-facing result. The historical tool
// grew one script variant per feature; here every variant is one staged
// flow behind feature flags.
package engine

import (
	"time"

	"go.uber.org/zap"

	"caseplot/core/aggregate"
	"caseplot/core/align"
	"caseplot/core/loader"
	"caseplot/core/output"
	"caseplot/core/population"
	"caseplot/core/types"
	"caseplot/internal/config"
	"caseplot/internal/errors"
	"caseplot/internal/logging"
)

// Source selects which table shape the run reads
type Source string

const (
	// SourceSeries reads the wide per-metric time-series tables
	SourceSeries Source = "series"

	// SourceDaily accumulates the per-date snapshot tables
	SourceDaily Source = "daily"
)

// Options configures one pipeline run
type Options struct {
	// Areas are the requested area names (case-sensitive)
	Areas []string

	// Metrics selects which case categories to include; empty means
	// confirmed only
	Metrics []types.Metric

	// StartDate drops wide-table observations before it when non-zero
	StartDate time.Time

	// SplitSubArea plots each (area, sub-area) pair separately
	SplitSubArea bool

	// Compare aligns areas on the confirmed-case threshold crossing
	Compare bool

	// PerCapita rescales counts per 100'000 inhabitants
	PerCapita bool

	// Logarithmic and Annotate are passed through to the renderer
	Logarithmic bool
	Annotate    bool

	// Source selects the table shape; defaults to SourceSeries
	Source Source

	// Data locates the input tables
	Data config.DataConfig
}

// Validate checks option combinations before any file is opened
func (o *Options) Validate() error {
	if len(o.Areas) == 0 {
		return errors.Input("at least one area must be requested")
	}
	if len(o.Metrics) == 0 {
		o.Metrics = []types.Metric{types.MetricConfirmed}
	}
	for _, m := range o.Metrics {
		if !m.IsValid() {
			return errors.Newf(errors.TypeInput, "unknown metric: %s", m)
		}
	}
	if o.Compare && !o.hasMetric(types.MetricConfirmed) {
		return errors.Config("compare mode requires the confirmed metric")
	}
	if o.PerCapita && o.SplitSubArea {
		return errors.Config("per-capita normalization cannot be combined with sub-area splitting")
	}
	if o.Source == "" {
		o.Source = SourceSeries
	}
	return nil
}

func (o *Options) hasMetric(m types.Metric) bool {
	for _, v := range o.Metrics {
		if v == m {
			return true
		}
	}
	return false
}

func (o *Options) areaSet() map[string]bool {
	set := make(map[string]bool, len(o.Areas))
	for _, a := range o.Areas {
		set[a] = true
	}
	return set
}

// Run executes the pipeline and returns the renderer-facing result
func Run(opts Options) (*output.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logging.Info("running pipeline",
		zap.Strings("areas", opts.Areas),
		zap.String("source", string(opts.Source)),
		zap.Bool("compare", opts.Compare),
		zap.Bool("per_capita", opts.PerCapita))

	var data *types.DataSet
	var err error
	switch opts.Source {
	case SourceDaily:
		data, err = loadDaily(opts)
	default:
		data, err = loadSeries(opts)
	}
	if err != nil {
		return nil, err
	}

	if data.IsEmpty() {
		return nil, errors.NoData(opts.Areas)
	}
	if !opts.SplitSubArea {
		for _, area := range opts.Areas {
			if _, ok := data.Bundles[area]; !ok {
				logging.Warn("no data for requested area", zap.String("area", area))
			}
		}
	}

	if opts.PerCapita {
		table, err := population.Load(opts.Data.PopulationFile)
		if err != nil {
			return nil, err
		}
		if err := population.NewNormalizer(table).Normalize(data); err != nil {
			return nil, err
		}
	}

	if opts.Compare {
		if err := align.Apply(data); err != nil {
			return nil, err
		}
	}

	return &output.Result{
		Data: data,
		Spec: output.PlotSpec{
			XTicks:      output.BuildTicks(data, opts.Compare),
			Logarithmic: opts.Logarithmic,
			Annotate:    opts.Annotate,
			PerCapita:   opts.PerCapita,
			Aligned:     opts.Compare,
		},
	}, nil
}

// loadSeries builds the data set from the wide per-metric tables
func loadSeries(opts Options) (*types.DataSet, error) {
	builder := aggregate.NewBuilder(opts.SplitSubArea)
	areas := opts.areaSet()

	for _, metric := range opts.Metrics {
		observations, err := loader.LoadWide(opts.Data.SeriesPath(metric), loader.WideOptions{
			Areas:     areas,
			Metric:    metric,
			StartDate: opts.StartDate,
		})
		if err != nil {
			return nil, err
		}
		builder.AddAll(observations)
	}

	return builder.Finalize(), nil
}

// loadDaily builds the data set from the per-date snapshot tables
func loadDaily(opts Options) (*types.DataSet, error) {
	snapshots, err := loader.LoadSnapshots(opts.Data.DailyDir, opts.areaSet())
	if err != nil {
		return nil, err
	}
	return aggregate.Accumulate(snapshots, opts.Areas, opts.Metrics), nil
}
