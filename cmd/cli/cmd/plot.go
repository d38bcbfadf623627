// Package cmd - plot command
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"caseplot/core/engine"
	"caseplot/core/output"
	"caseplot/core/types"
	"caseplot/internal/config"
	"caseplot/internal/logging"
)

var (
	plotConfirmed  bool
	plotDeaths     bool
	plotRecovered  bool
	plotAll        bool
	plotLog        bool
	plotNoAnnotate bool
	plotSplit      bool
	plotCompare    bool
	plotPerCapita  bool
	plotDaily      bool
	plotStartDate  string
	plotFormat     string
)

// plotCmd represents the plot command
var plotCmd = &cobra.Command{
	Use:   "plot [areas...]",
	Short: "Build comparative case series for the given areas",
	Long: `Aggregate case counts for the given countries/regions and emit
plot-ready series data.

With no areas the configured default areas are used. Metrics default to
confirmed when none of --confirmed/--deaths/--recovered is given.

Examples:
  caseplot plot Switzerland
  caseplot plot -a --startdate 2020-03-01 Switzerland Italy
  caseplot plot --compare Switzerland Italy Germany
  caseplot plot --per-capita --format json Switzerland`,
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().BoolVarP(&plotConfirmed, "confirmed", "c", false, "include confirmed (default)")
	plotCmd.Flags().BoolVarP(&plotDeaths, "deaths", "d", false, "include deaths")
	plotCmd.Flags().BoolVarP(&plotRecovered, "recovered", "r", false, "include recovered")
	plotCmd.Flags().BoolVarP(&plotAll, "all", "a", false, "include all metrics")
	plotCmd.Flags().BoolVarP(&plotLog, "logarithmic", "l", false, "use logarithmic scale")
	plotCmd.Flags().BoolVar(&plotNoAnnotate, "no-annotate", false, "disable annotation of data points")
	plotCmd.Flags().BoolVar(&plotSplit, "split-by-state", false, "show each province/state separately")
	plotCmd.Flags().BoolVar(&plotCompare, "compare", false, "align areas on the day of the 100th confirmed case")
	plotCmd.Flags().BoolVar(&plotPerCapita, "per-capita", false, "rescale counts per 100'000 inhabitants")
	plotCmd.Flags().BoolVar(&plotDaily, "daily", false, "read the daily snapshot tables instead of the time-series tables")
	plotCmd.Flags().StringVarP(&plotStartDate, "startdate", "s", "", "plot data past given date - format YYYY-MM-DD")
	plotCmd.Flags().StringVarP(&plotFormat, "format", "f", "", "output format (cli, json)")
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	areas := args
	if len(areas) == 0 {
		areas = cfg.DefaultAreas
	}

	opts := engine.Options{
		Areas:        areas,
		Metrics:      selectedMetrics(),
		SplitSubArea: plotSplit,
		Compare:      plotCompare,
		PerCapita:    plotPerCapita,
		Logarithmic:  plotLog,
		Annotate:     cfg.Output.Annotate && !plotNoAnnotate,
		Data:         cfg.Data,
	}
	if plotDaily {
		opts.Source = engine.SourceDaily
	}
	if plotStartDate != "" {
		start, err := time.Parse("2006-01-02", plotStartDate)
		if err != nil {
			return fmt.Errorf("not a valid date: %q", plotStartDate)
		}
		opts.StartDate = start
	}

	result, err := engine.Run(opts)
	if err != nil {
		return err
	}

	return render(result, cmd)
}

// render hands the result to the selected formatter. An interrupt while
// rendering is a normal exit, not a failure.
func render(result *output.Result, cmd *cobra.Command) error {
	formatter := selectFormatter()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	done := make(chan error, 1)
	go func() {
		done <- formatter.Render(cmd.OutOrStdout(), result)
	}()

	select {
	case err := <-done:
		return err
	case <-interrupt:
		logging.Debug("interrupted while rendering")
		return nil
	}
}

func selectFormatter() output.Formatter {
	format := plotFormat
	if format == "" {
		format = config.Get().Output.DefaultFormat
	}
	if format == string(output.FormatJSON) {
		return &output.JSONFormatter{}
	}
	return &output.TerminalFormatter{}
}

func selectedMetrics() []types.Metric {
	if plotAll {
		return types.AllMetrics()
	}
	var metrics []types.Metric
	if plotConfirmed {
		metrics = append(metrics, types.MetricConfirmed)
	}
	if plotDeaths {
		metrics = append(metrics, types.MetricDeaths)
	}
	if plotRecovered {
		metrics = append(metrics, types.MetricRecovered)
	}
	if len(metrics) == 0 {
		metrics = []types.Metric{types.MetricConfirmed}
	}
	return metrics
}
