package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caseplot/core/types"
	"caseplot/internal/config"
	"caseplot/internal/errors"
)

func writeSeriesDir(t *testing.T, files map[string]string) config.DataConfig {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return config.DataConfig{
		SeriesDir: dir,
		DailyDir:  dir,
		SeriesFiles: map[string]string{
			"confirmed": "confirmed.csv",
			"deaths":    "deaths.csv",
			"recovered": "recovered.csv",
		},
		PopulationFile: filepath.Join(dir, "population.csv"),
	}
}

func TestValidateOptionCombinations(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantType errors.Type
	}{
		{
			name:     "no areas",
			opts:     Options{},
			wantType: errors.TypeInput,
		},
		{
			name: "compare without confirmed",
			opts: Options{
				Areas:   []string{"Testland"},
				Metrics: []types.Metric{types.MetricDeaths},
				Compare: true,
			},
			wantType: errors.TypeConfig,
		},
		{
			name: "per-capita with sub-area split",
			opts: Options{
				Areas:        []string{"Testland"},
				PerCapita:    true,
				SplitSubArea: true,
			},
			wantType: errors.TypeConfig,
		},
		{
			name: "unknown metric",
			opts: Options{
				Areas:   []string{"Testland"},
				Metrics: []types.Metric{"hospitalized"},
			},
			wantType: errors.TypeInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No data directory is configured: validation must fail
			// before any file access is attempted.
			err := tt.opts.Validate()
			if err == nil {
				t.Fatal("expected a validation error, got none")
			}
			if !errors.IsType(err, tt.wantType) {
				t.Errorf("expected %s, got %v", tt.wantType, err)
			}
		})
	}
}

func TestValidateDefaultsMetricsToConfirmed(t *testing.T) {
	opts := Options{Areas: []string{"Testland"}}
	if err := opts.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Metrics) != 1 || opts.Metrics[0] != types.MetricConfirmed {
		t.Errorf("expected default metrics [confirmed], got %v", opts.Metrics)
	}
}

func TestRunEndToEnd(t *testing.T) {
	data := writeSeriesDir(t, map[string]string{
		"confirmed.csv": "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20\n" +
			",Testland,0,0,0,5,10\n",
		"deaths.csv": "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20\n" +
			",Testland,0,0,0,0,1\n",
	})

	result, err := Run(Options{
		Areas:   []string{"Testland"},
		Metrics: []types.Metric{types.MetricConfirmed, types.MetricDeaths},
		Data:    data,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Data.Len() != 1 {
		t.Fatalf("expected 1 bundle, got %d", result.Data.Len())
	}
	bundle := result.Data.Bundles["Testland"]
	if bundle == nil {
		t.Fatal("expected a Testland bundle")
	}

	wantConfirmed := []int64{0, 5, 10}
	wantDeaths := []int64{0, 0, 1}
	confirmed := bundle.Series[types.MetricConfirmed]
	deaths := bundle.Series[types.MetricDeaths]
	for i := range wantConfirmed {
		if !confirmed.Values[i].Equal(decimal.NewFromInt(wantConfirmed[i])) {
			t.Errorf("confirmed[%d]: expected %d, got %s", i, wantConfirmed[i], confirmed.Values[i])
		}
		if !deaths.Values[i].Equal(decimal.NewFromInt(wantDeaths[i])) {
			t.Errorf("deaths[%d]: expected %d, got %s", i, wantDeaths[i], deaths.Values[i])
		}
	}

	wantFirst := time.Date(2020, time.January, 22, 0, 0, 0, 0, time.UTC)
	if !confirmed.Dates[0].Equal(wantFirst) {
		t.Errorf("expected first date %s, got %s", wantFirst, confirmed.Dates[0])
	}
	for i := 1; i < confirmed.Len(); i++ {
		if !confirmed.Dates[i-1].Before(confirmed.Dates[i]) {
			t.Errorf("dates not ascending at %d", i)
		}
	}

	wantTicks := []string{"2020-01-22", "2020-01-23", "2020-01-24"}
	for i, want := range wantTicks {
		if result.Spec.XTicks[i] != want {
			t.Errorf("tick %d: expected %q, got %q", i, want, result.Spec.XTicks[i])
		}
	}
	if result.Spec.Aligned {
		t.Error("expected calendar x-domain without compare mode")
	}
}

func TestRunNoDataForRequestedAreas(t *testing.T) {
	data := writeSeriesDir(t, map[string]string{
		"confirmed.csv": "Province/State,Country/Region,Lat,Long,1/22/20\n" +
			",Elsewhere,0,0,7\n",
	})

	_, err := Run(Options{
		Areas: []string{"Testland"},
		Data:  data,
	})
	if err == nil {
		t.Fatal("expected a no-data error, got none")
	}
	if !errors.IsType(err, errors.TypeNoData) {
		t.Errorf("expected NO_DATA, got %v", err)
	}
}

func TestRunCompareProducesOrdinalTicks(t *testing.T) {
	data := writeSeriesDir(t, map[string]string{
		"confirmed.csv": "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20,1/25/20,1/26/20\n" +
			",First,0,0,10,50,120,200,210\n" +
			",Second,0,0,5,20,90,150,300\n",
	})

	result, err := Run(Options{
		Areas:   []string{"First", "Second"},
		Compare: true,
		Data:    data,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Spec.Aligned {
		t.Fatal("expected aligned result")
	}
	if result.Data.Bundles["Second"].Shift != 1 {
		t.Errorf("expected Second shifted by 1, got %d", result.Data.Bundles["Second"].Shift)
	}
	if got := result.Data.Bundles["Second"].Series[types.MetricConfirmed].Len(); got != 4 {
		t.Errorf("expected Second trimmed to 4 samples, got %d", got)
	}
	wantTicks := []string{"0", "1", "2", "3", "4"}
	if len(result.Spec.XTicks) != len(wantTicks) {
		t.Fatalf("expected %d ordinal ticks, got %d", len(wantTicks), len(result.Spec.XTicks))
	}
	for i, want := range wantTicks {
		if result.Spec.XTicks[i] != want {
			t.Errorf("tick %d: expected %q, got %q", i, want, result.Spec.XTicks[i])
		}
	}
}

func TestRunDailySource(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"01-22-2020.csv": "Province/State,Country/Region,Confirmed,Deaths,Recovered\n,Testland,2,0,0\n",
		"01-23-2020.csv": "Province/State,Country/Region,Confirmed,Deaths,Recovered\n,Elsewhere,9,0,0\n",
		"01-24-2020.csv": "Province/State,Country/Region,Confirmed,Deaths,Recovered\n,Testland,6,1,0\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	result, err := Run(Options{
		Areas:  []string{"Testland"},
		Source: SourceDaily,
		Data:   config.DataConfig{DailyDir: dir},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confirmed := result.Data.Bundles["Testland"].Series[types.MetricConfirmed]
	want := []int64{2, 2, 6}
	if confirmed.Len() != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), confirmed.Len())
	}
	for i, w := range want {
		if !confirmed.Values[i].Equal(decimal.NewFromInt(w)) {
			t.Errorf("sample %d: expected %d, got %s", i, w, confirmed.Values[i])
		}
	}
}

func TestRunPerCapita(t *testing.T) {
	data := writeSeriesDir(t, map[string]string{
		"confirmed.csv": "Province/State,Country/Region,Lat,Long,1/22/20\n" +
			",Testland,0,0,100\n",
		"population.csv": "Country,Value\nTestland,200000\n",
	})

	result, err := Run(Options{
		Areas:     []string{"Testland"},
		PerCapita: true,
		Data:      data,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := result.Data.Bundles["Testland"].Series[types.MetricConfirmed].Values[0]
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected per-capita value 50, got %s", got)
	}
	if !result.Spec.PerCapita {
		t.Error("expected per-capita flag in plot spec")
	}
}
