package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caseplot/core/types"
)

func testData(t *testing.T) *types.DataSet {
	t.Helper()
	data := types.NewDataSet()
	s := &types.Series{}
	for i, c := range []int64{0, 5, 1234567} {
		s.Dates = append(s.Dates, time.Date(2020, time.January, 22+i, 0, 0, 0, 0, time.UTC))
		s.Values = append(s.Values, decimal.NewFromInt(c))
	}
	data.Bundle("Testland").Series[types.MetricConfirmed] = s
	return data
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1'000"},
		{"1234567", "1'234'567"},
		{"-12345", "-12'345"},
	}
	for _, tt := range tests {
		if got := GroupDigits(tt.in); got != tt.want {
			t.Errorf("GroupDigits(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(decimal.NewFromInt(1234567)); got != "1'234'567" {
		t.Errorf("expected grouped integer, got %q", got)
	}
	rate := decimal.NewFromInt(100).Div(decimal.NewFromInt(3))
	if got := FormatValue(rate); got != "33.33" {
		t.Errorf("expected two-decimal rate, got %q", got)
	}
}

func TestBuildTicksCalendar(t *testing.T) {
	ticks := BuildTicks(testData(t), false)
	want := []string{"2020-01-22", "2020-01-23", "2020-01-24"}
	if len(ticks) != len(want) {
		t.Fatalf("expected %d ticks, got %d", len(want), len(ticks))
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("tick %d: expected %q, got %q", i, want[i], ticks[i])
		}
	}
}

func TestBuildTicksOrdinal(t *testing.T) {
	ticks := BuildTicks(testData(t), true)
	want := []string{"0", "1", "2"}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("tick %d: expected %q, got %q", i, want[i], ticks[i])
		}
	}
}

func TestLegend(t *testing.T) {
	result := &Result{Data: testData(t)}
	legend := result.Legend()
	if len(legend) != 1 || legend[0] != "Testland - confirmed" {
		t.Errorf("expected [Testland - confirmed], got %v", legend)
	}
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	result := &Result{
		Data: testData(t),
		Spec: PlotSpec{XTicks: []string{"2020-01-22"}, Logarithmic: true},
	}

	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Render(&buf, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	spec, ok := decoded["spec"].(map[string]interface{})
	if !ok {
		t.Fatal("expected a spec object")
	}
	if spec["logarithmic"] != true {
		t.Error("expected logarithmic flag in JSON output")
	}
}

func TestTerminalFormatterAnnotates(t *testing.T) {
	result := &Result{
		Data: testData(t),
		Spec: PlotSpec{
			XTicks:   []string{"2020-01-22", "2020-01-23", "2020-01-24"},
			Annotate: true,
		},
	}

	var buf bytes.Buffer
	formatter := &TerminalFormatter{NoColor: true}
	if err := formatter.Render(&buf, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Testland") {
		t.Error("expected area label in output")
	}
	if !strings.Contains(out, "1'234'567") {
		t.Error("expected grouped annotation values in output")
	}
}

func TestTerminalFormatterWarnsBelowThreshold(t *testing.T) {
	data := testData(t)
	data.Bundles["Testland"].BelowThreshold = true
	result := &Result{
		Data: data,
		Spec: PlotSpec{XTicks: []string{"0", "1", "2"}, Aligned: true},
	}

	var buf bytes.Buffer
	formatter := &TerminalFormatter{NoColor: true}
	if err := formatter.Render(&buf, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "Testland never reached the alignment threshold") {
		t.Error("expected a warning for the area below the threshold")
	}
}
