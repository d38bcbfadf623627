// Package output - terminal formatter
package output

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"caseplot/core/types"
	"caseplot/core/ui"
)

// TerminalFormatter renders the result as a terminal table
type TerminalFormatter struct {
	// NoColor disables ANSI colors
	NoColor bool
}

// Format returns the format type
func (f *TerminalFormatter) Format() Format {
	return FormatCLI
}

// Render writes the result as a human-readable table
func (f *TerminalFormatter) Render(w io.Writer, result *Result) error {
	out := ui.NewWriter(w, f.NoColor)

	title := "Case series"
	switch {
	case result.Spec.Aligned && result.Spec.PerCapita:
		title = "Case series per 100'000 (aligned on day of 100th case)"
	case result.Spec.Aligned:
		title = "Case series (aligned on day of 100th case)"
	case result.Spec.PerCapita:
		title = "Case series per 100'000"
	}
	out.Header(title)

	scale := "linear"
	if result.Spec.Logarithmic {
		scale = "logarithmic"
	}
	out.Dimmed("y-scale: %s", scale)
	if len(result.Spec.XTicks) > 0 {
		out.Dimmed("x-axis: %s .. %s (%d samples)",
			result.Spec.XTicks[0],
			result.Spec.XTicks[len(result.Spec.XTicks)-1],
			len(result.Spec.XTicks))
	}
	out.Println("")

	for _, label := range result.Data.Labels {
		bundle := result.Data.Bundles[label]
		out.SubHeader(label)
		for _, metric := range types.AllMetrics() {
			series, ok := bundle.Series[metric]
			if !ok {
				continue
			}
			if result.Spec.Annotate {
				values := make([]string, series.Len())
				for i, v := range series.Values {
					values[i] = FormatValue(v)
				}
				out.Println("  %-10s %s", metric.String(), strings.Join(values, " "))
			} else if series.Len() > 0 {
				out.Println("  %-10s latest %s", metric.String(), FormatValue(series.Values[series.Len()-1]))
			}
		}
		if result.Spec.Aligned && bundle.Shift != 0 {
			out.Dimmed("  shifted by %d days", bundle.Shift)
		}
		if result.Spec.Aligned && bundle.BelowThreshold {
			out.Warning("%s never reached the alignment threshold", label)
		}
		out.Println("")
	}

	return nil
}

// FormatValue renders a sample for annotation: integer counts with a
// thousands separator, per-capita rates with two decimals.
func FormatValue(v decimal.Decimal) string {
	if v.IsInteger() {
		return GroupDigits(v.String())
	}
	return v.StringFixed(2)
}

// GroupDigits inserts a ' separator every three digits (1234567 ->
// 1'234'567).
func GroupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	s = strings.Join(groups, "'")
	if neg {
		return "-" + s
	}
	return s
}
