// Package loader reads the delimited source tables and produces
// normalized per-area daily observations.
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"caseplot/core/types"
	"caseplot/internal/errors"
	"caseplot/internal/logging"
)

// Wide-table fixed columns preceding the date columns.
const (
	colProvince = "Province/State"
	colCountry  = "Country/Region"
	colLat      = "Lat"
	colLong     = "Long"
)

// WideOptions controls wide-table loading
type WideOptions struct {
	// Areas is the set of requested area names; rows whose trimmed
	// Country/Region is not in the set are discarded
	Areas map[string]bool

	// Metric is the metric the whole table carries
	Metric types.Metric

	// StartDate drops observations strictly before it when non-zero
	StartDate time.Time
}

// LoadWide reads a wide time-series table (one row per area/sub-area,
// one column per date) and returns the retained observations.
func LoadWide(path string, opts WideOptions) ([]types.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot open time-series table %s", path)
	}
	defer file.Close()

	obs, err := ReadWide(file, opts)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e.WithContext("file", path)
		}
		return nil, err
	}
	return obs, nil
}

// ReadWide reads a wide time-series table from a reader.
func ReadWide(r io.Reader, opts WideOptions) ([]types.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Parsing("cannot read table header", err)
	}

	provinceIdx, countryIdx := -1, -1
	dates := make(map[int]time.Time)
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case colProvince:
			provinceIdx = i
		case colCountry:
			countryIdx = i
		case colLat, colLong:
			// coordinate columns carry no counts
		default:
			date, err := parseHeaderDate(strings.TrimSpace(h))
			if err != nil {
				return nil, err
			}
			dates[i] = date
		}
	}
	if countryIdx < 0 {
		return nil, errors.New(errors.TypeParsing, "table header is missing the Country/Region column")
	}

	var observations []types.Observation
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parsing("cannot read table row", err)
		}

		area := strings.TrimSpace(record[countryIdx])
		if !opts.Areas[area] {
			continue
		}
		subArea := ""
		if provinceIdx >= 0 {
			subArea = strings.TrimSpace(record[provinceIdx])
		}

		rows++
		for i, cell := range record {
			date, ok := dates[i]
			if !ok {
				continue
			}
			if !opts.StartDate.IsZero() && date.Before(opts.StartDate) {
				continue
			}
			count, err := parseCount(cell)
			if err != nil {
				return nil, errors.Wrapf(errors.TypeParsing, err,
					"non-numeric count for %s on %s", area, date.Format("2006-01-02"))
			}
			observations = append(observations, types.Observation{
				Area:    area,
				SubArea: subArea,
				Date:    date,
				Metric:  opts.Metric,
				Count:   count,
			})
		}
	}

	logging.Debug("loaded wide table",
		zap.String("metric", opts.Metric.String()),
		zap.Int("rows", rows),
		zap.Int("observations", len(observations)))

	return observations, nil
}

// parseHeaderDate parses a M/D/YY date column header. The two-digit
// year is offset by 2000; month and day are not zero-padded.
func parseHeaderDate(s string) (time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, errors.Newf(errors.TypeParsing, "malformed date column %q", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.TypeParsing, err, "malformed date column %q", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.TypeParsing, err, "malformed date column %q", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.TypeParsing, err, "malformed date column %q", s)
	}
	return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// parseCount parses a wide-table count cell. Blank or non-numeric
// cells are a parse error; the dataset is assumed well-formed.
func parseCount(s string) (decimal.Decimal, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(n), nil
}
