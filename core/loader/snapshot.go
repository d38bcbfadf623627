// Package loader - daily snapshot tables
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"caseplot/core/types"
	"caseplot/internal/errors"
	"caseplot/internal/logging"
)

// snapshotDateFormat is the MM-DD-YYYY file identifier format.
const snapshotDateFormat = "01-02-2006"

// Snapshot holds one day's cumulative counts per area, summed over
// sub-areas. Areas absent from the file are absent from Counts.
type Snapshot struct {
	Date   time.Time
	Counts map[string]map[types.Metric]decimal.Decimal
}

// LoadSnapshots reads every MM-DD-YYYY.csv file in dir, keeping only
// the requested areas, and returns the snapshots in ascending date order.
func LoadSnapshots(dir string, areas map[string]bool) ([]*Snapshot, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot list snapshot tables in %s", dir)
	}

	var snapshots []*Snapshot
	for _, path := range paths {
		date, err := parseSnapshotDate(path)
		if err != nil {
			return nil, err
		}
		snap, err := loadSnapshotFile(path, date, areas)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})

	logging.Debug("loaded snapshot tables",
		zap.String("dir", dir),
		zap.Int("files", len(snapshots)))

	return snapshots, nil
}

// ListAreas returns the sorted unique Country/Region values across all
// snapshot tables in dir.
func ListAreas(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot list snapshot tables in %s", dir)
	}

	seen := make(map[string]bool)
	for _, path := range paths {
		if err := collectAreas(path, seen); err != nil {
			return nil, err
		}
	}

	areas := make([]string, 0, len(seen))
	for area := range seen {
		areas = append(areas, area)
	}
	sort.Strings(areas)
	return areas, nil
}

func collectAreas(path string, seen map[string]bool) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.TypeInput, err, "cannot open snapshot table %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return errors.Wrapf(errors.TypeParsing, err, "cannot read header of %s", path)
	}
	countryIdx := indexOf(header, colCountry)
	if countryIdx < 0 {
		return errors.Newf(errors.TypeParsing, "%s is missing the Country/Region column", path)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(errors.TypeParsing, err, "cannot read row of %s", path)
		}
		if area := strings.TrimSpace(record[countryIdx]); area != "" {
			seen[area] = true
		}
	}
}

// parseSnapshotDate derives the snapshot date from the file name.
func parseSnapshotDate(path string) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".csv")
	date, err := time.Parse(snapshotDateFormat, base)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.TypeParsing, err, "malformed snapshot file name %q", base)
	}
	return date, nil
}

func loadSnapshotFile(path string, date time.Time, areas map[string]bool) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot open snapshot table %s", path)
	}
	defer file.Close()

	return readSnapshot(file, date, areas, path)
}

func readSnapshot(r io.Reader, date time.Time, areas map[string]bool, name string) (*Snapshot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "cannot read header of %s", name)
	}

	countryIdx := indexOf(header, colCountry)
	if countryIdx < 0 {
		return nil, errors.Newf(errors.TypeParsing, "%s is missing the Country/Region column", name)
	}
	metricIdx := map[types.Metric]int{
		types.MetricConfirmed: indexOf(header, "Confirmed"),
		types.MetricDeaths:    indexOf(header, "Deaths"),
		types.MetricRecovered: indexOf(header, "Recovered"),
	}

	snap := &Snapshot{
		Date:   date,
		Counts: make(map[string]map[types.Metric]decimal.Decimal),
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "cannot read row of %s", name)
		}

		area := strings.TrimSpace(record[countryIdx])
		if !areas[area] {
			continue
		}

		counts, ok := snap.Counts[area]
		if !ok {
			counts = make(map[types.Metric]decimal.Decimal)
			snap.Counts[area] = counts
		}
		for metric, idx := range metricIdx {
			// Missing or blank snapshot cells count as zero.
			var n int64
			if idx >= 0 && idx < len(record) {
				cell := strings.TrimSpace(record[idx])
				if cell != "" {
					n, err = strconv.ParseInt(cell, 10, 64)
					if err != nil {
						return nil, errors.Wrapf(errors.TypeParsing, err,
							"non-numeric %s count for %s in %s", metric, area, name)
					}
				}
			}
			counts[metric] = counts[metric].Add(decimal.NewFromInt(n))
		}
	}

	return snap, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
