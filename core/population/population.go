// Package population loads the population reference table and rescales
// count series into per-capita rates.
package population

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"caseplot/core/types"
	"caseplot/internal/errors"
	"caseplot/internal/logging"
)

// perCapitaBase: rates are expressed per 100'000 inhabitants.
var perCapitaBase = decimal.NewFromInt(100000)

// Load reads a "Country, Value" table into an immutable lookup
func Load(path string) (*types.PopulationTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot open population table %s", path)
	}
	defer file.Close()

	return Read(file)
}

// Read reads a population table from a reader
func Read(r io.Reader) (*types.PopulationTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Parsing("cannot read population table header", err)
	}
	countryIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "Country":
			countryIdx = i
		case "Value":
			valueIdx = i
		}
	}
	if countryIdx < 0 || valueIdx < 0 {
		return nil, errors.New(errors.TypeParsing, "population table header must contain Country and Value columns")
	}

	counts := make(map[string]decimal.Decimal)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parsing("cannot read population table row", err)
		}
		area := strings.TrimSpace(record[countryIdx])
		n, err := strconv.ParseInt(strings.TrimSpace(record[valueIdx]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "non-numeric population for %s", area)
		}
		// A zero population would make the per-capita divisor zero.
		if n <= 0 {
			return nil, errors.Newf(errors.TypeParsing, "non-positive population for %s: %d", area, n)
		}
		counts[area] = decimal.NewFromInt(n)
	}

	logging.Debug("loaded population table", zap.Int("areas", len(counts)))

	return types.NewPopulationTable(counts), nil
}

// Normalizer rescales count series by population. It holds an immutable
// table passed in at construction; there is no ambient cache.
type Normalizer struct {
	table *types.PopulationTable
}

// NewNormalizer creates a normalizer over a loaded table
func NewNormalizer(table *types.PopulationTable) *Normalizer {
	return &Normalizer{table: table}
}

// Normalize rescales every series of every bundle in place, dividing
// each value by population/100'000. All areas are checked against the
// table before any value is rescaled, so a missing area aborts the whole
// data set untouched.
func (n *Normalizer) Normalize(data *types.DataSet) error {
	scales := make(map[string]decimal.Decimal, data.Len())
	for _, label := range data.Labels {
		pop, ok := n.table.Lookup(label)
		if !ok {
			return errors.Lookup(label)
		}
		scales[label] = pop.Div(perCapitaBase)
	}

	for _, label := range data.Labels {
		scale := scales[label]
		bundle := data.Bundles[label]
		for _, series := range bundle.Series {
			for i, v := range series.Values {
				series.Values[i] = v.Div(scale)
			}
		}
	}
	return nil
}
