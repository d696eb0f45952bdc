package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/meristem/internal/types"
)

// LoadTruth reads a ground-truth pitch track: tab-delimited rows of
// timestamp and frequency in Hz, where frequency <= 0 denotes an unvoiced
// point. The convention is fixed across both salience dialects.
func LoadTruth(path string) (*types.TruthSeries, error) {
	file, err := os.Open(path) //nolint:gosec // caller-specified data file
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	csvReader := csv.NewReader(file)
	csvReader.Comma = '\t'
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrFormat, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}

	truth := &types.TruthSeries{
		Times: make([]float64, len(rows)),
		Freqs: make([]float64, len(rows)),
	}

	for i, fields := range rows {
		line := i + 1

		if len(fields) < 2 {
			return nil, fmt.Errorf("%s:%d: %w: expected timestamp and frequency, got %d fields",
				path, line, ErrFormat, len(fields))
		}

		values, err := parseRow(fields[:2])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w: %w", path, line, ErrFormat, err)
		}

		truth.Times[i] = values[0]
		truth.Freqs[i] = values[1]

		if i > 0 && truth.Times[i] <= truth.Times[i-1] {
			return nil, fmt.Errorf("%s:%d: %w", path, line, ErrNotMonotonic)
		}
	}

	return truth, nil
}
