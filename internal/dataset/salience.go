// Package dataset loads salience matrices and ground-truth pitch tracks from
// their on-disk representations.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/meristem/internal/types"
)

// LoadSalience reads a salience-matrix file: one row per frame, first column
// the frame timestamp, remaining columns per-bin salience values. The dialect
// selects the delimiter convention. Rows must be rectangular and timestamps
// strictly increasing.
func LoadSalience(path string, dialect types.Dialect) (*types.SalienceMatrix, error) {
	file, err := os.Open(path) //nolint:gosec // caller-specified data file
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	var rows [][]string

	switch dialect {
	case types.DialectComma:
		rows, err = readCommaRows(file)
	case types.DialectWhitespace:
		rows, err = readWhitespaceRows(file)
	default:
		return nil, fmt.Errorf("%w: unknown dialect %d", ErrFormat, dialect)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}

	bins := len(rows[0]) - 1
	if bins < 1 {
		return nil, fmt.Errorf("%s:1: %w: expected a timestamp and at least one bin, got %d fields",
			path, ErrFormat, len(rows[0]))
	}

	matrix := &types.SalienceMatrix{
		Times:  make([]float64, len(rows)),
		Frames: make([][]float64, len(rows)),
		Bins:   bins,
	}

	for i, fields := range rows {
		line := i + 1

		if len(fields) != bins+1 {
			return nil, fmt.Errorf("%s:%d: %w: expected %d fields, got %d",
				path, line, ErrFormat, bins+1, len(fields))
		}

		values, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w: %w", path, line, ErrFormat, err)
		}

		matrix.Times[i] = values[0]
		matrix.Frames[i] = values[1:]

		if i > 0 && matrix.Times[i] <= matrix.Times[i-1] {
			return nil, fmt.Errorf("%s:%d: %w", path, line, ErrNotMonotonic)
		}
	}

	return matrix, nil
}

func readCommaRows(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // raggedness reported with our own line context
	csvReader.TrimLeadingSpace = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	return rows, nil
}

func readWhitespaceRows(reader io.Reader) ([][]string, error) {
	var rows [][]string

	scanner := bufio.NewScanner(reader)

	const maxLineSize = 4 * 1024 * 1024 // wide matrices: thousands of bins per row
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue // blank line
		}

		rows = append(rows, fields)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return rows, nil
}

func parseRow(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))

	for i, field := range fields {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}

		values[i] = value
	}

	return values, nil
}
