package dataset

import "errors"

var (
	// ErrEmptyInput means a required input file parsed to zero rows.
	ErrEmptyInput = errors.New("input file contains no rows")
	// ErrFormat means file content does not parse into the expected
	// rectangular numeric layout.
	ErrFormat = errors.New("malformed input")
	// ErrNotMonotonic means salience frame timestamps are not strictly
	// increasing.
	ErrNotMonotonic = errors.New("timestamps are not strictly increasing")
)
