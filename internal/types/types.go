// Package types holds the data structures shared between the loaders, the
// collaborators, and the metric engine.
package types

// Dialect selects the field-delimiter convention of a salience-matrix file.
// The ground-truth convention is fixed (tab-delimited) regardless of dialect.
type Dialect int

const (
	// DialectComma is the comma-delimited salience variant.
	DialectComma Dialect = iota
	// DialectWhitespace is the whitespace-run-delimited salience variant.
	DialectWhitespace
)

func (d Dialect) String() string {
	switch d {
	case DialectComma:
		return "csv"
	case DialectWhitespace:
		return "ssv"
	}

	return "unknown"
}

/*
Salience matrix layout

One row per analysis frame. The first column is the frame timestamp in
seconds, the remaining K columns are non-negative salience values, one per
frequency bin. Bin b maps to frequency via the fixed scale

	f(b) = 55 * 2^(b/120)

(120 bins per octave, origin 55 Hz). The salience source and any
frequency-to-bin conversion of ground truth must share this scale; a
mismatched resolution silently corrupts every downstream metric.
*/

// SalienceMatrix is a loaded time/frequency-bin salience function.
type SalienceMatrix struct {
	Times  []float64   // frame timestamps, strictly increasing
	Frames [][]float64 // Frames[n][b] = salience of bin b at frame n
	Bins   int         // bins per frame (rectangular)
}

// TruthSeries is a ground-truth melody annotation on its own (irregular)
// timebase. Frequency <= 0 denotes an unvoiced point (melody absent).
type TruthSeries struct {
	Times []float64
	Freqs []float64
}

// Voiced reports whether the annotation at index i carries a melodic pitch.
func (t *TruthSeries) Voiced(i int) bool {
	return t.Freqs[i] > 0
}

// ResampledTruth is a ground-truth series re-expressed on the salience
// timebase, one entry per salience frame.
type ResampledTruth struct {
	Freqs  []float64
	Voiced []bool
}
