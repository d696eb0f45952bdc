// Package meristem scores a melody-salience function against a ground-truth
// pitch annotation for a single excerpt.
package meristem

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/meristem/internal/dataset"
	"github.com/farcloser/meristem/internal/peaks"
	"github.com/farcloser/meristem/internal/resample"
	"github.com/farcloser/meristem/internal/scale"
	"github.com/farcloser/meristem/internal/types"
)

/*
Usage:

result, err := meristem.EvaluateFile("excerpt.salience.csv", "excerpt.melody.tsv", meristem.DefaultOptions())
fmt.Printf("mean deviation: %.1f cents\n", result.Summarize().Deviation.Mean)

// Whitespace-delimited salience dialect
opts := meristem.DefaultOptions()
opts.Dialect = meristem.DialectWhitespace
result, err := meristem.EvaluateFile(saliencePath, truthPath, opts)

// Pre-loaded data, custom peak widths
opts := meristem.DefaultOptions()
opts.WidthMin, opts.WidthMax = 2, 12
result, err := meristem.Evaluate(matrix, truth, opts)

// Deterministic collaborators for testing
opts.Resampler = stubResampler
opts.Detector = stubDetector
*/

// Dialect aliases for the salience-file delimiter conventions.
const (
	DialectComma      = types.DialectComma
	DialectWhitespace = types.DialectWhitespace
)

// ParseDialect converts a string to a salience dialect.
func ParseDialect(s string) (types.Dialect, error) {
	switch s {
	case "csv", "":
		return types.DialectComma, nil
	case "ssv":
		return types.DialectWhitespace, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q (valid: csv, ssv)", s)
	}
}

// Resampler maps a ground-truth series onto a target timebase. The returned
// series must align 1:1 with target.
type Resampler interface {
	Resample(truth *types.TruthSeries, target []float64) (*types.ResampledTruth, error)
}

// PeakDetector finds candidate peak indices in one salience frame. The
// returned indices must be valid positions in frame and deterministic for a
// fixed input; their order is otherwise unspecified.
type PeakDetector interface {
	Detect(frame []float64) ([]int, error)
}

// Options configures an evaluation.
type Options struct {
	// Dialect selects the salience-file delimiter convention (EvaluateFile only).
	Dialect types.Dialect

	// WidthMin and WidthMax bound the candidate peak widths in bin units,
	// inclusive (defaults: 3 and 9). Ignored when Detector is set.
	WidthMin int
	WidthMax int

	// Resampler and Detector override the default collaborators, mainly so
	// tests can substitute deterministic stubs.
	Resampler Resampler
	Detector  PeakDetector
}

// DefaultOptions returns the standard evaluation configuration.
func DefaultOptions() Options {
	return Options{
		Dialect:  types.DialectComma,
		WidthMin: 3,
		WidthMax: 9,
	}
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.WidthMin == 0 {
		opts.WidthMin = defaults.WidthMin
	}

	if opts.WidthMax == 0 {
		opts.WidthMax = defaults.WidthMax
	}

	if opts.Resampler == nil {
		opts.Resampler = resample.Linear{}
	}

	if opts.Detector == nil {
		opts.Detector = peaks.NewCWT(peaks.Options{
			WidthMin: opts.WidthMin,
			WidthMax: opts.WidthMax,
		})
	}
}

// Result holds the four per-frame score sequences. The sequences are parallel:
// entry i of each belongs to the i-th qualifying frame (voiced with at least
// one detected peak), in frame order.
type Result struct {
	// Deviation is the absolute distance between the melody peak and the
	// ground-truth pitch, in cents. Zero means an exact match.
	Deviation []float64

	// ReciprocalRank is 1/rank of the melody peak's salience among all
	// candidate peaks in the frame, in (0, 1]. Duplicate salience values
	// share the best rank.
	ReciprocalRank []float64

	// Salience1 is the melody peak salience over the frame's maximum peak
	// salience, in (0, 1].
	Salience1 []float64

	// Salience3 is the melody peak salience over the mean of the top-3 peak
	// saliences (mean of all peaks when fewer than 3 exist). May exceed 1
	// in the fewer-than-3 case.
	Salience3 []float64

	// Frame accounting. Frames = UnvoicedSkips + PeaklessSkips + ScoredFrames.
	Frames        int
	UnvoicedSkips int
	PeaklessSkips int
	ScoredFrames  int
}

// EvaluateFile loads a salience matrix and a ground-truth pitch track from
// disk and evaluates them. The salience file obeys opts.Dialect; the
// ground-truth file is always tab-delimited.
func EvaluateFile(saliencePath, truthPath string, opts Options) (*Result, error) {
	matrix, err := dataset.LoadSalience(saliencePath, opts.Dialect)
	if err != nil {
		return nil, err
	}

	truth, err := dataset.LoadTruth(truthPath)
	if err != nil {
		return nil, err
	}

	return Evaluate(matrix, truth, opts)
}

// Evaluate resamples truth onto the salience timebase and scores every voiced
// frame that has at least one detected peak. A valid input pair with zero
// qualifying frames yields four empty sequences, not an error. On error no
// partial result is returned.
func Evaluate(matrix *types.SalienceMatrix, truth *types.TruthSeries, opts Options) (*Result, error) {
	applyDefaults(&opts)

	if len(matrix.Frames) == 0 {
		return nil, dataset.ErrEmptyInput
	}

	resampled, err := opts.Resampler.Resample(truth, matrix.Times)
	if err != nil {
		return nil, err
	}

	if len(resampled.Freqs) != len(matrix.Times) || len(resampled.Voiced) != len(matrix.Times) {
		return nil, fmt.Errorf("resampler returned %d frames for a %d-frame timebase",
			len(resampled.Freqs), len(matrix.Times))
	}

	result := &Result{Frames: len(matrix.Frames)}

	for n, frame := range matrix.Frames {
		truthFreq := resampled.Freqs[n]

		if !resampled.Voiced[n] || truthFreq <= 0 {
			result.UnvoicedSkips++

			continue
		}

		indices, err := opts.Detector.Detect(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", n, err)
		}

		if len(indices) == 0 {
			result.PeaklessSkips++

			continue
		}

		values := make([]float64, len(indices))
		for i, bin := range indices {
			values[i] = frame[bin]
		}

		melody := nearestPeak(indices, scale.FreqToBin(truthFreq))
		melodyValue := frame[melody]
		melodyFreq := scale.BinToFreq(float64(melody))

		result.Deviation = append(result.Deviation, scale.CentsBetween(melodyFreq, truthFreq))
		result.ReciprocalRank = append(result.ReciprocalRank, reciprocalRank(values, melodyValue))
		result.Salience1 = append(result.Salience1, melodyValue/floats.Max(values))
		result.Salience3 = append(result.Salience3, melodyValue/topMean(values, 3))
		result.ScoredFrames++
	}

	return result, nil
}

// nearestPeak returns the candidate bin closest to the fractional target
// position. Ties keep the earlier candidate in iteration order.
func nearestPeak(indices []int, target float64) int {
	best := indices[0]
	bestDistance := distance(best, target)

	for _, bin := range indices[1:] {
		if d := distance(bin, target); d < bestDistance {
			best = bin
			bestDistance = d
		}
	}

	return best
}

func distance(bin int, target float64) float64 {
	d := float64(bin) - target
	if d < 0 {
		return -d
	}

	return d
}

// reciprocalRank returns 1/rank of value among values ranked by descending
// salience. Duplicates share the best rank: rank is one more than the number
// of values strictly greater.
func reciprocalRank(values []float64, value float64) float64 {
	rank := 1

	for _, v := range values {
		if v > value {
			rank++
		}
	}

	return 1 / float64(rank)
}

// topMean returns the mean of the k largest values, or the mean of all values
// when fewer than k exist.
func topMean(values []float64, k int) float64 {
	if len(values) < k {
		return stat.Mean(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	return stat.Mean(sorted[:k], nil)
}
