// Package resample maps a ground-truth melody annotation onto the salience
// frame timebase.
package resample

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/farcloser/meristem/internal/types"
)

var (
	errEmptyTruth        = errors.New("empty ground-truth series")
	errTruthNotMonotonic = errors.New("ground-truth timestamps not strictly increasing")
)

// Linear resamples frequencies by piecewise-linear interpolation and
// propagates the voicing flag by nearest neighbor. Voicing is decided at the
// original annotation resolution (frequency > 0) before any interpolation, so
// interpolated frequency values never flip a frame's voicing on their own.
// Target timestamps outside the annotated span hold the nearest endpoint.
type Linear struct{}

// Resample re-expresses truth on the target timebase. The returned series is
// aligned 1:1 with target.
func (Linear) Resample(truth *types.TruthSeries, target []float64) (*types.ResampledTruth, error) {
	if len(truth.Times) == 0 {
		return nil, fmt.Errorf("resample: %w", errEmptyTruth)
	}

	// The interpolator panics on unsorted abscissae, so reject them here.
	for i := 1; i < len(truth.Times); i++ {
		if truth.Times[i] <= truth.Times[i-1] {
			return nil, fmt.Errorf("resample: at point %d: %w", i+1, errTruthNotMonotonic)
		}
	}

	out := &types.ResampledTruth{
		Freqs:  make([]float64, len(target)),
		Voiced: make([]bool, len(target)),
	}

	voicing := make([]bool, len(truth.Times))
	for i := range truth.Times {
		voicing[i] = truth.Voiced(i)
	}

	// Single annotation point degenerates to a constant series.
	if len(truth.Times) == 1 {
		for i := range target {
			out.Freqs[i] = truth.Freqs[0]
			out.Voiced[i] = voicing[0]
		}

		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(truth.Times, truth.Freqs); err != nil {
		return nil, fmt.Errorf("resample: fitting ground truth: %w", err)
	}

	first := truth.Times[0]
	last := truth.Times[len(truth.Times)-1]

	for i, t := range target {
		clamped := t
		if clamped < first {
			clamped = first
		} else if clamped > last {
			clamped = last
		}

		out.Freqs[i] = pl.Predict(clamped)
		out.Voiced[i] = voicing[nearestIndex(truth.Times, clamped)]
	}

	return out, nil
}

// nearestIndex returns the index of the closest timestamp to t. Equidistant
// targets resolve to the earlier timestamp.
func nearestIndex(times []float64, t float64) int {
	i := sort.SearchFloat64s(times, t)
	if i == 0 {
		return 0
	}

	if i == len(times) {
		return len(times) - 1
	}

	if times[i]-t < t-times[i-1] {
		return i
	}

	return i - 1
}
