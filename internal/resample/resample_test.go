package resample_test

import (
	"math"
	"testing"

	"github.com/farcloser/meristem/internal/resample"
	"github.com/farcloser/meristem/internal/types"
)

func TestResampleIdentityOnSameGrid(t *testing.T) {
	truth := &types.TruthSeries{
		Times: []float64{0, 0.01, 0.02, 0.03},
		Freqs: []float64{220, 230, 0, 240},
	}

	out, err := resample.Linear{}.Resample(truth, truth.Times)
	if err != nil {
		t.Fatal(err)
	}

	for i, freq := range truth.Freqs {
		if out.Freqs[i] != freq {
			t.Errorf("Freqs[%d] = %v, want %v", i, out.Freqs[i], freq)
		}

		if out.Voiced[i] != (freq > 0) {
			t.Errorf("Voiced[%d] = %v, want %v", i, out.Voiced[i], freq > 0)
		}
	}
}

func TestResampleLinearMidpoint(t *testing.T) {
	truth := &types.TruthSeries{
		Times: []float64{0, 0.02},
		Freqs: []float64{200, 300},
	}

	out, err := resample.Linear{}.Resample(truth, []float64{0.01})
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(out.Freqs[0]-250) > 1e-9 {
		t.Errorf("midpoint = %v, want 250", out.Freqs[0])
	}

	if !out.Voiced[0] {
		t.Error("midpoint between voiced points should be voiced")
	}
}

func TestResampleClampsOutOfSpan(t *testing.T) {
	truth := &types.TruthSeries{
		Times: []float64{0.1, 0.2},
		Freqs: []float64{220, 0},
	}

	out, err := resample.Linear{}.Resample(truth, []float64{0.0, 0.3})
	if err != nil {
		t.Fatal(err)
	}

	if out.Freqs[0] != 220 || !out.Voiced[0] {
		t.Errorf("before span: got (%v, %v), want (220, true)", out.Freqs[0], out.Voiced[0])
	}

	if out.Freqs[1] != 0 || out.Voiced[1] {
		t.Errorf("after span: got (%v, %v), want (0, false)", out.Freqs[1], out.Voiced[1])
	}
}

func TestResampleVoicingIsNearestNeighbor(t *testing.T) {
	truth := &types.TruthSeries{
		Times: []float64{0, 0.1},
		Freqs: []float64{220, 0},
	}

	out, err := resample.Linear{}.Resample(truth, []float64{0.02, 0.08})
	if err != nil {
		t.Fatal(err)
	}

	// The frequency interpolates through the unvoiced zero, but voicing
	// follows the nearest annotation point.
	if !out.Voiced[0] {
		t.Error("target near voiced point should be voiced")
	}

	if out.Voiced[1] {
		t.Error("target near unvoiced point should be unvoiced")
	}
}

func TestResampleSinglePoint(t *testing.T) {
	truth := &types.TruthSeries{
		Times: []float64{0.5},
		Freqs: []float64{330},
	}

	out, err := resample.Linear{}.Resample(truth, []float64{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	for i := range out.Freqs {
		if out.Freqs[i] != 330 || !out.Voiced[i] {
			t.Errorf("entry %d = (%v, %v), want (330, true)", i, out.Freqs[i], out.Voiced[i])
		}
	}
}

func TestResampleNonMonotonicTruth(t *testing.T) {
	truth := &types.TruthSeries{
		Times: []float64{0, 0.01, 0.01, 0.02},
		Freqs: []float64{220, 220, 221, 222},
	}

	// A duplicated timestamp must surface as an error, not as an
	// interpolator panic.
	if _, err := (resample.Linear{}).Resample(truth, []float64{0.005}); err == nil {
		t.Fatal("expected error for non-monotonic ground truth")
	}
}

func TestResampleEmptyTruth(t *testing.T) {
	if _, err := (resample.Linear{}).Resample(&types.TruthSeries{}, []float64{0}); err == nil {
		t.Fatal("expected error for empty ground truth")
	}
}
