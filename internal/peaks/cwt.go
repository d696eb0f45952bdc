// Package peaks implements continuous-wavelet-transform peak picking over a
// one-dimensional salience frame.
//
// The detector convolves the frame with Ricker (Mexican-hat) wavelets across
// a range of candidate peak widths, links per-width local maxima into ridge
// lines, and keeps ridges that persist across enough widths with sufficient
// signal-to-noise. Output is deterministic for a fixed input.
package peaks

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Options configures the CWT detector.
type Options struct {
	// WidthMin and WidthMax bound the candidate peak widths, inclusive,
	// in bin units.
	WidthMin int
	WidthMax int

	// GapThreshold is the number of consecutive widths a ridge line may
	// skip before it is closed (default: WidthMin).
	GapThreshold int

	// MinRidgeLength is the minimum number of widths a ridge must span
	// (default: one quarter of the width count, rounded up).
	MinRidgeLength int

	// MinSNR is the minimum ratio between a ridge's response at its
	// narrowest width and the local noise level (default: 1).
	MinSNR float64

	// NoisePercentile is the percentile of the narrowest-width response
	// magnitude used as the noise level (default: 10).
	NoisePercentile float64
}

// DefaultOptions returns the detector defaults: widths 3 through 9.
func DefaultOptions() Options {
	return Options{
		WidthMin:        3,
		WidthMax:        9,
		MinSNR:          1,
		NoisePercentile: 10,
	}
}

// CWT is a wavelet-ridge peak detector.
type CWT struct {
	opts Options
}

// NewCWT builds a detector. Zero-valued options fall back to defaults.
func NewCWT(opts Options) *CWT {
	defaults := DefaultOptions()

	if opts.WidthMin == 0 {
		opts.WidthMin = defaults.WidthMin
	}

	if opts.WidthMax == 0 {
		opts.WidthMax = defaults.WidthMax
	}

	if opts.WidthMax < opts.WidthMin {
		opts.WidthMax = opts.WidthMin
	}

	if opts.GapThreshold == 0 {
		opts.GapThreshold = opts.WidthMin
	}

	if opts.MinRidgeLength == 0 {
		widthCount := opts.WidthMax - opts.WidthMin + 1
		opts.MinRidgeLength = int(math.Ceil(float64(widthCount) / 4))
	}

	if opts.MinSNR == 0 {
		opts.MinSNR = defaults.MinSNR
	}

	if opts.NoisePercentile == 0 {
		opts.NoisePercentile = defaults.NoisePercentile
	}

	return &CWT{opts: opts}
}

// Detect returns the indices of candidate peaks in signal, ascending.
func (c *CWT) Detect(signal []float64) ([]int, error) {
	if len(signal) < 3 {
		return nil, nil
	}

	widths := make([]int, 0, c.opts.WidthMax-c.opts.WidthMin+1)
	for w := c.opts.WidthMin; w <= c.opts.WidthMax; w++ {
		widths = append(widths, w)
	}

	matrix := transform(signal, widths)

	ridges := identifyRidges(matrix, widths, c.opts.GapThreshold)
	ridges = c.filterRidges(matrix, ridges, len(signal))

	locs := make([]int, 0, len(ridges))
	for _, line := range ridges {
		// Localize at the narrowest width the ridge reaches.
		locs = append(locs, line.cols[0])
	}

	sort.Ints(locs)

	return locs, nil
}

// transform computes one convolution row per width, each aligned with the
// input signal ("same" mode).
func transform(signal []float64, widths []int) [][]float64 {
	n := len(signal)
	matrix := make([][]float64, len(widths))

	for i, width := range widths {
		// The kernel length must be odd so the wavelet centers on a sample.
		// An even kernel sits half a sample off and smears a symmetric peak
		// into a two-sample plateau that strict maxima reject.
		length := min(10*width, n)
		if length%2 == 0 {
			length++
		}

		wavelet := ricker(length, float64(width))
		matrix[i] = convolveSame(signal, wavelet)
	}

	return matrix
}

// ricker samples a Ricker wavelet of the given scale over points samples,
// centered on the sample grid.
func ricker(points int, scale float64) []float64 {
	amplitude := 2 / (math.Sqrt(3*scale) * math.Pow(math.Pi, 0.25))
	center := float64(points-1) / 2
	wavelet := make([]float64, points)

	for i := range wavelet {
		x := float64(i) - center
		ratio := (x * x) / (scale * scale)
		wavelet[i] = amplitude * (1 - ratio) * math.Exp(-ratio/2)
	}

	return wavelet
}

// convolveSame convolves signal with kernel via the frequency domain and
// returns the centered len(signal) samples of the full convolution.
func convolveSame(signal, kernel []float64) []float64 {
	n := len(signal)
	m := len(kernel)

	full := n + m - 1
	size := nextPow2(full)

	fft := fourier.NewFFT(size)

	padSignal := make([]float64, size)
	copy(padSignal, signal)

	padKernel := make([]float64, size)
	copy(padKernel, kernel)

	coeffSignal := fft.Coefficients(nil, padSignal)
	coeffKernel := fft.Coefficients(nil, padKernel)

	for i := range coeffSignal {
		coeffSignal[i] *= coeffKernel[i]
	}

	product := fft.Sequence(nil, coeffSignal)

	// The gonum transform is unnormalized: a round trip scales by size.
	out := make([]float64, n)
	start := (m - 1) / 2

	var maxAbs float64

	for i := range out {
		out[i] = product[start+i] / float64(size)
		if a := math.Abs(out[i]); a > maxAbs {
			maxAbs = a
		}
	}

	// FFT round-off leaves jitter where a direct convolution would be zero.
	// Clamp it so flat regions stay flat and yield no spurious maxima.
	threshold := maxAbs * 1e-12
	for i, v := range out {
		if math.Abs(v) < threshold {
			out[i] = 0
		}
	}

	return out
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}

// ridge is a chain of per-width local maxima. rows and cols are parallel and
// sorted by ascending width index.
type ridge struct {
	rows []int
	cols []int
	gap  int
}

// relativeMaxima returns the indices of samples strictly greater than both
// neighbors.
func relativeMaxima(row []float64) []int {
	var maxima []int

	for i := 1; i < len(row)-1; i++ {
		if row[i] > row[i-1] && row[i] > row[i+1] {
			maxima = append(maxima, i)
		}
	}

	return maxima
}

// identifyRidges links local maxima across widths, walking from the widest
// row with any maximum down to the narrowest. A maximum joins the ridge whose
// latest column is closest, provided the distance is within a quarter of the
// row's width; otherwise it opens a new ridge. Ridges that go unmatched for
// more than gapThresh consecutive rows are closed.
func identifyRidges(matrix [][]float64, widths []int, gapThresh int) []ridge {
	maxima := make([][]int, len(matrix))

	startRow := -1

	for i, row := range matrix {
		maxima[i] = relativeMaxima(row)
		if len(maxima[i]) > 0 {
			startRow = i
		}
	}

	if startRow < 0 {
		return nil
	}

	var active, closed []*ridge

	for _, col := range maxima[startRow] {
		active = append(active, &ridge{rows: []int{startRow}, cols: []int{col}})
	}

	for row := startRow - 1; row >= 0; row-- {
		for _, line := range active {
			line.gap++
		}

		maxDistance := float64(widths[row]) / 4

		for _, col := range maxima[row] {
			var best *ridge

			bestDiff := math.MaxFloat64

			for _, line := range active {
				diff := math.Abs(float64(col - line.cols[len(line.cols)-1]))
				if diff < bestDiff {
					bestDiff = diff
					best = line
				}
			}

			if best != nil && bestDiff <= maxDistance {
				best.rows = append(best.rows, row)
				best.cols = append(best.cols, col)
				best.gap = 0
			} else {
				active = append(active, &ridge{rows: []int{row}, cols: []int{col}})
			}
		}

		kept := active[:0]

		for _, line := range active {
			if line.gap > gapThresh {
				closed = append(closed, line)
			} else {
				kept = append(kept, line)
			}
		}

		active = kept
	}

	all := append(closed, active...)
	out := make([]ridge, 0, len(all))

	for _, line := range all {
		out = append(out, sortRidge(line))
	}

	return out
}

// sortRidge orders a ridge by ascending row (narrowest width first). Rows are
// appended in descending order during linking, so a reversal suffices.
func sortRidge(line *ridge) ridge {
	n := len(line.rows)
	sorted := ridge{rows: make([]int, n), cols: make([]int, n)}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool { return line.rows[order[a]] < line.rows[order[b]] })

	for i, idx := range order {
		sorted.rows[i] = line.rows[idx]
		sorted.cols[i] = line.cols[idx]
	}

	return sorted
}

// filterRidges keeps ridges spanning at least MinRidgeLength widths whose
// response at the narrowest reached width clears the local noise floor by
// MinSNR. The noise floor is a low percentile of the narrowest-width response
// magnitude in a window around each column.
func (c *CWT) filterRidges(matrix [][]float64, ridges []ridge, numPoints int) []ridge {
	if len(ridges) == 0 {
		return nil
	}

	windowSize := int(math.Ceil(float64(numPoints) / 20))
	halfWindow := windowSize / 2
	odd := windowSize % 2

	narrowest := matrix[0]
	noise := make([]float64, numPoints)

	for i := range noise {
		start := max(i-halfWindow, 0)
		end := min(i+halfWindow+odd, numPoints)
		noise[i] = percentileAbs(narrowest[start:end], c.opts.NoisePercentile)
	}

	kept := make([]ridge, 0, len(ridges))

	for _, line := range ridges {
		if len(line.rows) < c.opts.MinRidgeLength {
			continue
		}

		response := math.Abs(matrix[line.rows[0]][line.cols[0]])

		floor := noise[line.cols[0]]
		if floor == 0 {
			if response > 0 {
				kept = append(kept, line)
			}

			continue
		}

		if response/floor >= c.opts.MinSNR {
			kept = append(kept, line)
		}
	}

	return kept
}

// percentileAbs returns the given percentile of the absolute values of data,
// with linear interpolation between ranks.
func percentileAbs(data []float64, percentile float64) float64 {
	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = math.Abs(v)
	}

	sort.Float64s(values)

	if len(values) == 1 {
		return values[0]
	}

	pos := percentile / 100 * float64(len(values)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))

	if lower == upper {
		return values[lower]
	}

	frac := pos - float64(lower)

	return values[lower]*(1-frac) + values[upper]*frac
}
