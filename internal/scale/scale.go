// Package scale implements the fixed bin/frequency mapping shared by the
// salience source and the metric engine: 120 bins per octave, origin 55 Hz.
package scale

import "math"

const (
	// OriginHz is the frequency of bin 0.
	OriginHz = 55.0
	// BinsPerOctave is the bin resolution of the salience scale.
	BinsPerOctave = 120.0
	// CentsPerOctave is the cent resolution of pitch distance.
	CentsPerOctave = 1200.0
)

// BinToFreq converts a (possibly fractional) bin index to frequency in Hz.
func BinToFreq(bin float64) float64 {
	return OriginHz * math.Exp2(bin/BinsPerOctave)
}

// FreqToBin converts a frequency in Hz to a fractional bin position.
// The frequency must be positive.
func FreqToBin(freq float64) float64 {
	return BinsPerOctave * math.Log2(freq/OriginHz)
}

// CentsBetween returns the absolute pitch distance between two frequencies
// in cents. Both frequencies must be positive.
func CentsBetween(freqA, freqB float64) float64 {
	return math.Abs(CentsPerOctave * math.Log2(freqA/freqB))
}
