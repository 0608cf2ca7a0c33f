// Package testutil provides reusable helpers for ReplayGain analysis tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for gain comparisons.
const (
	// DBTolerance is the acceptable difference between two gain values that
	// should be identical up to histogram quantization.
	DBTolerance = 0.01

	// ExactTolerance is used where two code paths must produce bit-near
	// identical floating point results.
	ExactTolerance = 1e-12
)

// FullScale is the full-scale PCM amplitude convention the analyzer is
// calibrated for (16-bit range).
const FullScale = 32767.0

// Sine generates n samples of a sine wave at the given frequency, sample
// rate and peak amplitude.
func Sine(n int, freq, sampleRate, amplitude float64) []float64 {
	signal := make([]float64, n)
	omega := 2 * math.Pi * freq / sampleRate
	for i := range signal {
		signal[i] = amplitude * math.Sin(omega*float64(i))
	}
	return signal
}

// Silence generates n zero samples.
func Silence(n int) []float64 {
	return make([]float64, n)
}

// Sweep generates n samples sweeping linearly from f0 to f1 Hz.
func Sweep(n int, f0, f1, sampleRate, amplitude float64) []float64 {
	signal := make([]float64, n)
	var phase float64
	for i := range signal {
		t := float64(i) / float64(n)
		f := f0 + (f1-f0)*t
		phase += 2 * math.Pi * f / sampleRate
		signal[i] = amplitude * math.Sin(phase)
	}
	return signal
}

// Chunks splits a signal into consecutive chunks, cycling through the given
// sizes until the signal is exhausted. The concatenation of the returned
// chunks is always the whole signal.
func Chunks(signal []float64, sizes ...int) [][]float64 {
	var out [][]float64
	pos := 0
	for i := 0; pos < len(signal); i++ {
		size := sizes[i%len(sizes)]
		if size > len(signal)-pos {
			size = len(signal) - pos
		}
		out = append(out, signal[pos:pos+size])
		pos += size
	}
	return out
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertGainInRange verifies that a gain recommendation falls inside a
// plausible dB band.
func AssertGainInRange(t *testing.T, gain, minDB, maxDB float64, msgAndArgs ...any) bool {
	t.Helper()
	if gain < minDB || gain > maxDB {
		return assert.Fail(t, "gain out of range",
			"gain %.4f dB is outside [%.2f, %.2f]", gain, minDB, maxDB)
	}
	return true
}
