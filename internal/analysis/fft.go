package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k| for k = 0..n/2 of the mean-removed samples.
// Any length is accepted.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// of samples taken every dt seconds, or 0 if the signal is flat.
func DominantFrequency(samples []float64, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	ps := PowerSpectrum(samples)
	best, bestMag := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestMag {
			best, bestMag = k, ps[k]
		}
	}
	if best == 0 || bestMag < 1e-12 {
		return 0
	}
	return float64(best) / (float64(len(samples)) * dt)
}

// Frequencies returns the bin centre frequencies matching PowerSpectrum for
// n samples taken every dt seconds.
func Frequencies(n int, dt float64) []float64 {
	if n == 0 || dt <= 0 {
		return nil
	}
	out := make([]float64, n/2+1)
	for k := range out {
		out[k] = float64(k) / (float64(n) * dt)
	}
	return out
}

// RMS is the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
