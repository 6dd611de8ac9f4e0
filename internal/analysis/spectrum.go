package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// bins at or below this are rounding noise
const noiseFloor = 1e-9

// PowerSpectrum returns the magnitudes of the first half of the DFT of
// data after removing its mean. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mu := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mu
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency is the frequency of the strongest non-DC bin of data
// sampled at rate samples per second. It is zero for flat or short input.
func DominantFrequency(data []float64, rate float64) float64 {
	ps := PowerSpectrum(data)
	maxPower, maxIdx := noiseFloor, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower, maxIdx = ps[i], i
		}
	}
	if maxIdx == 0 {
		return 0
	}
	return float64(maxIdx) * rate / float64(len(data))
}
