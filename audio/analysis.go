package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Stats summarizes a block of samples.
type Stats struct {
	Mean float64
	Peak float64
	RMS  float64
	// Flatness is the spectral flatness (geometric over arithmetic mean of the
	// power spectrum). White noise sits around 0.56, a pure tone near 0.
	Flatness float64
}

// Analyze computes sample statistics and the spectral flatness of samples.
func Analyze(samples []float32) Stats {
	var stats Stats
	if len(samples) == 0 {
		return stats
	}

	x := make([]float64, len(samples))
	var sum, sumSquares float64
	for i, s := range samples {
		v := float64(s)
		x[i] = v
		sum += v
		sumSquares += v * v
		stats.Peak = max(stats.Peak, math.Abs(v))
	}
	n := float64(len(samples))
	stats.Mean = sum / n
	stats.RMS = math.Sqrt(sumSquares / n)

	spectrum := fft.FFTReal(x)
	bins := len(spectrum) / 2
	if bins < 2 {
		return stats
	}
	var logSum, powerSum float64
	for _, c := range spectrum[1 : bins+1] {
		p := cmplx.Abs(c)
		p = p*p + 1e-20
		logSum += math.Log(p)
		powerSum += p
	}
	stats.Flatness = math.Exp(logSum/float64(bins)) / (powerSum / float64(bins))
	return stats
}
