package metrics

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chaser/internal/sim"
)

// minWeaveSamples is the shortest run a spectrum is computed for.
const minWeaveSamples = 8

// WeaveFrequency is the dominant frequency, in Hz, of the angular command.
// A pursuer that overshoots its heading swings left and right; a clean
// approach has no peak and reports 0.
type WeaveFrequency struct {
	name    string
	angular []float64
	first   float64
	last    float64
}

func NewWeaveFrequency() *WeaveFrequency {
	return &WeaveFrequency{
		name: "weave_frequency",
	}
}

func (w *WeaveFrequency) Name() string { return w.name }

func (w *WeaveFrequency) Observe(t sim.Tick) {
	if len(w.angular) == 0 {
		w.first = t.Time()
	}
	w.last = t.Time()
	w.angular = append(w.angular, t.Command.Angular)
}

func (w *WeaveFrequency) Value() float64 {
	n := len(w.angular)
	if n < minWeaveSamples || w.last <= w.first {
		return 0
	}
	sampleRate := float64(n-1) / (w.last - w.first)

	mean := stat.Mean(w.angular, nil)
	centered := make([]float64, n)
	for i, v := range w.angular {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	peak, peakPower := 0, 0.0
	for i := 1; i < len(coeff); i++ {
		if p := cmplx.Abs(coeff[i]); p > peakPower {
			peak, peakPower = i, p
		}
	}
	if peakPower < 1e-9 {
		return 0
	}
	return fft.Freq(peak) * sampleRate
}

func (w *WeaveFrequency) Reset() {
	w.angular = w.angular[:0]
	w.first, w.last = 0, 0
}
