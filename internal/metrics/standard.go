package metrics

import "github.com/san-kum/chaser/internal/sim"

// Standard returns a fresh instance of every metric in this package.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewCaptureTime(),
		NewHoldRatio(),
		NewMeanDistance(),
		NewPeakAngular(),
		NewWeaveFrequency(),
	}
}
