// internal/cw/adaptive.go
package cw

import "errors"

// DefaultSmoothing is the default weight given to each new pulse in the EMA
// (from config: adaptive_smoothing)
const DefaultSmoothing = 0.1

// ErrInvalidAdaptiveSmoothing indicates smoothing factor must be between 0 and 1
var ErrInvalidAdaptiveSmoothing = errors.New("adaptive smoothing must be between 0.0 and 1.0")

// SpeedEstimator estimates an operator's sending speed from captured pulses.
// It only reports; the profiles used for classification never change.
type SpeedEstimator struct {
	smoothing float64
}

// NewSpeedEstimator creates an estimator with the given EMA smoothing factor.
// Higher values follow the operator faster, lower values are more stable.
func NewSpeedEstimator(smoothing float64) (*SpeedEstimator, error) {
	if smoothing < 0 || smoothing > 1 {
		return nil, ErrInvalidAdaptiveSmoothing
	}
	return &SpeedEstimator{smoothing: smoothing}, nil
}

// Estimate runs an exponential moving average of the dit length over the on
// signals, starting from p.Unit, and returns the resulting speed in WPM.
// Dahs count as a third of their duration. Returns 0 for an empty profile.
func (e *SpeedEstimator) Estimate(signals []Signal, p Profile) int {
	if p.Unit == 0 {
		return 0
	}
	ditMs := float64(p.Unit)
	for _, s := range signals {
		if !s.On {
			continue
		}
		estimated := float64(s.Duration)
		if s.Duration >= p.Long {
			estimated /= DahDitRatio
		}
		ditMs = (1-e.smoothing)*ditMs + e.smoothing*estimated
	}

	if ditMs < 1 {
		ditMs = 1
	}
	return int(MillisecondsPerUnitAt1WPM/ditMs + 0.5)
}
