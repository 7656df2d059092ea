// internal/dsp/oscillator.go
package dsp

import (
	"errors"
	"math"
)

// ErrInvalidAmplitude indicates amplitude must be between 0 and 1
var ErrInvalidAmplitude = errors.New("amplitude must be between 0.0 and 1.0")

// DefaultRampMs is the keying envelope rise and fall time
const DefaultRampMs = 5.0

// Oscillator renders a keyed sine. Gain ramps over the envelope time on every
// key change, and phase is continuous across calls and frequency changes, so
// the sidetone does not click.
type Oscillator struct {
	sampleRate float64
	amplitude  float64
	ramp       float64 // gain step per sample

	frequency float64
	phase     float64
	gain      float64
}

// NewOscillator creates a silent oscillator.
func NewOscillator(sampleRate, amplitude, rampMs float64) (*Oscillator, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if amplitude < 0 || amplitude > 1 {
		return nil, ErrInvalidAmplitude
	}

	ramp := 1.0
	if samples := rampMs * sampleRate / 1000; samples > 1 {
		ramp = 1 / samples
	}
	return &Oscillator{sampleRate: sampleRate, amplitude: amplitude, ramp: ramp}, nil
}

// Fill writes len(out) samples keyed at frequency. A frequency of 0 keys the
// tone off; the previous frequency keeps sounding until the ramp reaches zero.
func (o *Oscillator) Fill(out []float32, frequency float64) {
	target := 0.0
	if frequency > 0 {
		o.frequency = frequency
		target = 1
	}
	step := 2 * math.Pi * o.frequency / o.sampleRate

	for i := range out {
		switch {
		case o.gain < target:
			o.gain = min(target, o.gain+o.ramp)
		case o.gain > target:
			o.gain = max(target, o.gain-o.ramp)
		}

		out[i] = float32(o.amplitude * o.gain * math.Sin(o.phase))

		o.phase += step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}

// Gain returns the current envelope gain (0.0-1.0)
func (o *Oscillator) Gain() float64 {
	return o.gain
}
