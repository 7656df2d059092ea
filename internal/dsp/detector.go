// internal/dsp/detector.go
package dsp

import (
	"errors"
	"sync/atomic"
)

// AGC tuning, applied once per block
const (
	agcAttack  = 0.5
	agcDecay   = 0.99
	agcMinPeak = 0.01
)

var (
	// ErrInvalidThreshold indicates threshold must be between 0 and 1
	ErrInvalidThreshold = errors.New("threshold must be between 0.0 and 1.0")
	// ErrInvalidHysteresis indicates hysteresis must be at least one block
	ErrInvalidHysteresis = errors.New("hysteresis must be at least 1")
	// ErrGoertzelRequired indicates Goertzel instance is required
	ErrGoertzelRequired = errors.New("goertzel instance is required")
)

// LevelCallback is called when the confirmed key level changes.
// Must be non-blocking and fast - called from the audio processing path.
type LevelCallback func(on bool)

// KeyConfig holds configuration for the key detector.
type KeyConfig struct {
	// Threshold for tone detection (0.0-1.0) (from config: threshold)
	Threshold float64
	// Hysteresis is consecutive blocks required to confirm a change (from config: hysteresis)
	Hysteresis int
	// AGCEnabled normalizes the magnitude against a decaying peak
	AGCEnabled bool
}

// KeyDetector turns a keyed tone into a debounced key level. Process runs on
// the audio goroutine; Level may be read from any goroutine.
type KeyDetector struct {
	config   KeyConfig
	goertzel *Goertzel
	buffer   []float32

	agcPeak float64

	pending bool
	count   int

	level       atomic.Bool
	callbackPtr atomic.Pointer[LevelCallback]
}

// NewKeyDetector creates a detector reading the tone measured by goertzel.
func NewKeyDetector(cfg KeyConfig, goertzel *Goertzel) (*KeyDetector, error) {
	if goertzel == nil {
		return nil, ErrGoertzelRequired
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	if cfg.Hysteresis < 1 {
		return nil, ErrInvalidHysteresis
	}

	return &KeyDetector{
		config:   cfg,
		goertzel: goertzel,
		buffer:   make([]float32, 0, goertzel.BlockSize()),
		agcPeak:  1.0,
	}, nil
}

// SetCallback sets the callback for level changes.
func (d *KeyDetector) SetCallback(cb LevelCallback) {
	if cb == nil {
		d.callbackPtr.Store(nil)
	} else {
		d.callbackPtr.Store(&cb)
	}
}

// Process consumes samples normalized to -1.0..1.0. Partial blocks are kept
// until the next call.
func (d *KeyDetector) Process(samples []float32) {
	blockSize := d.goertzel.BlockSize()
	for len(samples) > 0 {
		n := min(blockSize-len(d.buffer), len(samples))
		d.buffer = append(d.buffer, samples[:n]...)
		samples = samples[n:]

		if len(d.buffer) == blockSize {
			d.processBlock(d.goertzel.magnitude(d.buffer))
			d.buffer = d.buffer[:0]
		}
	}
}

func (d *KeyDetector) processBlock(magnitude float64) {
	if d.config.AGCEnabled {
		magnitude = d.applyAGC(magnitude)
	}
	present := magnitude > d.config.Threshold

	current := d.level.Load()
	if present == current {
		d.count = 0
		return
	}
	if present != d.pending || d.count == 0 {
		d.pending = present
		d.count = 0
	}
	d.count++

	if d.count >= d.config.Hysteresis {
		d.count = 0
		d.level.Store(present)
		if cb := d.callbackPtr.Load(); cb != nil {
			(*cb)(present)
		}
	}
}

// applyAGC scales magnitude against a peak that rises quickly and decays slowly.
func (d *KeyDetector) applyAGC(magnitude float64) float64 {
	if magnitude > d.agcPeak {
		d.agcPeak += agcAttack * (magnitude - d.agcPeak)
	} else {
		d.agcPeak *= agcDecay
	}
	if d.agcPeak < agcMinPeak {
		d.agcPeak = agcMinPeak
	}
	return min(magnitude/d.agcPeak, 1.0)
}

// Level returns the confirmed key level. It implements session.Input.
func (d *KeyDetector) Level() bool {
	return d.level.Load()
}

// Reset returns the detector to key-up with no buffered samples.
func (d *KeyDetector) Reset() {
	d.buffer = d.buffer[:0]
	d.agcPeak = 1.0
	d.pending = false
	d.count = 0
	d.level.Store(false)
}
