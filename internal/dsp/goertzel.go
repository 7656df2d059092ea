// internal/dsp/goertzel.go

// Package dsp turns audio into key levels and key levels into audio: a
// single-bin Goertzel filter detects a keyed tone, and an oscillator
// renders the sidetone.
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("frequency must be positive and less than Nyquist frequency")
	// ErrInsufficientSamples indicates not enough samples for the configured block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// GoertzelConfig holds configuration for the Goertzel filter.
type GoertzelConfig struct {
	// Frequency is the keyed tone to listen for in Hz (from config: capture_tone_hz)
	Frequency float64
	// SampleRate is the audio sample rate in Hz (from config: sample_rate)
	SampleRate float64
	// BlockSize is the number of samples per detection window (from config: block_size)
	BlockSize int
}

// Goertzel measures the energy of one frequency over fixed-size blocks.
type Goertzel struct {
	config      GoertzelConfig
	coefficient float64 // 2cos(ω)
	normalizer  float64 // 2/N, so a full-scale sine reads about 1.0
}

// NewGoertzel validates cfg and precomputes the filter coefficient.
func NewGoertzel(cfg GoertzelConfig) (*Goertzel, error) {
	if cfg.BlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.Frequency <= 0 || cfg.Frequency >= cfg.SampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * cfg.Frequency / cfg.SampleRate
	return &Goertzel{
		config:      cfg,
		coefficient: 2 * math.Cos(omega),
		normalizer:  2 / float64(cfg.BlockSize),
	}, nil
}

// Magnitude returns the normalized magnitude of the target frequency over
// the first BlockSize samples.
func (g *Goertzel) Magnitude(samples []float32) (float64, error) {
	if len(samples) < g.config.BlockSize {
		return 0, ErrInsufficientSamples
	}
	return g.magnitude(samples[:g.config.BlockSize]), nil
}

func (g *Goertzel) magnitude(block []float32) float64 {
	var s1, s2 float64
	coeff := g.coefficient
	for _, x := range block {
		s0 := float64(x) + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * g.normalizer
}

// BlockSize returns the configured block size
func (g *Goertzel) BlockSize() int {
	return g.config.BlockSize
}

// Config returns the filter configuration
func (g *Goertzel) Config() GoertzelConfig {
	return g.config
}
