// internal/audio/tonekey.go
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ColonelBlimp/cwos/internal/dsp"
	"github.com/ColonelBlimp/cwos/internal/logging"
)

// ToneKeyConfig holds configuration for keying by tone
type ToneKeyConfig struct {
	Capture   Config
	Frequency float64 // Hz (from config: capture_tone_hz)
	Key       dsp.KeyConfig
	Logger    *slog.Logger // key changes are logged at debug; nil disables logging
}

// ToneKey treats a keyed tone on an input device as the operator's key.
// Level implements session.Input.
type ToneKey struct {
	capture  *Capture
	detector *dsp.KeyDetector
}

// NewToneKey wires a capture device to a Goertzel key detector. Call Start to
// begin listening.
func NewToneKey(cfg ToneKeyConfig) (*ToneKey, error) {
	g, err := dsp.NewGoertzel(dsp.GoertzelConfig{
		Frequency:  cfg.Frequency,
		SampleRate: float64(cfg.Capture.SampleRate),
		BlockSize:  int(cfg.Capture.BufferSize),
	})
	if err != nil {
		return nil, fmt.Errorf("tone key: %w", err)
	}
	detector, err := dsp.NewKeyDetector(cfg.Key, g)
	if err != nil {
		return nil, fmt.Errorf("tone key: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	detector.SetCallback(func(down bool) {
		logger.Debug("tone key", "down", down)
	})

	capture := New(cfg.Capture)
	capture.SetCallback(detector.Process)
	return &ToneKey{capture: capture, detector: detector}, nil
}

// Start opens the capture device with the key up. Listening stops when ctx
// is done.
func (k *ToneKey) Start(ctx context.Context) error {
	k.detector.Reset()
	if err := k.capture.Init(); err != nil {
		return err
	}
	if err := k.capture.Start(ctx); err != nil {
		_ = k.capture.Close()
		return err
	}
	return nil
}

// Level returns whether the tone is present.
func (k *ToneKey) Level() bool {
	return k.detector.Level()
}

// Close releases the capture device.
func (k *ToneKey) Close() error {
	return k.capture.Close()
}
