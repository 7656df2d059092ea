// internal/audio/sidetone.go
package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/ColonelBlimp/cwos/internal/dsp"
	"github.com/ColonelBlimp/cwos/internal/session"
)

// SidetoneConfig holds sidetone configuration
type SidetoneConfig struct {
	SampleRate uint32        // from config: sample_rate
	Volume     float64       // 0.0-1.0 (from config: sidetone_volume)
	Tones      session.Tones // from config: capture_tone_hz, playback_tone_hz
}

// Sidetone plays the line state on the default output device, in the capture
// tone while the operator keys and the playback tone for replies. It
// implements session.Sink.
type Sidetone struct {
	config    SidetoneConfig
	osc       *dsp.Oscillator
	frequency atomic.Uint64 // math.Float64bits of the current tone

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	scratch []float32
}

// NewSidetone creates a silent sidetone. Call Start to open the device.
func NewSidetone(cfg SidetoneConfig) (*Sidetone, error) {
	osc, err := dsp.NewOscillator(float64(cfg.SampleRate), cfg.Volume, dsp.DefaultRampMs)
	if err != nil {
		return nil, fmt.Errorf("sidetone: %w", err)
	}
	return &Sidetone{config: cfg, osc: osc}, nil
}

// Render sets the tone for the next audio period.
func (s *Sidetone) Render(o session.Output) {
	s.frequency.Store(math.Float64bits(s.config.Tones.Frequency(o)))
}

// Frequency returns the tone currently keyed, 0 when silent.
func (s *Sidetone) Frequency() float64 {
	return math.Float64frombits(s.frequency.Load())
}

// fill renders one output period as F32 mono. Called from the audio thread.
func (s *Sidetone) fill(out []byte) {
	n := len(out) / 4
	if cap(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	buf := s.scratch[:n]
	s.osc.Fill(buf, s.Frequency())
	putFloat32(out, buf)
}

// Start opens the default playback device and begins rendering.
func (s *Sidetone) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		return ErrAlreadyRunning
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = s.config.SampleRate
	deviceConfig.PeriodSizeInMilliseconds = 5
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputSamples, _ []byte, _ uint32) {
			s.fill(outputSamples)
		},
	})
	if err != nil {
		_ = freeContext(&ctx)
		return fmt.Errorf("init playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = freeContext(&ctx)
		return fmt.Errorf("start playback device: %w", err)
	}

	s.ctx = ctx
	s.device = device
	return nil
}

// Close stops playback and releases the device.
func (s *Sidetone) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	return freeContext(&s.ctx)
}
