// internal/session/loop.go
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTickPeriod is the default wall-clock tick (from config: tick_ms)
const DefaultTickPeriod = 5 * time.Millisecond

// ErrInvalidTickPeriod indicates a non-positive tick period
var ErrInvalidTickPeriod = errors.New("tick period must be positive")

// Input reports the operator's current key level.
type Input interface {
	Level() bool
}

// Sink presents the line state after every tick.
type Sink interface {
	Render(Output)
}

// InputFunc adapts a function to Input.
type InputFunc func() bool

// Level calls f().
func (f InputFunc) Level() bool { return f() }

// SinkFunc adapts a function to Sink.
type SinkFunc func(Output)

// Render calls f(o).
func (f SinkFunc) Render(o Output) { f(o) }

// Tones maps the line state to a tone frequency, so the operator can hear who
// is keying.
type Tones struct {
	Capture  float64 // Hz (from config: capture_tone_hz)
	Playback float64 // Hz (from config: playback_tone_hz)
}

// Frequency returns the tone for o, or 0 when the line is off.
func (t Tones) Frequency(o Output) float64 {
	if !o.On {
		return 0
	}
	if o.Mode == Playing {
		return t.Playback
	}
	return t.Capture
}

// Run ticks ctrl from the wall clock every period until ctx is done, sampling
// in before each tick and handing the result to sink. Whole milliseconds are
// consumed from the clock so sub-millisecond remainders carry into the next tick.
func Run(ctx context.Context, ctrl *Controller, in Input, sink Sink, period time.Duration) error {
	if period <= 0 {
		return ErrInvalidTickPeriod
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			ms := now.Sub(last) / time.Millisecond
			if ms < 0 {
				ms = 0
			}
			last = last.Add(ms * time.Millisecond)
			sink.Render(ctrl.Tick(uint32(ms), in.Level()))
		}
	}
}
