// internal/session/controller.go

// Package session arbitrates the shared keying channel between the operator
// and the responder: it captures live key timing, decodes it after an idle
// timeout, and plays the reply back one tick at a time.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/logging"
	"github.com/ColonelBlimp/cwos/internal/recovery"
)

// DefaultMaxIdleMs is the default silence after which a capture is decoded
// (from config: max_idle_ms)
const DefaultMaxIdleMs = 3000

var (
	// ErrBusy indicates the session is mid-capture or mid-playback
	ErrBusy = errors.New("session busy: reconfigure only while capturing with empty buffers")
	// ErrInvalidMaxIdle indicates the idle threshold must be positive
	ErrInvalidMaxIdle = errors.New("max idle must be positive")
	// ErrResponderRequired indicates a nil responder
	ErrResponderRequired = errors.New("responder is required")
)

// Mode is the current owner of the channel.
type Mode uint8

const (
	// Capturing records the operator's keying.
	Capturing Mode = iota
	// Playing sends the responder's reply.
	Playing
)

func (m Mode) String() string {
	switch m {
	case Capturing:
		return "capturing"
	case Playing:
		return "playing"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Output is the result of one tick: whether the line is on, and who is keying it.
type Output struct {
	On   bool
	Mode Mode
}

// Config holds the timing used by a session.
type Config struct {
	// Capture classifies the operator's keying (from config: capture_wpm, capture_farnsworth_wpm)
	Capture cw.Profile
	// Playback times the reply (from config: playback_wpm, playback_farnsworth_wpm)
	Playback cw.Profile
	// MaxIdleMs is the silence that ends a capture (from config: max_idle_ms)
	MaxIdleMs uint32
	// Smoothing is the EMA factor for the operator speed estimate (from config: adaptive_smoothing)
	Smoothing float64
}

// Exchange describes one completed capture and the reply it produced.
type Exchange struct {
	ID           uuid.UUID
	Captured     []cw.Signal
	Received     []cw.Symbol
	Reply        []cw.Symbol
	EstimatedWPM int
	// Err is set when the responder failed; Reply is then empty.
	Err error
}

// ExchangeCallback is called after every exchange, from inside Tick.
// Must be non-blocking and fast.
type ExchangeCallback func(Exchange)

// State is a snapshot of the controller's mutable state.
type State struct {
	Mode          Mode
	ElapsedMs     uint32
	LastLevel     bool
	LiveBuffer    []cw.Signal
	PlaybackQueue []cw.Signal
}

// Controller is the tick-driven session state machine. It is not safe for
// concurrent use: one goroutine owns it and calls Tick.
type Controller struct {
	table     *cw.Table
	config    Config
	responder Responder
	estimator *cw.SpeedEstimator
	logger    *slog.Logger
	callback  ExchangeCallback

	mode      Mode
	elapsedMs uint32
	lastLevel bool
	live      []cw.Signal
	queue     []cw.Signal
}

// New creates a controller in Capturing mode. A nil logger discards logs.
func New(cfg Config, responder Responder, logger *slog.Logger) (*Controller, error) {
	if responder == nil {
		return nil, ErrResponderRequired
	}
	if cfg.MaxIdleMs == 0 {
		return nil, ErrInvalidMaxIdle
	}
	if err := cfg.Capture.Validate(); err != nil {
		return nil, fmt.Errorf("capture profile: %w", err)
	}
	if err := cfg.Playback.Validate(); err != nil {
		return nil, fmt.Errorf("playback profile: %w", err)
	}
	estimator, err := cw.NewSpeedEstimator(cfg.Smoothing)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Controller{
		table:     cw.DefaultTable(),
		config:    cfg,
		responder: responder,
		estimator: estimator,
		logger:    logger,
		mode:      Capturing,
	}, nil
}

// SetCallback sets the callback for completed exchanges.
func (c *Controller) SetCallback(cb ExchangeCallback) {
	c.callback = cb
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Config returns the active timing configuration.
func (c *Controller) Config() Config {
	return c.config
}

// State returns a copy of the controller state.
func (c *Controller) State() State {
	return State{
		Mode:          c.mode,
		ElapsedMs:     c.elapsedMs,
		LastLevel:     c.lastLevel,
		LiveBuffer:    append([]cw.Signal(nil), c.live...),
		PlaybackQueue: append([]cw.Signal(nil), c.queue...),
	}
}

// SetProfiles swaps the capture and playback profiles. It is refused with
// ErrBusy unless the session is capturing with nothing recorded, so signals
// already in flight are never reinterpreted.
func (c *Controller) SetProfiles(capture, playback cw.Profile) error {
	if c.mode != Capturing || c.lastLevel || len(c.live) > 0 || len(c.queue) > 0 {
		return ErrBusy
	}
	if err := capture.Validate(); err != nil {
		return fmt.Errorf("capture profile: %w", err)
	}
	if err := playback.Validate(); err != nil {
		return fmt.Errorf("playback profile: %w", err)
	}
	c.config.Capture = capture
	c.config.Playback = playback
	return nil
}

// Tick advances the session by deltaMs with the operator's key at level and
// returns the line state to present for this tick.
func (c *Controller) Tick(deltaMs uint32, level bool) Output {
	c.elapsedMs = addMs(c.elapsedMs, deltaMs)

	if c.mode == Playing {
		if !level {
			return c.playbackTick()
		}
		// The operator keyed over the reply: drop it and start capturing.
		c.logger.Debug("playback interrupted", "pending", len(c.queue))
		c.reset()
	}
	return c.captureTick(level)
}

func (c *Controller) captureTick(level bool) Output {
	switch {
	case level != c.lastLevel:
		// Silence before the first pulse is not recorded
		if c.lastLevel || len(c.live) > 0 {
			c.live = append(c.live, cw.Signal{On: c.lastLevel, Duration: c.elapsedMs})
		}
		c.elapsedMs = 0
		c.lastLevel = level
	case !level && c.elapsedMs >= c.config.MaxIdleMs && len(c.live) > 0:
		c.finishCapture()
	}
	return Output{On: level, Mode: c.mode}
}

func (c *Controller) playbackTick() Output {
	if len(c.queue) == 0 {
		c.reset()
		return Output{On: false, Mode: c.mode}
	}

	front := c.queue[0]
	if c.elapsedMs >= front.Duration {
		c.queue = c.queue[1:]
		c.elapsedMs = 0
		if len(c.queue) == 0 {
			c.reset()
		}
	}
	return Output{On: front.On, Mode: Playing}
}

// finishCapture decodes the live buffer, asks the responder for a reply and
// loads the reply for playback, all within the current tick.
func (c *Controller) finishCapture() {
	c.live = append(c.live, cw.Signal{On: false, Duration: c.elapsedMs})

	ex := Exchange{
		ID:       uuid.New(),
		Captured: c.live,
	}
	ex.Received = cw.Classify(c.table, c.config.Capture, ex.Captured)
	ex.EstimatedWPM = c.estimator.Estimate(ex.Captured, c.config.Capture)
	ex.Reply, ex.Err = c.respond(ex.Received)

	c.live = nil
	c.queue = cw.Generate(c.table, c.config.Playback, ex.Reply)
	c.mode = Playing
	c.elapsedMs = 0

	if ex.Err != nil {
		c.logger.Warn("responder failed, replying with silence",
			"id", ex.ID, "received", c.table.Text(ex.Received), "error", ex.Err)
	} else {
		c.logger.Info("exchange",
			"id", ex.ID,
			"received", c.table.Text(ex.Received),
			"reply", c.table.Text(ex.Reply),
			"wpm", ex.EstimatedWPM,
			"playback_ms", cw.TotalMs(c.queue))
	}

	if c.callback != nil {
		c.callback(ex)
	}
}

func (c *Controller) respond(input []cw.Symbol) ([]cw.Symbol, error) {
	var reply []cw.Symbol
	err := recovery.Guard(func() error {
		var rerr error
		reply, rerr = c.responder.Respond(input)
		return rerr
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// reset returns to Capturing with empty buffers.
func (c *Controller) reset() {
	c.mode = Capturing
	c.elapsedMs = 0
	c.lastLevel = false
	c.live = nil
	c.queue = nil
}

// addMs adds without wrapping, so a very long idle cannot roll over to zero.
func addMs(a, b uint32) uint32 {
	if s := a + b; s >= a {
		return s
	}
	return math.MaxUint32
}
