// internal/serialkey/serialkey.go

// Package serialkey reads a straight key attached to a serial adapter and
// echoes the line state back to it.
//
// The adapter sends '1' when the key closes and '0' when it opens; other
// bytes are ignored. The host sends '+' when the line goes on and '-' when it
// goes off, so the adapter can drive a buzzer or a transmitter.
package serialkey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"

	"github.com/ColonelBlimp/cwos/internal/logging"
	"github.com/ColonelBlimp/cwos/internal/session"
)

// Wire bytes
const (
	KeyDown byte = '1'
	KeyUp   byte = '0'
	LineOn  byte = '+'
	LineOff byte = '-'
)

// readTimeout bounds how long a read blocks, so cancellation is noticed.
const readTimeout = 50 * time.Millisecond

// ErrPortRequired indicates a nil port
var ErrPortRequired = errors.New("serial port is required")

// Port is the serial connection; satisfied by *serial.Port and by test fakes.
type Port interface {
	io.ReadWriteCloser
}

// Key is a serial straight key. Level implements session.Input and Render
// implements session.Sink.
type Key struct {
	port   Port
	logger *slog.Logger

	level atomic.Bool

	mu       sync.Mutex
	lineOn   bool
	rendered bool
	writeErr error
}

// Open opens the named serial device.
func Open(name string, baud int, logger *slog.Logger) (*Key, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial key %s: %w", name, err)
	}
	return New(port, logger)
}

// New wraps an open port. A nil logger discards logs.
func New(port Port, logger *slog.Logger) (*Key, error) {
	if port == nil {
		return nil, ErrPortRequired
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Key{port: port, logger: logger}, nil
}

// Run reads key changes until ctx is done or the port fails. It closes the
// port when ctx is done.
func (k *Key) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = k.port.Close() })
	defer stop()

	buf := make([]byte, 64)
	for {
		n, err := k.port.Read(buf)
		k.consume(buf[:n])

		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF) && n == 0:
			// read timeout
		default:
			return fmt.Errorf("read serial key: %w", err)
		}
	}
}

func (k *Key) consume(data []byte) {
	for _, b := range data {
		switch b {
		case KeyDown:
			k.level.Store(true)
		case KeyUp:
			k.level.Store(false)
		}
	}
}

// Level returns whether the key is closed.
func (k *Key) Level() bool {
	return k.level.Load()
}

// Render writes the line state when it changes. A failed write is logged once
// and not retried until a write succeeds again.
func (k *Key) Render(o session.Output) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.rendered && o.On == k.lineOn {
		return
	}
	b := LineOff
	if o.On {
		b = LineOn
	}
	if _, err := k.port.Write([]byte{b}); err != nil {
		if k.writeErr == nil {
			k.logger.Warn("serial key write failed", "error", err)
		}
		k.writeErr = err
		return
	}
	k.writeErr = nil
	k.lineOn = o.On
	k.rendered = true
}

// Close closes the port.
func (k *Key) Close() error {
	return k.port.Close()
}
