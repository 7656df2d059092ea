// cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwos/internal/audio"
	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/dsp"
	"github.com/ColonelBlimp/cwos/internal/logging"
	"github.com/ColonelBlimp/cwos/internal/recovery"
	"github.com/ColonelBlimp/cwos/internal/serialkey"
	"github.com/ColonelBlimp/cwos/internal/session"
	"github.com/ColonelBlimp/cwos/internal/tui"
)

// ErrKeyboardNeedsConsole indicates keyboard input was asked for without the console
var ErrKeyboardNeedsConsole = errors.New("keyboard input needs the console; use --input serial or audio with --headless")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive keying session",
	Long: `Start a session. The operator keys with the space bar, a serial straight
key or a keyed tone on an audio input; replies are shown on the console lamp
and, when enabled, played as a sidetone.`,
	RunE: runSession,
}

var runHeadless bool

func init() {
	runCmd.Flags().StringP("input", "i", config.InputKeyboard, "key input: keyboard, serial or audio")
	runCmd.Flags().StringP("responder", "r", config.ResponderLauncher, "responder: launcher or echo")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "run without the console, logging exchanges")
}

func runSession(cmd *cobra.Command, _ []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if s.Input == config.InputKeyboard && runHeadless {
		return ErrKeyboardNeedsConsole
	}

	// The console owns the terminal, so exchanges go to its transcript instead of the log.
	logger := slog.Default()
	if !runHeadless {
		logger = logging.Discard()
	}

	responder, err := newResponder(s.Responder, logger)
	if err != nil {
		return err
	}
	ctrl, err := newController(s, responder, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out sinks
	in, closeInput, err := openInput(ctx, s, logger, &out)
	if err != nil {
		return err
	}
	defer closeInput()

	if s.Sidetone {
		sidetone, err := audio.NewSidetone(audio.SidetoneConfig{
			SampleRate: uint32(s.SampleRate),
			Volume:     s.SidetoneVolume,
			Tones:      tones(s),
		})
		if err != nil {
			return err
		}
		if err := sidetone.Start(); err != nil {
			logger.Warn("sidetone unavailable", "error", err)
		} else {
			defer func() { _ = sidetone.Close() }()
			out = append(out, sidetone)
		}
	}

	if runHeadless {
		err = session.Run(ctx, ctrl, in, out, s.TickPeriod())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return tui.Run(tui.NewModel(ctrl, tui.Options{
		Period: s.TickPeriod(),
		Input:  in,
		Sink:   out,
	}))
}

// watchKey runs a key's read loop, logging why it stopped. A panic in the
// loop closes the key before the process exits.
func watchKey(ctx context.Context, run func(context.Context) error, cleanup func(), logger *slog.Logger) {
	defer recovery.HandlePanicFunc(cleanup)
	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("serial key stopped", "error", err)
	}
}

// openInput opens the configured key. A nil Input means the console keyboard.
// Sinks the input also drives, such as the serial echo, are appended to out.
func openInput(ctx context.Context, s *config.Settings, logger *slog.Logger, out *sinks) (session.Input, func(), error) {
	switch s.Input {
	case config.InputSerial:
		key, err := serialkey.Open(s.SerialPort, s.SerialBaud, logger)
		if err != nil {
			return nil, nil, err
		}
		go watchKey(ctx, key.Run, func() { _ = key.Close() }, logger)
		*out = append(*out, key)
		return key, func() { _ = key.Close() }, nil

	case config.InputAudio:
		capture := audio.DefaultConfig()
		capture.DeviceIndex = s.DeviceIndex
		capture.SampleRate = uint32(s.SampleRate)
		capture.BufferSize = uint32(s.BlockSize)
		key, err := audio.NewToneKey(audio.ToneKeyConfig{
			Capture:   capture,
			Frequency: s.CaptureToneHz,
			Key: dsp.KeyConfig{
				Threshold:  s.Threshold,
				Hysteresis: s.Hysteresis,
				AGCEnabled: true,
			},
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := key.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("start tone key: %w", err)
		}
		return key, func() { _ = key.Close() }, nil
	}
	return nil, func() {}, nil
}
