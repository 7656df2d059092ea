// cmd/session.go
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ColonelBlimp/cwos/internal/apps"
	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/session"
)

func newResponder(name string, logger *slog.Logger) (session.Responder, error) {
	switch name {
	case config.ResponderLauncher:
		return apps.NewLauncher(logger), nil
	case config.ResponderEcho:
		return apps.Echo{}, nil
	}
	return nil, fmt.Errorf("unknown responder %q", name)
}

func newController(s *config.Settings, responder session.Responder, logger *slog.Logger) (*session.Controller, error) {
	capture, err := s.CaptureProfile()
	if err != nil {
		return nil, err
	}
	playback, err := s.PlaybackProfile()
	if err != nil {
		return nil, err
	}
	ctrl, err := session.New(session.Config{
		Capture:   capture,
		Playback:  playback,
		MaxIdleMs: uint32(s.MaxIdleMs),
		Smoothing: s.AdaptiveSmoothing,
	}, responder, logger)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return ctrl, nil
}

func tones(s *config.Settings) session.Tones {
	return session.Tones{Capture: s.CaptureToneHz, Playback: s.PlaybackToneHz}
}

// sinks fans one output out to several sinks.
type sinks []session.Sink

func (ss sinks) Render(o session.Output) {
	for _, s := range ss {
		s.Render(o)
	}
}
