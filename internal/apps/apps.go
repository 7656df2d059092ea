// internal/apps/apps.go

// Package apps provides the responders that answer the operator: a plain
// echo, a fixed greeting, and a launcher that selects an app by its code.
package apps

import (
	"fmt"

	"github.com/ColonelBlimp/cwos/internal/cw"
)

// Echo replies with whatever it was sent.
type Echo struct{}

// Respond returns input unchanged.
func (Echo) Respond(input []cw.Symbol) ([]cw.Symbol, error) {
	return input, nil
}

// Greeting replies with the same message to every non-empty input.
type Greeting struct {
	message []cw.Symbol
}

// NewGreeting encodes text once with the default table.
func NewGreeting(text string) (*Greeting, error) {
	message, err := cw.DefaultTable().Encode(text)
	if err != nil {
		return nil, fmt.Errorf("greeting: %w", err)
	}
	return &Greeting{message: cw.Normalize(message)}, nil
}

// Respond returns the greeting, or nothing for empty input.
func (g *Greeting) Respond(input []cw.Symbol) ([]cw.Symbol, error) {
	if len(cw.Normalize(input)) == 0 {
		return nil, nil
	}
	return append([]cw.Symbol(nil), g.message...), nil
}
