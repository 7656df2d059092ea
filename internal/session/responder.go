// internal/session/responder.go
package session

import "github.com/ColonelBlimp/cwos/internal/cw"

// Responder answers a decoded capture with a reply to play back.
// Implementations keep their own state between calls, must return promptly,
// and may return an empty reply. A returned error or a panic is treated as an
// empty reply.
type Responder interface {
	Respond(input []cw.Symbol) ([]cw.Symbol, error)
}

// ResponderFunc adapts a plain function to the Responder interface.
type ResponderFunc func(input []cw.Symbol) ([]cw.Symbol, error)

// Respond calls f(input).
func (f ResponderFunc) Respond(input []cw.Symbol) ([]cw.Symbol, error) {
	return f(input)
}
