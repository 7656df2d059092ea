// internal/trace/trace.go

// Package trace reads and writes the text forms used to record and replay
// keying: signal traces ("+60 -60 +180 -420") and tick traces, one
// "deltaMs level" pair per line.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ColonelBlimp/cwos/internal/cw"
)

var (
	// ErrSyntax indicates a malformed trace entry
	ErrSyntax = errors.New("trace syntax error")
)

// ParseSignals parses a whitespace-separated signal trace. Each entry is
// '+' (on) or '-' (off) followed by a duration in milliseconds.
func ParseSignals(s string) ([]cw.Signal, error) {
	fields := strings.Fields(s)
	signals := make([]cw.Signal, 0, len(fields))
	for i, f := range fields {
		sig, err := parseSignal(f)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		signals = append(signals, sig)
	}
	return signals, nil
}

func parseSignal(f string) (cw.Signal, error) {
	if len(f) < 2 || (f[0] != '+' && f[0] != '-') {
		return cw.Signal{}, fmt.Errorf("%w: %q: want +N or -N", ErrSyntax, f)
	}
	ms, err := strconv.ParseUint(f[1:], 10, 32)
	if err != nil {
		return cw.Signal{}, fmt.Errorf("%w: %q: %v", ErrSyntax, f, err)
	}
	return cw.Signal{On: f[0] == '+', Duration: uint32(ms)}, nil
}

// FormatSignals renders signals in the form ParseSignals reads.
func FormatSignals(signals []cw.Signal) string {
	parts := make([]string, len(signals))
	for i, s := range signals {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Tick is one step of a recorded session.
type Tick struct {
	DeltaMs uint32
	Level   bool
}

// ReadTicks reads a tick trace. Blank lines and '#' comments are skipped.
func ReadTicks(r io.Reader) ([]Tick, error) {
	var ticks []Tick
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		tick, err := parseTick(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ticks = append(ticks, tick)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ticks: %w", err)
	}
	return ticks, nil
}

func parseTick(fields []string) (Tick, error) {
	if len(fields) != 2 {
		return Tick{}, fmt.Errorf("%w: want \"deltaMs level\", got %d fields", ErrSyntax, len(fields))
	}
	ms, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Tick{}, fmt.Errorf("%w: delta %q: %v", ErrSyntax, fields[0], err)
	}
	switch fields[1] {
	case "0":
		return Tick{DeltaMs: uint32(ms)}, nil
	case "1":
		return Tick{DeltaMs: uint32(ms), Level: true}, nil
	}
	return Tick{}, fmt.Errorf("%w: level %q: want 0 or 1", ErrSyntax, fields[1])
}

// WriteTicks writes ticks in the form ReadTicks reads.
func WriteTicks(w io.Writer, ticks []Tick) error {
	bw := bufio.NewWriter(w)
	for _, t := range ticks {
		level := 0
		if t.Level {
			level = 1
		}
		if _, err := fmt.Fprintf(bw, "%d %d\n", t.DeltaMs, level); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SignalsToTicks expands signals into fixed-step ticks, so a signal trace can
// be replayed through a session. Durations are rounded up to whole steps.
func SignalsToTicks(signals []cw.Signal, stepMs uint32) []Tick {
	if stepMs == 0 {
		return nil
	}
	var ticks []Tick
	for _, s := range signals {
		n := s.Duration / stepMs
		if s.Duration%stepMs != 0 {
			n++
		}
		for range n {
			ticks = append(ticks, Tick{DeltaMs: stepMs, Level: s.On})
		}
	}
	return ticks
}
