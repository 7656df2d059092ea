// internal/cw/signal.go
package cw

import "strconv"

// Signal is one observed or generated interval of the line being on or off.
type Signal struct {
	On       bool
	Duration uint32 // milliseconds
}

// String renders the signal as "+60" (on) or "-60" (off).
func (s Signal) String() string {
	if s.On {
		return "+" + strconv.FormatUint(uint64(s.Duration), 10)
	}
	return "-" + strconv.FormatUint(uint64(s.Duration), 10)
}

// TotalMs sums the durations of a signal sequence.
func TotalMs(signals []Signal) uint64 {
	var total uint64
	for _, s := range signals {
		total += uint64(s.Duration)
	}
	return total
}

// Classify decodes one finalized capture into symbols.
//
// On signals at least p.Long are dahs, shorter ones dits; there is no lower
// bound. Off signals of at least p.Break end the symbol in progress; if they
// also reach p.Word and more signals follow, a word space is appended.
// Silence with no symbol in progress is ignored. A capture that ends on an
// on signal has its last symbol closed by the end of input.
func Classify(t *Table, p Profile, signals []Signal) []Symbol {
	var (
		out     []Symbol
		pattern Pattern
	)
	for i, s := range signals {
		if s.On {
			pattern = append(pattern, s.Duration >= p.Long)
			continue
		}
		if len(pattern) == 0 || s.Duration < p.Break {
			continue
		}
		out = append(out, t.SymbolOf(pattern))
		pattern = pattern[:0]
		if s.Duration >= p.Word && i < len(signals)-1 {
			out = append(out, Space)
		}
	}
	if len(pattern) > 0 {
		out = append(out, t.SymbolOf(pattern))
	}
	return out
}

// Generate expands symbols into a playback sequence timed by p.
//
// Elements are separated by p.Unit of silence and symbols by p.Break. A word
// space replaces the preceding silence with p.Word, so the result never holds
// two consecutive off signals.
func Generate(t *Table, p Profile, symbols []Symbol) []Signal {
	var out []Signal
	for _, sym := range symbols {
		if sym == Space {
			if n := len(out); n > 0 && !out[n-1].On {
				out = out[:n-1]
			}
			out = append(out, Signal{On: false, Duration: p.Word})
			continue
		}

		pattern := t.PatternOf(sym)
		if len(pattern) == 0 {
			continue
		}
		for _, dah := range pattern {
			d := p.Unit
			if dah {
				d = p.Long
			}
			out = append(out, Signal{On: true, Duration: d}, Signal{On: false, Duration: p.Unit})
		}
		out[len(out)-1] = Signal{On: false, Duration: p.Break}
	}
	return out
}
