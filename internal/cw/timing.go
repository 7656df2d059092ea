// internal/cw/timing.go
package cw

import (
	"errors"
	"fmt"
)

// Morse code timing ratios (ITU standard)
const (
	// DahDitRatio is the ratio of dah duration to dit duration (ITU: 3:1)
	DahDitRatio = 3
	// InterCharSpaceRatio is the ratio of space between characters to dit (ITU: 3:1)
	InterCharSpaceRatio = 3
	// WordSpaceRatio is the ratio of space between words to dit (ITU: 7:1)
	WordSpaceRatio = 7

	// MillisecondsPerMinute is used for WPM calculations
	MillisecondsPerMinute = 60000
	// DitsPerWord is the standard word "PARIS" = 50 dit units
	DitsPerWord = 50
	// MillisecondsPerUnitAt1WPM is the dit length at one word per minute (60000 / 50)
	MillisecondsPerUnitAt1WPM = MillisecondsPerMinute / DitsPerWord
)

var (
	// ErrInvalidWPM indicates WPM must be positive
	ErrInvalidWPM = errors.New("WPM must be between 1 and 1200")
	// ErrInvalidFarnsworthWPM indicates Farnsworth WPM must not exceed character WPM
	ErrInvalidFarnsworthWPM = errors.New("farnsworth WPM must not exceed character WPM")
	// ErrInvalidProfile indicates a timing profile with a zero duration or unit >= long
	ErrInvalidProfile = errors.New("invalid timing profile")
)

// Profile holds the four duration thresholds, in milliseconds, used to
// classify and to generate timed signals.
type Profile struct {
	// Unit is the dit length and the gap between elements of one symbol
	Unit uint32
	// Long is the dah length; on pulses at least this long classify as dah
	Long uint32
	// Break is the gap between symbols; silences at least this long end a symbol
	Break uint32
	// Word is the gap between words; silences at least this long insert a word space
	Word uint32
}

// UnitMs converts a speed in words per minute to a dit length in milliseconds.
func UnitMs(wpm int) uint32 {
	if wpm <= 0 {
		return 0
	}
	return uint32(MillisecondsPerUnitAt1WPM / wpm)
}

// NewProfile derives a profile from a character speed and a Farnsworth spacing
// speed. Elements are timed at wpm; symbol and word gaps at farnsworthWPM.
// A farnsworthWPM of 0 uses wpm for the gaps too.
func NewProfile(wpm, farnsworthWPM int) (Profile, error) {
	if wpm <= 0 || wpm > MillisecondsPerUnitAt1WPM {
		return Profile{}, ErrInvalidWPM
	}
	if farnsworthWPM < 0 || farnsworthWPM > wpm {
		return Profile{}, ErrInvalidFarnsworthWPM
	}
	if farnsworthWPM == 0 {
		farnsworthWPM = wpm
	}

	unit := UnitMs(wpm)
	spacing := UnitMs(farnsworthWPM)
	p := Profile{
		Unit:  unit,
		Long:  unit * DahDitRatio,
		Break: spacing * InterCharSpaceRatio,
		Word:  spacing * WordSpaceRatio,
	}
	return p, p.Validate()
}

// Validate checks that every duration is positive and that Unit < Long.
func (p Profile) Validate() error {
	if p.Unit == 0 || p.Long == 0 || p.Break == 0 || p.Word == 0 {
		return fmt.Errorf("%w: durations must be positive, got %+v", ErrInvalidProfile, p)
	}
	if p.Unit >= p.Long {
		return fmt.Errorf("%w: unit %dms must be shorter than long %dms", ErrInvalidProfile, p.Unit, p.Long)
	}
	return nil
}

// WPM returns the character speed implied by Unit, rounded to the nearest word.
func (p Profile) WPM() int {
	if p.Unit == 0 {
		return 0
	}
	return int((MillisecondsPerUnitAt1WPM + p.Unit/2) / p.Unit)
}
