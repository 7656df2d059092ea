// internal/cw/morse.go

// Package cw implements the Morse timing codec: the symbol table, timing
// profiles, and the conversions between timed on/off signals and symbols.
package cw

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnknownCharacter indicates a plaintext character absent from the table
	ErrUnknownCharacter = errors.New("unknown character")
	// ErrInvalidPattern indicates a pattern string containing something other than '.' or '-'
	ErrInvalidPattern = errors.New("pattern may only contain '.' and '-'")
)

// Symbol identifies one plaintext unit: a letter, digit, punctuation mark,
// the word space, or a prosign.
type Symbol uint8

const (
	Space Symbol = iota
	A
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
	Digit0
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9
	Period
	Comma
	Question
	Exclamation
	Slash
	ParenOpen
	ParenClose
	Colon
	Semicolon
	Equals
	Minus
	Dollar
	At
	// Invalid stands in for any element pattern that matches no table entry.
	Invalid
	Correction   // [HH]
	Wait         // [AS]
	Start        // [CT] commencing transmission
	End          // [AR] end of message
	EndOfContact // [VA]
	NewLine      // [RT]
	SOS

	symbolCount
)

// Group classifies a symbol.
type Group uint8

const (
	GroupVoid Group = iota
	GroupLetter
	GroupNumber
	GroupSpecial
	GroupProsign
)

// Pattern is the ordered element sequence of one symbol: false is a dit, true a dah.
type Pattern []bool

// ParsePattern parses dot notation such as ".-.." into a Pattern.
func ParsePattern(s string) (Pattern, error) {
	p := make(Pattern, 0, len(s))
	for _, r := range s {
		switch r {
		case '.':
			p = append(p, false)
		case '-':
			p = append(p, true)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, s)
		}
	}
	return p, nil
}

// String renders the pattern in dot notation.
func (p Pattern) String() string {
	var b strings.Builder
	for _, dah := range p {
		if dah {
			b.WriteByte('-')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

type entry struct {
	char    rune
	dots    string
	group   Group
	symbol  Symbol
	name    string
	pattern Pattern
}

// entries is the fixed codec table, one line per symbol in Symbol order.
var entries = [symbolCount]entry{
	{' ', "", GroupVoid, Space, "Space", nil},
	{'A', ".-", GroupLetter, A, "A", nil},
	{'B', "-...", GroupLetter, B, "B", nil},
	{'C', "-.-.", GroupLetter, C, "C", nil},
	{'D', "-..", GroupLetter, D, "D", nil},
	{'E', ".", GroupLetter, E, "E", nil},
	{'F', "..-.", GroupLetter, F, "F", nil},
	{'G', "--.", GroupLetter, G, "G", nil},
	{'H', "....", GroupLetter, H, "H", nil},
	{'I', "..", GroupLetter, I, "I", nil},
	{'J', ".---", GroupLetter, J, "J", nil},
	{'K', "-.-", GroupLetter, K, "K", nil},
	{'L', ".-..", GroupLetter, L, "L", nil},
	{'M', "--", GroupLetter, M, "M", nil},
	{'N', "-.", GroupLetter, N, "N", nil},
	{'O', "---", GroupLetter, O, "O", nil},
	{'P', ".--.", GroupLetter, P, "P", nil},
	{'Q', "--.-", GroupLetter, Q, "Q", nil},
	{'R', ".-.", GroupLetter, R, "R", nil},
	{'S', "...", GroupLetter, S, "S", nil},
	{'T', "-", GroupLetter, T, "T", nil},
	{'U', "..-", GroupLetter, U, "U", nil},
	{'V', "...-", GroupLetter, V, "V", nil},
	{'W', ".--", GroupLetter, W, "W", nil},
	{'X', "-..-", GroupLetter, X, "X", nil},
	{'Y', "-.--", GroupLetter, Y, "Y", nil},
	{'Z', "--..", GroupLetter, Z, "Z", nil},
	{'0', "-----", GroupNumber, Digit0, "0", nil},
	{'1', ".----", GroupNumber, Digit1, "1", nil},
	{'2', "..---", GroupNumber, Digit2, "2", nil},
	{'3', "...--", GroupNumber, Digit3, "3", nil},
	{'4', "....-", GroupNumber, Digit4, "4", nil},
	{'5', ".....", GroupNumber, Digit5, "5", nil},
	{'6', "-....", GroupNumber, Digit6, "6", nil},
	{'7', "--...", GroupNumber, Digit7, "7", nil},
	{'8', "---..", GroupNumber, Digit8, "8", nil},
	{'9', "----.", GroupNumber, Digit9, "9", nil},
	{'.', ".-.-.-", GroupSpecial, Period, "Period", nil},
	{',', "--..--", GroupSpecial, Comma, "Comma", nil},
	{'?', "..--..", GroupSpecial, Question, "Question", nil},
	{'!', "-.-.--", GroupSpecial, Exclamation, "Exclamation", nil},
	{'/', "-..-.", GroupSpecial, Slash, "Slash", nil},
	{'(', "-.--.", GroupSpecial, ParenOpen, "ParenOpen", nil},
	{')', "-.--.-", GroupSpecial, ParenClose, "ParenClose", nil},
	{':', "---...", GroupSpecial, Colon, "Colon", nil},
	{';', "-.-.-.", GroupSpecial, Semicolon, "Semicolon", nil},
	{'=', "-...-", GroupSpecial, Equals, "Equals", nil},
	{'-', "-....-", GroupSpecial, Minus, "Minus", nil},
	{'$', "...-..-", GroupSpecial, Dollar, "Dollar", nil},
	{'@', ".--.-.", GroupSpecial, At, "At", nil},
	{'~', ".-.-.-.", GroupSpecial, Invalid, "Invalid", nil},
	{'*', "........", GroupProsign, Correction, "Correction", nil},
	{'^', ".-...", GroupProsign, Wait, "Wait", nil},
	{'{', "-.-.-", GroupProsign, Start, "Start", nil},
	{'}', ".-.-.", GroupProsign, End, "End", nil},
	{'%', "...-.-", GroupProsign, EndOfContact, "EndOfContact", nil},
	{'\n', ".-.-", GroupProsign, NewLine, "NewLine", nil},
	{'#', "...---...", GroupProsign, SOS, "SOS", nil},
}

// aliases are encode-only characters sharing a prosign's pattern.
var aliases = map[rune]Symbol{
	'&': Wait,
	'+': End,
}

// String returns the symbol's name.
func (s Symbol) String() string {
	if s >= symbolCount {
		return fmt.Sprintf("Symbol(%d)", uint8(s))
	}
	return entries[s].name
}

// Table is the immutable bidirectional codec table.
// Lookups by symbol index an array; lookups by character and by pattern use maps
// built once in NewTable.
type Table struct {
	entries   [symbolCount]entry
	byChar    map[rune]Symbol
	byPattern map[string]Symbol
}

var defaultTable = mustNewTable()

// DefaultTable returns the process-wide codec table.
func DefaultTable() *Table {
	return defaultTable
}

// NewTable builds the codec table, verifying that characters and patterns are unique.
func NewTable() (*Table, error) {
	t := &Table{
		byChar:    make(map[rune]Symbol, len(entries)+len(aliases)),
		byPattern: make(map[string]Symbol, len(entries)),
	}
	for i, e := range entries {
		if e.symbol != Symbol(i) {
			return nil, fmt.Errorf("table entry %d holds symbol %v", i, e.symbol)
		}
		p, err := ParsePattern(e.dots)
		if err != nil {
			return nil, fmt.Errorf("symbol %v: %w", e.symbol, err)
		}
		e.pattern = p
		if prev, ok := t.byChar[e.char]; ok {
			return nil, fmt.Errorf("character %q used by %v and %v", e.char, prev, e.symbol)
		}
		if prev, ok := t.byPattern[e.dots]; ok {
			return nil, fmt.Errorf("pattern %q used by %v and %v", e.dots, prev, e.symbol)
		}
		t.byChar[e.char] = e.symbol
		t.byPattern[e.dots] = e.symbol
		t.entries[i] = e
	}
	for r, s := range aliases {
		if _, ok := t.byChar[r]; ok {
			return nil, fmt.Errorf("alias %q shadows a table character", r)
		}
		t.byChar[r] = s
	}
	return t, nil
}

func mustNewTable() *Table {
	t, err := NewTable()
	if err != nil {
		panic("cw: " + err.Error())
	}
	return t
}

// PatternOf returns a copy of the symbol's element pattern.
// The word space has an empty pattern.
func (t *Table) PatternOf(s Symbol) Pattern {
	if s >= symbolCount {
		return nil
	}
	p := t.entries[s].pattern
	if len(p) == 0 {
		return nil
	}
	return append(Pattern(nil), p...)
}

// SymbolOf decodes a pattern. Unmatched patterns yield Invalid.
func (t *Table) SymbolOf(p Pattern) Symbol {
	if s, ok := t.byPattern[p.String()]; ok {
		return s
	}
	return Invalid
}

// SymbolForChar encodes one character, ignoring letter case.
func (t *Table) SymbolForChar(r rune) (Symbol, error) {
	if s, ok := t.byChar[unicode.ToUpper(r)]; ok {
		return s, nil
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownCharacter, r)
}

// CharOf returns the character a symbol renders as.
func (t *Table) CharOf(s Symbol) rune {
	if s >= symbolCount {
		return t.entries[Invalid].char
	}
	return t.entries[s].char
}

// GroupOf returns the symbol's group.
func (t *Table) GroupOf(s Symbol) Group {
	if s >= symbolCount {
		return t.entries[Invalid].group
	}
	return t.entries[s].group
}

// Symbols returns every symbol in table order.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.symbol)
	}
	return out
}

// Encode converts text to symbols, failing on the first unknown character.
func (t *Table) Encode(text string) ([]Symbol, error) {
	out := make([]Symbol, 0, len(text))
	for _, r := range text {
		s, err := t.SymbolForChar(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Text renders symbols as a string.
func (t *Table) Text(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteRune(t.CharOf(s))
	}
	return b.String()
}

// Normalize drops leading and trailing word spaces and collapses runs of them.
func Normalize(symbols []Symbol) []Symbol {
	out := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if s == Space && (len(out) == 0 || out[len(out)-1] == Space) {
			continue
		}
		out = append(out, s)
	}
	if n := len(out); n > 0 && out[n-1] == Space {
		out = out[:n-1]
	}
	return out
}
