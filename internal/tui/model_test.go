package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ColonelBlimp/cwos/internal/apps"
	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/session"
)

func newTestModel(t *testing.T, r session.Responder, opts Options) *Model {
	t.Helper()
	p, err := cw.NewProfile(20, 0)
	if err != nil {
		t.Fatalf("NewProfile() error = %v", err)
	}
	ctrl, err := session.New(session.Config{
		Capture:   p,
		Playback:  p,
		MaxIdleMs: session.DefaultMaxIdleMs,
		Smoothing: cw.DefaultSmoothing,
	}, r, nil)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	return NewModel(ctrl, opts)
}

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func tickAt(m *Model, ms int) {
	m.Update(tickMsg(start.Add(time.Duration(ms) * time.Millisecond)))
}

func space(m *Model) {
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestModel_SpaceKeysAnExchange(t *testing.T) {
	m := newTestModel(t, apps.Echo{}, Options{})

	tickAt(m, 0)
	space(m)
	tickAt(m, 5)
	if !m.output.On {
		t.Fatalf("output.On = false after key down")
	}
	tickAt(m, 65)
	space(m)
	tickAt(m, 70)
	if m.output.On {
		t.Fatalf("output.On = true after key up")
	}
	tickAt(m, 3070)

	if m.output.Mode != session.Playing {
		t.Fatalf("mode = %v, want playing", m.output.Mode)
	}
	got := m.Transcript()
	if len(got) != 2 {
		t.Fatalf("transcript = %q, want 2 lines", got)
	}
	if !strings.Contains(got[0], "RX E") || !strings.Contains(got[1], "TX E") {
		t.Errorf("transcript = %q, want RX E then TX E", got)
	}
}

func TestModel_FirstTickStartsClock(t *testing.T) {
	m := newTestModel(t, apps.Echo{}, Options{})
	tickAt(m, 100000)
	if st := m.ctrl.State(); st.ElapsedMs != 0 {
		t.Errorf("ElapsedMs = %d after first tick, want 0", st.ElapsedMs)
	}
	tickAt(m, 100007)
	if st := m.ctrl.State(); st.ElapsedMs != 7 {
		t.Errorf("ElapsedMs = %d, want 7", st.ElapsedMs)
	}
}

func TestModel_InputOverridesSpace(t *testing.T) {
	level := false
	var rendered []session.Output
	m := newTestModel(t, apps.Echo{}, Options{
		Input: session.InputFunc(func() bool { return level }),
		Sink:  session.SinkFunc(func(o session.Output) { rendered = append(rendered, o) }),
	})

	tickAt(m, 0)
	space(m)
	tickAt(m, 5)
	if m.output.On {
		t.Errorf("space keyed the line while an input is attached")
	}
	level = true
	tickAt(m, 10)
	if !m.output.On {
		t.Errorf("output.On = false with input level true")
	}
	if len(rendered) != 2 {
		t.Errorf("sink saw %d outputs, want 2", len(rendered))
	}
	if strings.Contains(m.View(), "space: key") {
		t.Errorf("footer offers the space bar while an input is attached")
	}
}

func TestModel_ResponderErrorInTranscript(t *testing.T) {
	failing := session.ResponderFunc(func([]cw.Symbol) ([]cw.Symbol, error) {
		return nil, errors.New("no route")
	})
	m := newTestModel(t, failing, Options{})

	tickAt(m, 0)
	space(m)
	tickAt(m, 5)
	tickAt(m, 65)
	space(m)
	tickAt(m, 70)
	tickAt(m, 3070)

	got := m.Transcript()
	if len(got) != 2 || !strings.Contains(got[1], "no route") {
		t.Errorf("transcript = %q, want the received line and the error", got)
	}
}

func TestModel_TranscriptIsBounded(t *testing.T) {
	m := newTestModel(t, apps.Echo{}, Options{Lines: 3})
	for i := range 5 {
		m.appendLine(string(rune('a' + i)))
	}
	got := m.Transcript()
	want := []string{"c", "d", "e"}
	if strings.Join(got, "") != strings.Join(want, "") {
		t.Errorf("Transcript() = %q, want %q", got, want)
	}
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, apps.Echo{}, Options{})
			_, cmd := m.Update(tt.msg)
			if cmd == nil {
				t.Fatalf("Update(%s) returned no command", tt.name)
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("Update(%s) command is not tea.Quit", tt.name)
			}
		})
	}
}

func TestModel_ViewFormats(t *testing.T) {
	m := newTestModel(t, apps.Echo{}, Options{})
	out := m.View()
	if !containsAll(out, []string{"cwos", "capturing", "RX 20 wpm", "TX 20 wpm", "space: key", "q: quit"}) {
		t.Errorf("View() missing expected segments: %s", out)
	}
}

func TestNewModel_Defaults(t *testing.T) {
	m := newTestModel(t, apps.Echo{}, Options{})
	if m.opts.Period != session.DefaultTickPeriod {
		t.Errorf("Period = %v, want %v", m.opts.Period, session.DefaultTickPeriod)
	}
	if m.opts.Lines != DefaultTranscriptLines {
		t.Errorf("Lines = %d, want %d", m.opts.Lines, DefaultTranscriptLines)
	}
	if m.Init() == nil {
		t.Errorf("Init() returned no tick command")
	}
}
