// internal/tui/model.go

// Package tui provides the Bubble Tea keying console: a lamp that shows who
// owns the line, and a transcript of exchanges.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/session"
)

// DefaultTranscriptLines is how many transcript lines are kept.
const DefaultTranscriptLines = 12

type tickMsg time.Time

// Options configures the console.
type Options struct {
	// Period is the tick period (from config: tick_ms)
	Period time.Duration
	// Input is the operator's key. Nil means the space bar toggles the key.
	Input session.Input
	// Sink receives every tick's output in addition to the lamp. May be nil.
	Sink session.Sink
	// Lines is the transcript length; 0 means DefaultTranscriptLines.
	Lines int
}

// Model implements the Bubble Tea keying console.
type Model struct {
	ctrl  *session.Controller
	table *cw.Table
	opts  Options

	keyDown bool
	last    time.Time
	output  session.Output

	transcript []string
	width      int
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	lampOffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	lampRxStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	lampTxStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	modeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	receivedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	replyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a console around ctrl. It installs itself as the
// controller's exchange callback.
func NewModel(ctrl *session.Controller, opts Options) *Model {
	if opts.Period <= 0 {
		opts.Period = session.DefaultTickPeriod
	}
	if opts.Lines <= 0 {
		opts.Lines = DefaultTranscriptLines
	}
	m := &Model{
		ctrl:  ctrl,
		table: cw.DefaultTable(),
		opts:  opts,
	}
	ctrl.SetCallback(m.record)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Period, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeySpace:
			if m.opts.Input == nil {
				m.keyDown = !m.keyDown
			}
			return m, nil
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return m, tea.Quit
			}
			return m, nil
		default:
			return m, nil
		}
	case tickMsg:
		m.advance(time.Time(msg))
		return m, m.tick()
	default:
		return m, nil
	}
}

// advance ticks the controller by the whole milliseconds since the last tick.
// The first tick only starts the clock.
func (m *Model) advance(now time.Time) {
	if m.last.IsZero() {
		m.last = now
		return
	}
	ms := now.Sub(m.last) / time.Millisecond
	if ms < 0 {
		ms = 0
	}
	m.last = m.last.Add(ms * time.Millisecond)

	m.output = m.ctrl.Tick(uint32(ms), m.level())
	if m.opts.Sink != nil {
		m.opts.Sink.Render(m.output)
	}
}

func (m *Model) level() bool {
	if m.opts.Input != nil {
		return m.opts.Input.Level()
	}
	return m.keyDown
}

func (m *Model) record(ex session.Exchange) {
	m.appendLine(receivedStyle.Render("RX "+m.table.Text(ex.Received)) +
		modeStyle.Render(fmt.Sprintf("  ~%d wpm", ex.EstimatedWPM)))
	if ex.Err != nil {
		m.appendLine(errorLineStyle.Render("!! " + ex.Err.Error()))
	}
	if len(ex.Reply) > 0 {
		m.appendLine(replyStyle.Render("TX " + m.table.Text(ex.Reply)))
	}
}

func (m *Model) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	if over := len(m.transcript) - m.opts.Lines; over > 0 {
		m.transcript = m.transcript[over:]
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("cwos"))
	b.WriteString("  ")
	b.WriteString(m.renderLamp())
	b.WriteString(" ")
	b.WriteString(modeStyle.Render(m.output.Mode.String()))
	b.WriteString("\n\n")
	for _, line := range m.transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.width > 0 {
		return lipgloss.NewStyle().Width(m.width).Render(b.String())
	}
	return b.String()
}

func (m *Model) renderLamp() string {
	switch {
	case !m.output.On:
		return lampOffStyle.Render("●")
	case m.output.Mode == session.Playing:
		return lampTxStyle.Render("●")
	default:
		return lampRxStyle.Render("●")
	}
}

func (m *Model) renderFooter() string {
	cfg := m.ctrl.Config()
	segments := []string{
		fmt.Sprintf("RX %d wpm", cfg.Capture.WPM()),
		fmt.Sprintf("TX %d wpm", cfg.Playback.WPM()),
	}
	if m.opts.Input == nil {
		segments = append(segments, "space: key")
	}
	segments = append(segments, "q: quit")
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

// Transcript returns the transcript lines, oldest first.
func (m *Model) Transcript() []string {
	return append([]string(nil), m.transcript...)
}

// Run starts the console and blocks until the operator quits.
func Run(m *Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}
