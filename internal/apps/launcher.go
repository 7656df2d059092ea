// internal/apps/launcher.go
package apps

import (
	"log/slog"
	"slices"

	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/session"
)

// App is a responder the launcher can hand the channel to.
type App = session.Responder

// Launcher routes input to the selected app. With no app selected it reads
// the input as an app code: a known code selects that app and is echoed back,
// anything else gets "?". App codes are letters and digits only. Sending [VA]
// closes the selected app.
type Launcher struct {
	apps     map[string]func() App
	selected App
	code     string
	logger   *slog.Logger
}

// NewLauncher creates a launcher with the built-in apps registered.
// A nil logger disables logging.
func NewLauncher(logger *slog.Logger) *Launcher {
	l := &Launcher{
		apps:   make(map[string]func() App),
		logger: logger,
	}
	l.Register("EC", func() App { return Echo{} })
	return l
}

// Register makes an app available under code. A later registration of the
// same code replaces the earlier one.
func (l *Launcher) Register(code string, factory func() App) {
	l.apps[code] = factory
}

// Selected returns the code of the running app, or "" when none is.
func (l *Launcher) Selected() string {
	return l.code
}

// Respond implements session.Responder.
func (l *Launcher) Respond(input []cw.Symbol) ([]cw.Symbol, error) {
	input = cw.Normalize(input)
	if len(input) == 0 {
		return nil, nil
	}

	if l.selected == nil {
		return l.launch(input), nil
	}

	if slices.Equal(input, []cw.Symbol{cw.EndOfContact}) {
		l.log("app closed", "app", l.code)
		l.selected = nil
		l.code = ""
		return []cw.Symbol{cw.EndOfContact}, nil
	}
	return l.selected.Respond(input)
}

func (l *Launcher) launch(input []cw.Symbol) []cw.Symbol {
	table := cw.DefaultTable()
	code := table.Text(input)
	if !isAppCode(table, input) {
		l.log("not an app code", "code", code)
		return []cw.Symbol{cw.Question}
	}
	factory, ok := l.apps[code]
	if !ok {
		l.log("unknown app", "code", code)
		return []cw.Symbol{cw.Question}
	}

	l.selected = factory()
	l.code = code
	l.log("app selected", "app", code)
	return input
}

func isAppCode(table *cw.Table, input []cw.Symbol) bool {
	for _, s := range input {
		switch table.GroupOf(s) {
		case cw.GroupLetter, cw.GroupNumber:
		default:
			return false
		}
	}
	return true
}

func (l *Launcher) log(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
