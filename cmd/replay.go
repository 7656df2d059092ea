// cmd/replay.go
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/session"
	"github.com/ColonelBlimp/cwos/internal/trace"
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Feed a recorded tick trace through a session",
	Long: `Replay a tick trace (one "deltaMs level" pair per line, level 0 or 1,
'#' starts a comment) through a session and print every line transition and
exchange. Use - to read from stdin. The output depends only on the trace and
the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ticks, err := readTickFile(cmd, args[0])
	if err != nil {
		return err
	}

	logger := slog.Default()
	responder, err := newResponder(s.Responder, logger)
	if err != nil {
		return err
	}
	ctrl, err := newController(s, responder, logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	table := cw.DefaultTable()
	var now uint64
	ctrl.SetCallback(func(ex session.Exchange) {
		fmt.Fprintf(w, "%8dms  RX %q  TX %q  ~%d wpm\n",
			now, table.Text(ex.Received), table.Text(ex.Reply), ex.EstimatedWPM)
		if ex.Err != nil {
			fmt.Fprintf(w, "%8dms  responder error: %v\n", now, ex.Err)
		}
	})

	var prev session.Output
	for _, t := range ticks {
		now += uint64(t.DeltaMs)
		out := ctrl.Tick(t.DeltaMs, t.Level)
		if out != prev {
			fmt.Fprintf(w, "%8dms  %-3s %s\n", now, onOff(out.On), out.Mode)
			prev = out
		}
	}
	return nil
}

func readTickFile(cmd *cobra.Command, name string) ([]trace.Tick, error) {
	var r io.Reader = cmd.InOrStdin()
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		r = f
	}
	ticks, err := trace.ReadTicks(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ticks, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
