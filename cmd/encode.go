// cmd/encode.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/trace"
)

var encodeTicks bool

var encodeCmd = &cobra.Command{
	Use:   "encode TEXT...",
	Short: "Print the keying of TEXT at the playback speed",
	Long: `Encode TEXT into a signal trace timed by the playback profile, for example
"E" at 20 WPM prints "+60 -180".

With --ticks TEXT is keyed as the operator would send it instead: timed by the
capture profile, followed by max_idle_ms of silence to end the turn, and
expanded into a tick trace that replay can read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeTicks, "ticks", false, "print a tick trace (one \"deltaMs level\" per line)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	profile, err := s.PlaybackProfile()
	if encodeTicks {
		profile, err = s.CaptureProfile()
	}
	if err != nil {
		return err
	}

	table := cw.DefaultTable()
	symbols, err := table.Encode(strings.Join(args, " "))
	if err != nil {
		return err
	}
	signals := cw.Generate(table, profile, cw.Normalize(symbols))

	if encodeTicks {
		signals = append(signals, cw.Signal{On: false, Duration: uint32(s.MaxIdleMs)})
		return trace.WriteTicks(cmd.OutOrStdout(), trace.SignalsToTicks(signals, uint32(s.TickMs)))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), trace.FormatSignals(signals))
	return err
}
