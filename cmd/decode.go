// cmd/decode.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/trace"
)

var decodeCmd = &cobra.Command{
	Use:   "decode TRACE...",
	Short: "Decode a signal trace at the capture speed",
	Long: `Decode a signal trace such as "+60 -60 +180 -420" (+ on, - off, in
milliseconds) using the capture profile and print the text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	profile, err := s.CaptureProfile()
	if err != nil {
		return err
	}

	signals, err := trace.ParseSignals(strings.Join(args, " "))
	if err != nil {
		return err
	}
	table := cw.DefaultTable()
	_, err = fmt.Fprintln(cmd.OutOrStdout(), table.Text(cw.Classify(table, profile, signals)))
	return err
}
