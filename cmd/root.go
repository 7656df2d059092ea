// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "cwos",
	Short: "Morse code operating session",
	Long: `cwos takes turns with a Morse operator: it times the operator's keying,
decodes it once the key has been idle, hands the text to a responder app and
keys the reply back.

Examples:
  # Interactive session, space bar as the key
  cwos run

  # Straight key on a serial adapter, no console
  cwos run --input serial --headless

  # Timing tools
  cwos encode "CQ DE CWOS"
  cwos decode "+60 -60 +180 -420"`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().IntP("wpm", "w", 15, "capture speed in WPM")
	rootCmd.PersistentFlags().IntP("farnsworth", "F", 10, "capture spacing speed in WPM (0 or >= --wpm = plain timing)")
	rootCmd.PersistentFlags().IntP("playback-wpm", "p", 20, "reply speed in WPM")
	rootCmd.PersistentFlags().Int("idle", 3000, "silence in ms that ends the operator's turn")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(devicesCmd)
}

// bindFlags binds flags to viper keys. It runs on every initConfig so the
// bindings survive a viper.Reset.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("capture_wpm", flags.Lookup("wpm"))
	_ = viper.BindPFlag("capture_farnsworth_wpm", flags.Lookup("farnsworth"))
	_ = viper.BindPFlag("playback_wpm", flags.Lookup("playback-wpm"))
	_ = viper.BindPFlag("max_idle_ms", flags.Lookup("idle"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("input", runCmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("responder", runCmd.Flags().Lookup("responder"))
}

func initConfig() {
	bindFlags()
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, viper.GetBool("debug"))
}
