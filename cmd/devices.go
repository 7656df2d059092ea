// cmd/devices.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwos/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	Long:  `List audio capture devices. Use the index as device_index in the config file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := audio.ListCaptureDevices()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, d := range devices {
			mark := ""
			if d.Default {
				mark = " (default)"
			}
			fmt.Fprintf(w, "[%d] %s%s\n", d.Index, d.Name, mark)
		}
		return nil
	},
}
