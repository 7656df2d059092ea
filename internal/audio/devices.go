// internal/audio/devices.go
package audio

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// Device describes one audio endpoint. Index is the value to put in device_index.
type Device struct {
	Index   int
	Name    string
	Default bool
}

// ListCaptureDevices opens a short-lived audio context and lists input devices.
func ListCaptureDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	defer func() { _ = freeContext(&ctx) }()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return toDevices(infos), nil
}

func toDevices(infos []malgo.DeviceInfo) []Device {
	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			Index:   i,
			Name:    info.Name(),
			Default: info.IsDefault != 0,
		}
	}
	return devices
}
