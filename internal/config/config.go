// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwos/internal/cw"
)

const (
	AppName       = "cwos"
	ConfigType    = "yaml"
	DefaultConfig = `# CWOS Configuration

# Speeds (words per minute)
capture_wpm: 15             # Speed the operator is expected to send at
capture_farnsworth_wpm: 10  # Spacing speed for capture (0 or >= capture_wpm = plain timing)
playback_wpm: 20            # Speed replies are sent at
playback_farnsworth_wpm: 10 # Spacing speed for replies (0 or >= playback_wpm = plain timing)

# Tones
capture_tone_hz: 500        # Sidetone while the operator is keying
playback_tone_hz: 600       # Tone used for replies

# Session
max_idle_ms: 3000           # Silence that ends the operator's turn
tick_ms: 5                  # Session tick period
adaptive_smoothing: 0.1     # Operator speed estimate smoothing (0.0-1.0)
                            # Higher = follows the operator faster, Lower = more stable

# Input and responder
input: "keyboard"           # keyboard, serial or audio
responder: "launcher"       # launcher or echo

# Serial straight key
serial_port: "/dev/ttyUSB0"
serial_baud: 9600

# Audio
device_index: -1            # -1 for default device
sample_rate: 48000          # Audio sample rate in Hz
block_size: 256             # Goertzel block size (samples per detection window)
threshold: 0.4              # Detection threshold (0.0-1.0)
hysteresis: 2               # Consecutive blocks required to confirm a key change
sidetone: true              # Play the line state through the default output device
sidetone_volume: 0.2        # Sidetone amplitude (0.0-1.0)

# Output
debug: false                # Enable debug logging
`
)

// Input sources
const (
	InputKeyboard = "keyboard"
	InputSerial   = "serial"
	InputAudio    = "audio"
)

// Responders
const (
	ResponderLauncher = "launcher"
	ResponderEcho     = "echo"
)

// Settings holds all application configuration
type Settings struct {
	// Speeds
	CaptureWPM            int `mapstructure:"capture_wpm"`
	CaptureFarnsworthWPM  int `mapstructure:"capture_farnsworth_wpm"`
	PlaybackWPM           int `mapstructure:"playback_wpm"`
	PlaybackFarnsworthWPM int `mapstructure:"playback_farnsworth_wpm"`

	// Tones
	CaptureToneHz  float64 `mapstructure:"capture_tone_hz"`
	PlaybackToneHz float64 `mapstructure:"playback_tone_hz"`

	// Session
	MaxIdleMs         int     `mapstructure:"max_idle_ms"`
	TickMs            int     `mapstructure:"tick_ms"`
	AdaptiveSmoothing float64 `mapstructure:"adaptive_smoothing"`

	// Input and responder
	Input     string `mapstructure:"input"`
	Responder string `mapstructure:"responder"`

	// Serial straight key
	SerialPort string `mapstructure:"serial_port"`
	SerialBaud int    `mapstructure:"serial_baud"`

	// Audio
	DeviceIndex    int     `mapstructure:"device_index"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	BlockSize      int     `mapstructure:"block_size"`
	Threshold      float64 `mapstructure:"threshold"`
	Hysteresis     int     `mapstructure:"hysteresis"`
	Sidetone       bool    `mapstructure:"sidetone"`
	SidetoneVolume float64 `mapstructure:"sidetone_volume"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers the default for every key.
func SetDefaults() {
	viper.SetDefault("capture_wpm", 15)
	viper.SetDefault("capture_farnsworth_wpm", 10)
	viper.SetDefault("playback_wpm", 20)
	viper.SetDefault("playback_farnsworth_wpm", 10)
	viper.SetDefault("capture_tone_hz", 500)
	viper.SetDefault("playback_tone_hz", 600)
	viper.SetDefault("max_idle_ms", 3000)
	viper.SetDefault("tick_ms", 5)
	viper.SetDefault("adaptive_smoothing", cw.DefaultSmoothing)
	viper.SetDefault("input", InputKeyboard)
	viper.SetDefault("responder", ResponderLauncher)
	viper.SetDefault("serial_port", "/dev/ttyUSB0")
	viper.SetDefault("serial_baud", 9600)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("block_size", 256)
	viper.SetDefault("threshold", 0.4)
	viper.SetDefault("hysteresis", 2)
	viper.SetDefault("sidetone", true)
	viper.SetDefault("sidetone_volume", 0.2)
	viper.SetDefault("debug", false)
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/cwos/
func Init() error {
	SetDefaults()

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		// No config found - create default in ~/.config/cwos/
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Speeds
	errs = append(errs, validateSpeed("capture", s.CaptureWPM, s.CaptureFarnsworthWPM)...)
	errs = append(errs, validateSpeed("playback", s.PlaybackWPM, s.PlaybackFarnsworthWPM)...)

	// Tones
	if s.CaptureToneHz < 100 || s.CaptureToneHz > 3000 {
		errs = append(errs, fmt.Errorf("capture_tone_hz must be between 100 and 3000 Hz, got %v", s.CaptureToneHz))
	}
	if s.PlaybackToneHz < 100 || s.PlaybackToneHz > 3000 {
		errs = append(errs, fmt.Errorf("playback_tone_hz must be between 100 and 3000 Hz, got %v", s.PlaybackToneHz))
	}

	// Session
	if s.MaxIdleMs < 100 || s.MaxIdleMs > 60000 {
		errs = append(errs, fmt.Errorf("max_idle_ms must be between 100 and 60000, got %d", s.MaxIdleMs))
	}
	if s.TickMs < 1 || s.TickMs > 100 {
		errs = append(errs, fmt.Errorf("tick_ms must be between 1 and 100, got %d", s.TickMs))
	}
	if s.AdaptiveSmoothing < 0.0 || s.AdaptiveSmoothing > 1.0 {
		errs = append(errs, fmt.Errorf("adaptive_smoothing must be between 0.0 and 1.0, got %v", s.AdaptiveSmoothing))
	}

	// Input and responder
	switch s.Input {
	case InputKeyboard, InputSerial, InputAudio:
	default:
		errs = append(errs, fmt.Errorf("input must be one of keyboard, serial, audio, got %q", s.Input))
	}
	switch s.Responder {
	case ResponderLauncher, ResponderEcho:
	default:
		errs = append(errs, fmt.Errorf("responder must be one of launcher, echo, got %q", s.Responder))
	}

	// Serial
	if s.Input == InputSerial && s.SerialPort == "" {
		errs = append(errs, errors.New("serial_port is required when input is serial"))
	}
	if s.SerialBaud < 300 || s.SerialBaud > 115200 {
		errs = append(errs, fmt.Errorf("serial_baud must be between 300 and 115200, got %d", s.SerialBaud))
	}

	// Audio
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.BlockSize < 32 || s.BlockSize > 4096 {
		errs = append(errs, fmt.Errorf("block_size must be between 32 and 4096, got %d", s.BlockSize))
	}
	if s.BlockSize&(s.BlockSize-1) != 0 {
		errs = append(errs, fmt.Errorf("block_size should be a power of 2, got %d", s.BlockSize))
	}
	if s.Threshold < 0.0 || s.Threshold > 1.0 {
		errs = append(errs, fmt.Errorf("threshold must be between 0.0 and 1.0, got %v", s.Threshold))
	}
	if s.Hysteresis < 1 || s.Hysteresis > 50 {
		errs = append(errs, fmt.Errorf("hysteresis must be between 1 and 50, got %d", s.Hysteresis))
	}
	if s.SidetoneVolume < 0.0 || s.SidetoneVolume > 1.0 {
		errs = append(errs, fmt.Errorf("sidetone_volume must be between 0.0 and 1.0, got %v", s.SidetoneVolume))
	}

	// Nyquist check: both tones must be below half the sample rate
	if maxTone := max(s.CaptureToneHz, s.PlaybackToneHz); maxTone >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("tone frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", maxTone, s.SampleRate/2))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateSpeed(prefix string, wpm, farnsworth int) []error {
	var errs []error
	if wpm < 5 || wpm > 60 {
		errs = append(errs, fmt.Errorf("%s_wpm must be between 5 and 60, got %d", prefix, wpm))
	}
	if farnsworth < 0 || farnsworth > 60 {
		errs = append(errs, fmt.Errorf("%s_farnsworth_wpm must be between 0 and 60, got %d", prefix, farnsworth))
	}
	return errs
}

// spacingWPM returns the Farnsworth speed to use with wpm. Spacing can only
// slow the gaps down, so a spacing speed at or above wpm means plain timing.
func spacingWPM(wpm, farnsworth int) int {
	if farnsworth >= wpm {
		return 0
	}
	return farnsworth
}

// CaptureProfile returns the timing used to classify the operator's keying.
func (s *Settings) CaptureProfile() (cw.Profile, error) {
	p, err := cw.NewProfile(s.CaptureWPM, spacingWPM(s.CaptureWPM, s.CaptureFarnsworthWPM))
	if err != nil {
		return cw.Profile{}, fmt.Errorf("capture profile: %w", err)
	}
	return p, nil
}

// PlaybackProfile returns the timing used to send replies.
func (s *Settings) PlaybackProfile() (cw.Profile, error) {
	p, err := cw.NewProfile(s.PlaybackWPM, spacingWPM(s.PlaybackWPM, s.PlaybackFarnsworthWPM))
	if err != nil {
		return cw.Profile{}, fmt.Errorf("playback profile: %w", err)
	}
	return p, nil
}

// TickPeriod returns tick_ms as a duration.
func (s *Settings) TickPeriod() time.Duration {
	return time.Duration(s.TickMs) * time.Millisecond
}
