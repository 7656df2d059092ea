package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwos/internal/cw"
)

func resetViper() {
	viper.Reset()
}

// isolate points HOME at a fresh directory and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	resetViper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tmpDir
}

// chdir changes into dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Logf("failed to restore dir: %v", err)
		}
	})
}

func writeXDGConfig(t *testing.T, home, content string) {
	t.Helper()
	configDir := filepath.Join(home, ".config", AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func validSettings() *Settings {
	return &Settings{
		CaptureWPM:            15,
		CaptureFarnsworthWPM:  10,
		PlaybackWPM:           20,
		PlaybackFarnsworthWPM: 10,
		CaptureToneHz:         500,
		PlaybackToneHz:        600,
		MaxIdleMs:             3000,
		TickMs:                5,
		AdaptiveSmoothing:     0.1,
		Input:                 InputKeyboard,
		Responder:             ResponderLauncher,
		SerialPort:            "/dev/ttyUSB0",
		SerialBaud:            9600,
		DeviceIndex:           -1,
		SampleRate:            48000,
		BlockSize:             256,
		Threshold:             0.4,
		Hysteresis:            2,
		Sidetone:              true,
		SidetoneVolume:        0.2,
	}
}

func TestInit_WithDefaults(t *testing.T) {
	home := isolate(t)
	writeXDGConfig(t, home, DefaultConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ints := map[string]int{
		"capture_wpm":             15,
		"capture_farnsworth_wpm":  10,
		"playback_wpm":            20,
		"playback_farnsworth_wpm": 10,
		"max_idle_ms":             3000,
		"tick_ms":                 5,
		"serial_baud":             9600,
		"device_index":            -1,
		"sample_rate":             48000,
		"block_size":              256,
		"hysteresis":              2,
	}
	for key, want := range ints {
		if got := viper.GetInt(key); got != want {
			t.Errorf("viper.GetInt(%q) = %d, want %d", key, got, want)
		}
	}

	floats := map[string]float64{
		"capture_tone_hz":    500,
		"playback_tone_hz":   600,
		"adaptive_smoothing": 0.1,
		"threshold":          0.4,
		"sidetone_volume":    0.2,
	}
	for key, want := range floats {
		if got := viper.GetFloat64(key); got != want {
			t.Errorf("viper.GetFloat64(%q) = %v, want %v", key, got, want)
		}
	}

	if got := viper.GetString("input"); got != InputKeyboard {
		t.Errorf("viper.GetString(input) = %q, want %q", got, InputKeyboard)
	}
	if got := viper.GetString("responder"); got != ResponderLauncher {
		t.Errorf("viper.GetString(responder) = %q, want %q", got, ResponderLauncher)
	}
	if !viper.GetBool("sidetone") || viper.GetBool("debug") {
		t.Errorf("sidetone = %v, debug = %v, want true, false", viper.GetBool("sidetone"), viper.GetBool("debug"))
	}
}

func TestInit_CreatesConfigIfMissing(t *testing.T) {
	home := isolate(t)
	chdir(t, t.TempDir())

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	configPath := filepath.Join(home, ".config", AppName, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Errorf("Init() did not create config file at %s", configPath)
	}
}

func TestInit_ReadsLocalConfigFirst(t *testing.T) {
	home := isolate(t)
	writeXDGConfig(t, home, "capture_wpm: 20")
	chdir(t, home)

	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("capture_wpm: 25"), 0644); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetInt("capture_wpm"); got != 25 {
		t.Errorf("viper.GetInt(capture_wpm) = %d, want 25 (local config)", got)
	}
}

func TestInit_DotConfigTakesPrecedence(t *testing.T) {
	home := isolate(t)
	chdir(t, home)

	if err := os.WriteFile(filepath.Join(home, ".config.yaml"), []byte("playback_wpm: 30"), 0644); err != nil {
		t.Fatalf("failed to write .config.yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("playback_wpm: 20"), 0644); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetInt("playback_wpm"); got != 30 {
		t.Errorf("viper.GetInt(playback_wpm) = %d, want 30 (.config.yaml should take precedence)", got)
	}
}

func TestInit_InvalidConfigFile(t *testing.T) {
	home := isolate(t)
	chdir(t, t.TempDir())
	writeXDGConfig(t, home, "invalid: yaml: content: [[[")

	if err := Init(); err == nil {
		t.Error("Init() should return error for invalid YAML")
	}
}

func TestGet_PartialConfigUsesDefaults(t *testing.T) {
	home := isolate(t)
	chdir(t, t.TempDir())
	writeXDGConfig(t, home, "playback_wpm: 25\ninput: serial\nserial_port: /dev/ttyACM0\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if settings.PlaybackWPM != 25 {
		t.Errorf("Settings.PlaybackWPM = %d, want 25", settings.PlaybackWPM)
	}
	if settings.Input != InputSerial || settings.SerialPort != "/dev/ttyACM0" {
		t.Errorf("Settings input = %q on %q, want serial on /dev/ttyACM0", settings.Input, settings.SerialPort)
	}
	if settings.CaptureWPM != 15 {
		t.Errorf("Settings.CaptureWPM = %d, want default 15", settings.CaptureWPM)
	}
	if settings.MaxIdleMs != 3000 {
		t.Errorf("Settings.MaxIdleMs = %d, want default 3000", settings.MaxIdleMs)
	}
}

func TestGet_InvalidSettings(t *testing.T) {
	home := isolate(t)
	chdir(t, t.TempDir())
	writeXDGConfig(t, home, "capture_wpm: 10\ncapture_farnsworth_wpm: 61\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, err := Get()
	if err == nil {
		t.Fatal("Get() error = nil, want invalid config")
	}
	if !strings.Contains(err.Error(), "capture_farnsworth_wpm") {
		t.Errorf("Get() error = %v, want mention of capture_farnsworth_wpm", err)
	}
}

func TestEnsureConfigExists_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "config")

	if err := ensureConfigExists(configPath); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(configPath, "config.yaml"))
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if string(content) != DefaultConfig {
		t.Errorf("config content does not match DefaultConfig")
	}
}

func TestEnsureConfigExists_DoesNotOverwrite(t *testing.T) {
	configPath := t.TempDir()

	configFile := filepath.Join(configPath, "config.yaml")
	existingContent := "existing: true"
	if err := os.WriteFile(configFile, []byte(existingContent), 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	if err := ensureConfigExists(configPath); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if string(content) != existingContent {
		t.Errorf("ensureConfigExists() overwrote existing config")
	}
}

func TestEnsureConfigExists_WriteError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping test when running as root")
	}

	configPath := filepath.Join(t.TempDir(), "readonly")
	if err := os.MkdirAll(configPath, 0555); err != nil {
		t.Fatalf("failed to create readonly dir: %v", err)
	}
	defer func() {
		if err := os.Chmod(configPath, 0755); err != nil {
			t.Logf("failed to restore permissions: %v", err)
		}
	}()

	if err := ensureConfigExists(filepath.Join(configPath, "subdir")); err == nil {
		t.Error("ensureConfigExists() should return error for read-only directory")
	}
}

func TestDefaultConfig_ContainsEveryKey(t *testing.T) {
	resetViper()
	SetDefaults()

	for _, key := range viper.AllKeys() {
		if !strings.Contains(DefaultConfig, key+":") {
			t.Errorf("DefaultConfig missing key: %s", key)
		}
	}
}

// Validation tests

func TestSettings_Validate_ValidSettings(t *testing.T) {
	if err := validSettings().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for valid settings", err)
	}
}

func TestSettings_Validate_Speeds(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"capture too slow", func(s *Settings) { s.CaptureWPM = 4 }, true},
		{"capture minimum", func(s *Settings) { s.CaptureWPM = 10 }, false},
		{"capture too fast", func(s *Settings) { s.CaptureWPM = 61 }, true},
		{"capture farnsworth equal", func(s *Settings) { s.CaptureFarnsworthWPM = 15 }, false},
		{"capture farnsworth zero", func(s *Settings) { s.CaptureFarnsworthWPM = 0 }, false},
		{"capture farnsworth faster", func(s *Settings) { s.CaptureFarnsworthWPM = 16 }, false},
		{"capture slower than default farnsworth", func(s *Settings) { s.CaptureWPM = 8 }, false},
		{"capture farnsworth too fast", func(s *Settings) { s.CaptureFarnsworthWPM = 61 }, true},
		{"capture farnsworth negative", func(s *Settings) { s.CaptureFarnsworthWPM = -1 }, true},
		{"playback maximum", func(s *Settings) { s.PlaybackWPM = 60 }, false},
		{"playback farnsworth faster", func(s *Settings) { s.PlaybackFarnsworthWPM = 21 }, false},
		{"playback farnsworth negative", func(s *Settings) { s.PlaybackFarnsworthWPM = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"capture tone too low", func(s *Settings) { s.CaptureToneHz = 99 }, true},
		{"playback tone too high", func(s *Settings) { s.PlaybackToneHz = 3001 }, true},
		{"idle too short", func(s *Settings) { s.MaxIdleMs = 99 }, true},
		{"idle maximum", func(s *Settings) { s.MaxIdleMs = 60000 }, false},
		{"tick zero", func(s *Settings) { s.TickMs = 0 }, true},
		{"tick maximum", func(s *Settings) { s.TickMs = 100 }, false},
		{"smoothing negative", func(s *Settings) { s.AdaptiveSmoothing = -0.1 }, true},
		{"smoothing one", func(s *Settings) { s.AdaptiveSmoothing = 1 }, false},
		{"serial baud too low", func(s *Settings) { s.SerialBaud = 299 }, true},
		{"sample rate too low", func(s *Settings) { s.SampleRate = 7999 }, true},
		{"sample rate maximum", func(s *Settings) { s.SampleRate = 192000 }, false},
		{"block size not power of 2", func(s *Settings) { s.BlockSize = 100 }, true},
		{"block size too large", func(s *Settings) { s.BlockSize = 8192 }, true},
		{"threshold above one", func(s *Settings) { s.Threshold = 1.1 }, true},
		{"hysteresis zero", func(s *Settings) { s.Hysteresis = 0 }, true},
		{"sidetone volume above one", func(s *Settings) { s.SidetoneVolume = 1.5 }, true},
		{"tone below nyquist", func(s *Settings) { s.SampleRate = 8000; s.PlaybackToneHz = 2500 }, false},
		{"tone at nyquist", func(s *Settings) { s.SampleRate = 8000; s.PlaybackToneHz = 4000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_InputAndResponder(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"serial input", func(s *Settings) { s.Input = InputSerial }, false},
		{"audio input", func(s *Settings) { s.Input = InputAudio }, false},
		{"unknown input", func(s *Settings) { s.Input = "mouse" }, true},
		{"serial without port", func(s *Settings) { s.Input = InputSerial; s.SerialPort = "" }, true},
		{"keyboard without port", func(s *Settings) { s.SerialPort = "" }, false},
		{"echo responder", func(s *Settings) { s.Responder = ResponderEcho }, false},
		{"unknown responder", func(s *Settings) { s.Responder = "llm" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_MultipleErrors(t *testing.T) {
	s := validSettings()
	s.CaptureWPM = 0
	s.Threshold = 2
	s.Input = "mouse"

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want errors")
	}
	for _, key := range []string{"capture_wpm", "threshold", "input"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate() error missing %s: %v", key, err)
		}
	}
}

func TestSettings_Profiles(t *testing.T) {
	s := validSettings()

	capture, err := s.CaptureProfile()
	if err != nil {
		t.Fatalf("CaptureProfile() error = %v", err)
	}
	if want, _ := cw.NewProfile(15, 10); capture != want {
		t.Errorf("CaptureProfile() = %+v, want %+v", capture, want)
	}

	playback, err := s.PlaybackProfile()
	if err != nil {
		t.Fatalf("PlaybackProfile() error = %v", err)
	}
	if playback.Unit != 60 || playback.Word != 840 {
		t.Errorf("PlaybackProfile() = %+v, want unit 60 and word 840", playback)
	}
}

func TestSettings_Profiles_SpacingAtOrAboveWPM(t *testing.T) {
	tests := []struct {
		name       string
		wpm        int
		farnsworth int
	}{
		{"slower than default spacing", 8, 10},
		{"equal", 10, 10},
		{"faster", 20, 30},
		{"zero", 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.CaptureWPM, s.CaptureFarnsworthWPM = tt.wpm, tt.farnsworth
			s.PlaybackWPM, s.PlaybackFarnsworthWPM = tt.wpm, tt.farnsworth

			want, err := cw.NewProfile(tt.wpm, 0)
			if err != nil {
				t.Fatalf("NewProfile() error = %v", err)
			}
			capture, err := s.CaptureProfile()
			if err != nil {
				t.Fatalf("CaptureProfile() error = %v", err)
			}
			if capture != want {
				t.Errorf("CaptureProfile() = %+v, want plain timing %+v", capture, want)
			}
			playback, err := s.PlaybackProfile()
			if err != nil {
				t.Fatalf("PlaybackProfile() error = %v", err)
			}
			if playback != want {
				t.Errorf("PlaybackProfile() = %+v, want plain timing %+v", playback, want)
			}
		})
	}
}

func TestSettings_TickPeriod(t *testing.T) {
	s := validSettings()
	if got := s.TickPeriod(); got != 5*time.Millisecond {
		t.Errorf("TickPeriod() = %v, want 5ms", got)
	}
}
