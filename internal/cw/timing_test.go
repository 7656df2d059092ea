package cw

import (
	"errors"
	"testing"
)

func TestUnitMs(t *testing.T) {
	tests := []struct {
		wpm  int
		want uint32
	}{
		{20, 60},
		{15, 80},
		{10, 120},
		{0, 0},
		{-3, 0},
	}

	for _, tt := range tests {
		if got := UnitMs(tt.wpm); got != tt.want {
			t.Errorf("UnitMs(%d) = %d, want %d", tt.wpm, got, tt.want)
		}
	}
}

func TestNewProfile_Standard(t *testing.T) {
	p, err := NewProfile(20, 0)
	if err != nil {
		t.Fatalf("NewProfile() error = %v", err)
	}
	want := Profile{Unit: 60, Long: 180, Break: 180, Word: 420}
	if p != want {
		t.Errorf("NewProfile(20, 0) = %+v, want %+v", p, want)
	}
}

func TestNewProfile_Farnsworth(t *testing.T) {
	p, err := NewProfile(20, 10)
	if err != nil {
		t.Fatalf("NewProfile() error = %v", err)
	}
	// Elements at 20 WPM, gaps at 10 WPM
	want := Profile{Unit: 60, Long: 180, Break: 360, Word: 840}
	if p != want {
		t.Errorf("NewProfile(20, 10) = %+v, want %+v", p, want)
	}
}

func TestNewProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		wpm     int
		fw      int
		wantErr error
	}{
		{"zero wpm", 0, 0, ErrInvalidWPM},
		{"negative wpm", -5, 0, ErrInvalidWPM},
		{"too fast", 1201, 0, ErrInvalidWPM},
		{"farnsworth faster than wpm", 15, 20, ErrInvalidFarnsworthWPM},
		{"negative farnsworth", 15, -1, ErrInvalidFarnsworthWPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfile(tt.wpm, tt.fw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewProfile(%d, %d) error = %v, want %v", tt.wpm, tt.fw, err, tt.wantErr)
			}
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Profile
		wantErr bool
	}{
		{"valid", Profile{Unit: 60, Long: 180, Break: 180, Word: 420}, false},
		{"gaps need not be unit multiples", Profile{Unit: 50, Long: 130, Break: 211, Word: 333}, false},
		{"zero unit", Profile{Unit: 0, Long: 180, Break: 180, Word: 420}, true},
		{"zero word", Profile{Unit: 60, Long: 180, Break: 180, Word: 0}, true},
		{"unit equals long", Profile{Unit: 60, Long: 60, Break: 180, Word: 420}, true},
		{"unit above long", Profile{Unit: 90, Long: 60, Break: 180, Word: 420}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() error = %v, want wrapped %v", err, ErrInvalidProfile)
			}
		})
	}
}

func TestProfile_WPM(t *testing.T) {
	tests := []struct {
		wpm int
	}{
		{5}, {12}, {15}, {20}, {25}, {40},
	}

	for _, tt := range tests {
		p, err := NewProfile(tt.wpm, 0)
		if err != nil {
			t.Fatalf("NewProfile(%d) error = %v", tt.wpm, err)
		}
		if got := p.WPM(); got != tt.wpm {
			t.Errorf("Profile.WPM() = %d, want %d", got, tt.wpm)
		}
	}

	if got := (Profile{}).WPM(); got != 0 {
		t.Errorf("zero Profile.WPM() = %d, want 0", got)
	}
}
