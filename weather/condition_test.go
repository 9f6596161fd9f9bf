package weather

import (
	"testing"
	"time"
)

func TestConditionLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Clear"},
		{2, "Partly cloudy"},
		{45, "Fog"},
		{63, "Rain"},
		{75, "Snow"},
		{95, "Thunderstorm"},
		{99, "Thunderstorm (hail)"},
		{42, "Weather"}, // unknown code
	}
	for _, tt := range tests {
		if got := ConditionLabel(tt.code); got != tt.want {
			t.Errorf("ConditionLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestConditionTheme(t *testing.T) {
	tests := []struct {
		code int
		want Theme
	}{
		{0, ThemeClear},
		{1, ThemePartly},
		{3, ThemeOvercast},
		{48, ThemeFog},
		{61, ThemeRain},
		{85, ThemeSnow},
		{96, ThemeStorm},
		{-1, ThemeOvercast}, // unknown code
	}
	for _, tt := range tests {
		if got := ConditionTheme(tt.code); got != tt.want {
			t.Errorf("ConditionTheme(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestIsNight(t *testing.T) {
	day := func(h int) time.Time {
		return time.Date(2026, 6, 1, h, 0, 0, 0, time.UTC)
	}
	sunrise, sunset := day(6), day(20)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before sunrise", day(4), true},
		{"midday", day(12), false},
		{"exactly sunset", day(20), true},
		{"after sunset", day(23), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNight(tt.at, sunrise, sunset); got != tt.want {
				t.Errorf("IsNight = %v, want %v", got, tt.want)
			}
		})
	}

	// Missing sunrise/sunset defaults to day so the panel never renders a
	// night theme on incomplete data.
	if IsNight(day(23), time.Time{}, time.Time{}) {
		t.Error("zero sunrise/sunset should report day")
	}
}
