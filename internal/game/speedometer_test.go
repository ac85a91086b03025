package game

import (
	"testing"
	"time"

	"github.com/avrobertson/flappyneat/internal/config"
)

func TestSpeedometerFixed(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SpeedConfig
		expected float64
	}{
		{"within range", config.SpeedConfig{GameSpeed: 1.5, MaxGameSpeed: 4.0}, 1.5},
		{"capped at max", config.SpeedConfig{GameSpeed: 9.0, MaxGameSpeed: 4.0}, 4.0},
		{"floored above zero", config.SpeedConfig{GameSpeed: 0, MaxGameSpeed: 4.0}, minSpeed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSpeedometer(SpeedFixed, tc.cfg, 60)
			if got := s.Speed(); got != tc.expected {
				t.Errorf("Speed() = %f, expected %f", got, tc.expected)
			}
		})
	}
}

func TestSpeedometerTimeRate(t *testing.T) {
	cfg := config.SpeedConfig{GameSpeed: 1.0, MaxGameSpeed: 4.0}
	s := NewSpeedometer(SpeedTimeRate, cfg, 60)

	clock := time.Unix(0, 0)
	s.now = func() time.Time { return clock }

	// First reading has no baseline and falls back to the configured speed.
	if got := s.Speed(); got != 1.0 {
		t.Errorf("first Speed() = %f, expected 1.0", got)
	}

	// A tick that took two frame intervals doubles the speed.
	clock = clock.Add(2 * time.Second / 60)
	if got := s.Speed(); got < 1.99 || got > 2.01 {
		t.Errorf("Speed() after a double interval = %f, expected ~2.0", got)
	}

	// A long stall is clamped to the maximum.
	clock = clock.Add(time.Second)
	if got := s.Speed(); got != 4.0 {
		t.Errorf("Speed() after a stall = %f, expected max 4.0", got)
	}
}

func TestSpeedometerReset(t *testing.T) {
	cfg := config.SpeedConfig{GameSpeed: 1.0, MaxGameSpeed: 4.0}
	s := NewSpeedometer(SpeedTimeRate, cfg, 60)

	clock := time.Unix(0, 0)
	s.now = func() time.Time { return clock }

	s.Speed()
	clock = clock.Add(time.Hour)
	s.Reset()
	if got := s.Speed(); got != 1.0 {
		t.Errorf("Speed() after Reset = %f, expected baseline fallback 1.0", got)
	}
}
