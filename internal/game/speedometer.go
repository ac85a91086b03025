package game

import (
	"time"

	"github.com/avrobertson/flappyneat/internal/config"
)

// SpeedMode selects how the speed controller derives the per-frame speed.
type SpeedMode int

const (
	// SpeedFixed returns the configured game speed every frame. Used for
	// throttled play and for deterministic training runs.
	SpeedFixed SpeedMode = iota
	// SpeedTimeRate scales the configured speed by real elapsed time, so an
	// unthrottled loop still simulates at wall-clock pace.
	SpeedTimeRate
)

// minSpeed is the floor applied to every reading; the loop divides by speed
// when computing the spawn cadence.
const minSpeed = 0.1

// Speedometer produces the world speed consumed by pipes, ground and bird
// physics each frame. Readings are always in (0, max_game_speed].
type Speedometer struct {
	mode SpeedMode
	cfg  config.SpeedConfig
	fps  int
	last time.Time
	now  func() time.Time
}

// NewSpeedometer creates a speed controller for the given mode.
func NewSpeedometer(mode SpeedMode, cfg config.SpeedConfig, fps int) *Speedometer {
	return &Speedometer{
		mode: mode,
		cfg:  cfg,
		fps:  fps,
		now:  time.Now,
	}
}

// Speed returns the world speed for the current frame.
func (s *Speedometer) Speed() float64 {
	switch s.mode {
	case SpeedTimeRate:
		t := s.now()
		if s.last.IsZero() {
			s.last = t
			return s.clamp(s.cfg.GameSpeed)
		}
		dt := t.Sub(s.last).Seconds()
		s.last = t
		return s.clamp(s.cfg.GameSpeed * dt * float64(s.fps))
	default:
		return s.clamp(s.cfg.GameSpeed)
	}
}

// Reset clears the elapsed-time baseline.
func (s *Speedometer) Reset() {
	s.last = time.Time{}
}

func (s *Speedometer) clamp(v float64) float64 {
	if v > s.cfg.MaxGameSpeed {
		return s.cfg.MaxGameSpeed
	}
	if v < minSpeed {
		return minSpeed
	}
	return v
}
