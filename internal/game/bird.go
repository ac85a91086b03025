// Package game implements the Flappy Bird simulation: the bird, the pipe
// field, the scrolling ground, the speed controller and the frame-stepped
// game loop that ties them together. The package is platform-agnostic; it
// draws into a core.Screen buffer and consumes core.InputFrame events.
package game

import (
	"fmt"

	"github.com/avrobertson/flappyneat/internal/config"
)

// BirdState is the lifecycle state of a bird.
type BirdState int

const (
	BirdStandby BirdState = iota // waiting on the menu, hovering in place
	BirdFlying                   // physics active
	BirdDead                     // frozen until Reset
)

// String returns a human-readable name for the state.
func (s BirdState) String() string {
	switch s {
	case BirdStandby:
		return "Standby"
	case BirdFlying:
		return "Flying"
	case BirdDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// Bird is a player avatar, human- or AI-controlled. Position is in screen
// cells; vertical velocity is fractional and truncated on application.
type Bird struct {
	id       int
	x        int
	y        int
	velocity float64
	state    BirdState
	canFly   bool
	score    int
	inZone   bool

	animCounter int
	spawnX      int
	spawnY      int
	cfg         config.BirdConfig
}

// NewBird creates a bird at the given spawn position in Standby state.
func NewBird(id, x, y int, cfg config.BirdConfig) *Bird {
	return &Bird{
		id:     id,
		x:      x,
		y:      y,
		spawnX: x,
		spawnY: y,
		state:  BirdStandby,
		canFly: true,
		cfg:    cfg,
	}
}

// ID returns the bird's stable identifier.
func (b *Bird) ID() int { return b.id }

// X returns the bird's horizontal position.
func (b *Bird) X() int { return b.x }

// Y returns the bird's vertical position (top of the hitbox).
func (b *Bird) Y() int { return b.y }

// Velocity returns the current vertical velocity.
func (b *Bird) Velocity() float64 { return b.velocity }

// State returns the lifecycle state.
func (b *Bird) State() BirdState { return b.state }

// Score returns the number of pipe gaps cleared since the last Reset.
func (b *Bird) Score() int { return b.score }

// SetState transitions the bird to a new lifecycle state. Values outside
// the enum are rejected rather than coerced.
func (b *Bird) SetState(s BirdState) error {
	if s < BirdStandby || s > BirdDead {
		return fmt.Errorf("invalid bird state %d", int(s))
	}
	b.state = s
	if b.state != BirdFlying {
		b.velocity = 0
	}
	return nil
}

// Fly performs one upward jump. It is a no-op unless the bird is Flying and
// the flight lock is clear, and a no-op at the top edge: a bird at y <= 0
// stays put, a bird at y == 1 still moves.
func (b *Bird) Fly(speed float64) {
	if b.state != BirdFlying || !b.canFly {
		return
	}
	if b.y <= 0 {
		return
	}
	b.y -= int(float64(b.cfg.JumpHeight) * speed)
	if b.y < 0 {
		b.y = 0
	}
	b.velocity = b.cfg.JumpVelocityNegation
	b.canFly = false
}

// Unlock clears the flight lock. Human play calls this on key release; the
// AI controller calls it every frame.
func (b *Bird) Unlock() {
	b.canFly = true
}

// CanFly reports whether the flight lock is clear.
func (b *Bird) CanFly() bool { return b.canFly }

// Update advances bird physics by one frame. Dead birds never move; a bird
// that is not Flying keeps zero velocity and only animates.
func (b *Bird) Update(speed float64) {
	if b.state == BirdDead {
		return
	}
	b.animCounter++
	if b.state != BirdFlying {
		b.velocity = 0
		return
	}
	if b.velocity < b.cfg.MaxVelocity {
		b.velocity += b.cfg.DropRate * speed
		if b.velocity > b.cfg.MaxVelocity {
			b.velocity = b.cfg.MaxVelocity
		}
	}
	b.y += int(b.velocity)
}

// Frame returns the current sprite animation frame index.
func (b *Bird) Frame() int {
	if b.cfg.AnimationSpeed <= 0 {
		return 0
	}
	return (b.animCounter / b.cfg.AnimationSpeed) % 2
}

// AddScore increments the bird's score by one cleared gap.
func (b *Bird) AddScore() {
	b.score++
}

// InZone reports whether the bird is currently inside a score zone.
func (b *Bird) InZone() bool { return b.inZone }

// SetInZone records score-zone membership for transition detection.
func (b *Bird) SetInZone(v bool) { b.inZone = v }

// Reset returns the bird to its spawn position in Standby state. Calling
// Reset on an already-reset bird changes nothing.
func (b *Bird) Reset() {
	b.x = b.spawnX
	b.y = b.spawnY
	b.velocity = 0
	b.state = BirdStandby
	b.canFly = true
	b.score = 0
	b.inZone = false
	b.animCounter = 0
}
