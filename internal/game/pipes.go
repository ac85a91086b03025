package game

import (
	"math/rand"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/core"
)

// PipePair is one vertical obstacle: a top and a bottom collider sharing a
// single horizontal position, separated by a passable gap.
type PipePair struct {
	X     int // left edge, shared by both colliders
	GapY  int // top of the gap
	GapH  int // gap height
	Width int
}

// TopRect returns the collision rectangle of the upper pipe.
func (p PipePair) TopRect() core.Rect {
	return core.NewRect(p.X, 0, p.Width, p.GapY)
}

// BottomRect returns the collision rectangle of the lower pipe, extending
// down to the ground line.
func (p PipePair) BottomRect(groundY int) core.Rect {
	bottom := p.GapY + p.GapH
	return core.NewRect(p.X, bottom, p.Width, groundY-bottom)
}

// ZoneRect returns the score zone: the passable gap between the colliders.
func (p PipePair) ZoneRect() core.Rect {
	return core.NewRect(p.X, p.GapY, p.Width, p.GapH)
}

// PipeField handles spawning, movement and retirement of pipe pairs. Pairs
// stay ordered by X because every pair moves at the same speed.
type PipeField struct {
	pairs          []PipePair
	rng            *rand.Rand
	screenW        int
	groundY        int
	lastSpawnFrame int
	cfg            config.PipeConfig
}

// NewPipeField creates an empty pipe field with a seeded RNG.
func NewPipeField(seed int64, screenW, groundY int, cfg config.PipeConfig) *PipeField {
	f := &PipeField{
		pairs:   make([]PipePair, 0, 8),
		screenW: screenW,
		groundY: groundY,
		cfg:     cfg,
	}
	f.Reset(seed)
	return f
}

// Reset clears all pairs and reseeds the RNG.
func (f *PipeField) Reset(seed int64) {
	f.pairs = f.pairs[:0]
	f.rng = rand.New(rand.NewSource(seed))
	f.lastSpawnFrame = 0
}

// Pairs returns the live pairs, ordered left to right.
func (f *PipeField) Pairs() []PipePair {
	return f.pairs
}

// TrySpawn spawns a new pair when the cadence interval has elapsed since
// the last spawn (or since frame 0, so the first pipe arrives one full
// interval into the run). Higher speed shortens the interval so on-screen
// pipe density stays constant.
func (f *PipeField) TrySpawn(frame int, speed float64) bool {
	interval := float64(f.cfg.SpawnFrequency) / speed
	if float64(frame-f.lastSpawnFrame) < interval {
		return false
	}
	f.spawn()
	f.lastSpawnFrame = frame
	return true
}

// spawn appends a pair just past the right edge with the gap centered on
// half the playable height, shifted by a bounded random offset.
func (f *PipeField) spawn() {
	gapH := f.cfg.Gap
	center := f.groundY / 2
	if f.cfg.GapOffset > 0 {
		center += f.rng.Intn(2*f.cfg.GapOffset+1) - f.cfg.GapOffset
	}

	gapY := center - gapH/2
	gapY = core.Clamp(gapY, 1, f.groundY-gapH-1)

	f.pairs = append(f.pairs, PipePair{
		X:     f.screenW + f.cfg.OffScreenOffset,
		GapY:  gapY,
		GapH:  gapH,
		Width: f.cfg.Width,
	})
}

// Update moves all pairs left and retires those fully past the left edge.
func (f *PipeField) Update(speed float64) {
	dx := int(speed)
	if dx < 1 {
		dx = 1
	}
	live := f.pairs[:0]
	for _, p := range f.pairs {
		p.X -= dx
		if p.X+p.Width > 0 {
			live = append(live, p)
		}
	}
	f.pairs = live
}

// Nearest returns the first pair the bird has not fully passed yet, or nil
// when no pipe is on the field.
func (f *PipeField) Nearest(birdX int) *PipePair {
	for i := range f.pairs {
		if f.pairs[i].X+f.pairs[i].Width >= birdX {
			return &f.pairs[i]
		}
	}
	return nil
}
