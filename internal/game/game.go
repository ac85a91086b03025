package game

import (
	"github.com/charmbracelet/log"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/core"
)

// State is the top-level game state.
type State int

const (
	StateMainMenu State = iota
	StatePlaying
	StateOver
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateMainMenu:
		return "MainMenu"
	case StatePlaying:
		return "Playing"
	case StateOver:
		return "Over"
	default:
		return "Unknown"
	}
}

// Mode selects who controls the birds.
type Mode int

const (
	ModeHuman Mode = iota
	ModeAI
)

// Game is the frame-stepped simulation. It owns the bird roster, the pipe
// field, the ground and the speed controller, and advances them all in a
// fixed per-frame order. All mutation happens inside Step; callers drive it
// from a single goroutine.
type Game struct {
	cfg         config.Config
	logger      *log.Logger
	mode        Mode
	state       State
	frame       int
	birds       []*Bird
	pipes       *PipeField
	ground      *Ground
	speedometer *Speedometer
	controller  Controller
	screen      *core.Screen
	seed        int64
	nextID      int
	bestScore   int
	debug       bool
	hud         string
	quit        bool
}

// NewHumanGame creates an input-driven single-bird game starting on the
// main menu.
func NewHumanGame(cfg config.Config, logger *log.Logger, seed int64) *Game {
	g := newGame(cfg, logger, ModeHuman, seed, nil, SpeedFixed)
	g.state = StateMainMenu
	g.spawnBird()
	return g
}

// NewControlledGame creates a controller-driven game. It starts Playing
// with an empty roster; the caller populates it with SpawnBirds. Training
// passes SpeedFixed for reproducible episodes, replay may pass
// SpeedTimeRate.
func NewControlledGame(cfg config.Config, logger *log.Logger, seed int64, ctrl Controller, speedMode SpeedMode) *Game {
	g := newGame(cfg, logger, ModeAI, seed, ctrl, speedMode)
	g.state = StatePlaying
	return g
}

func newGame(cfg config.Config, logger *log.Logger, mode Mode, seed int64, ctrl Controller, speedMode SpeedMode) *Game {
	w, h := cfg.Game.WindowWidth, cfg.Game.WindowHeight
	ground := NewGround(w, h)
	return &Game{
		cfg:         cfg,
		logger:      logger,
		mode:        mode,
		pipes:       NewPipeField(seed, w, ground.Y(), cfg.Pipe),
		ground:      ground,
		speedometer: NewSpeedometer(speedMode, cfg.Speed, cfg.Game.FPS),
		controller:  ctrl,
		screen:      core.NewScreen(w, h),
		seed:        seed,
	}
}

// State returns the current top-level state.
func (g *Game) State() State { return g.state }

// Frame returns the number of frames stepped since the last Reset.
func (g *Game) Frame() int { return g.frame }

// Screen returns the render buffer, redrawn on every Step.
func (g *Game) Screen() *core.Screen { return g.screen }

// Birds returns the live roster.
func (g *Game) Birds() []*Bird { return g.birds }

// Bird returns the single human-controlled bird, or the first roster bird.
func (g *Game) Bird() *Bird {
	if len(g.birds) == 0 {
		return nil
	}
	return g.birds[0]
}

// AliveCount returns the number of birds that are not Dead.
func (g *Game) AliveCount() int {
	n := 0
	for _, b := range g.birds {
		if b.State() != BirdDead {
			n++
		}
	}
	return n
}

// BestScore returns the highest score reached by any bird this session.
func (g *Game) BestScore() int { return g.bestScore }

// Quit reports whether a quit action was received.
func (g *Game) Quit() bool { return g.quit }

// EpisodeOver reports whether a controller-driven episode has ended: every
// bird has died and been removed from the roster.
func (g *Game) EpisodeOver() bool {
	return g.mode == ModeAI && len(g.birds) == 0
}

// SetDebug toggles the gap guideline overlay.
func (g *Game) SetDebug(v bool) { g.debug = v }

// SetHUDLabel sets an extra HUD segment, such as the current generation.
func (g *Game) SetHUDLabel(s string) { g.hud = s }

// SpawnBirds adds n Flying birds to the roster and returns their ids. Ids
// are never reused within a Game, so controller records stay unambiguous
// across episodes.
func (g *Game) SpawnBirds(n int) []int {
	ids := make([]int, 0, n)
	x, y := g.spawnPoint()
	for i := 0; i < n; i++ {
		b := NewBird(g.nextID, x, y, g.cfg.Bird)
		g.nextID++
		b.SetState(BirdFlying)
		g.birds = append(g.birds, b)
		ids = append(ids, b.ID())
	}
	return ids
}

func (g *Game) spawnBird() {
	x, y := g.spawnPoint()
	g.birds = append(g.birds, NewBird(g.nextID, x, y, g.cfg.Bird))
	g.nextID++
}

func (g *Game) spawnPoint() (int, int) {
	return g.screen.Width() / 5, g.ground.Y() / 2
}

// Reset returns the world to its initial state. Human mode keeps its bird
// and goes back to the main menu; controller mode empties the roster and
// stays Playing, ready for the next SpawnBirds.
func (g *Game) Reset() {
	g.frame = 0
	g.pipes.Reset(g.seed)
	g.ground.Reset()
	g.speedometer.Reset()
	if g.mode == ModeAI {
		g.birds = g.birds[:0]
		g.state = StatePlaying
	} else {
		for _, b := range g.birds {
			b.Reset()
		}
		g.state = StateMainMenu
	}
}

// Step advances the simulation by one frame:
// spawn, collisions and scoring, controller decisions, movement, render,
// input, survival reward. Controller errors abort the frame; they indicate
// a roster contract violation, not a gameplay event.
func (g *Game) Step(in core.InputFrame) error {
	speed := g.speedometer.Speed()
	g.frame++

	if g.state == StatePlaying {
		g.pipes.TrySpawn(g.frame, speed)
		if err := g.resolveCollisions(); err != nil {
			return err
		}
	}

	if g.mode == ModeAI && g.state == StatePlaying {
		if err := g.decide(speed); err != nil {
			return err
		}
	}

	if g.state == StatePlaying {
		g.pipes.Update(speed)
	}
	// The ground keeps scrolling on the main menu; only Over freezes it.
	if g.state != StateOver {
		g.ground.Update(speed)
	}
	for _, b := range g.birds {
		b.Update(speed)
	}

	g.render()
	g.handleInput(in, speed)

	if g.mode == ModeAI && g.state == StatePlaying {
		for _, b := range g.birds {
			if b.State() != BirdFlying {
				continue
			}
			if err := g.controller.Reward(b.ID(), g.cfg.AI.AliveReward); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveCollisions checks every live bird against the ground and the
// nearest pipe pair, and runs score-zone transitions for survivors. In
// controller mode a dead bird is penalized and removed together with its
// roster record; in human play it stays on screen and the game goes Over.
func (g *Game) resolveCollisions() error {
	groundY := g.ground.Y()
	var dead []int

	for _, b := range g.birds {
		if b.State() == BirdDead {
			continue
		}
		rect := birdRect(b)
		pair := g.pipes.Nearest(b.X())

		collided := b.Y() >= groundY
		if !collided && pair != nil {
			collided = rect.Intersects(pair.TopRect()) || rect.Intersects(pair.BottomRect(groundY))
		}

		if collided {
			if g.mode == ModeAI {
				if err := g.controller.Penalize(b.ID(), g.cfg.AI.Penalty); err != nil {
					return err
				}
				if err := g.controller.Remove(b.ID()); err != nil {
					return err
				}
				dead = append(dead, b.ID())
			} else {
				b.SetState(BirdDead)
				g.state = StateOver
				g.logger.Debug("game over", "score", b.Score(), "frame", g.frame)
			}
			continue
		}

		// Hugging the top edge is survivable but costs fitness every frame.
		if g.mode == ModeAI && b.Y() <= 0 {
			if err := g.controller.Penalize(b.ID(), g.cfg.AI.Penalty); err != nil {
				return err
			}
		}

		if err := g.scoreZone(b, pair); err != nil {
			return err
		}
	}

	for _, id := range dead {
		g.removeBird(id)
	}
	return nil
}

// scoreZone tracks the bird's membership in the nearest gap. Entry and exit
// each reward once; exit also scores the cleared gap.
func (g *Game) scoreZone(b *Bird, pair *PipePair) error {
	in := pair != nil && birdRect(b).Intersects(pair.ZoneRect())
	switch {
	case in && !b.InZone():
		b.SetInZone(true)
		if g.mode == ModeAI {
			return g.controller.Reward(b.ID(), g.cfg.AI.Reward)
		}
	case !in && b.InZone():
		b.SetInZone(false)
		b.AddScore()
		if b.Score() > g.bestScore {
			g.bestScore = b.Score()
		}
		if g.mode == ModeAI {
			return g.controller.Reward(b.ID(), g.cfg.AI.Reward)
		}
	}
	return nil
}

// decide asks the controller for each flying bird. The flight lock is
// cleared every frame so the controller can chain jumps.
func (g *Game) decide(speed float64) error {
	for _, b := range g.birds {
		if b.State() != BirdFlying {
			continue
		}
		fly, err := g.controller.Decide(b.ID(), g.observe(b))
		if err != nil {
			return err
		}
		b.Unlock()
		if fly {
			b.Fly(speed)
		}
	}
	return nil
}

// observe builds the bird's view of the next obstacle. Before the first
// pipe spawns the bird sees the screen edge and the ground instead.
func (g *Game) observe(b *Bird) Observation {
	pair := g.pipes.Nearest(b.X())
	if pair == nil {
		return Observation{
			DeltaX:       float64(g.screen.Width() - b.X()),
			DeltaYTop:    float64(b.Y()),
			DeltaYBottom: float64(g.ground.Y() - b.Y()),
		}
	}
	return Observation{
		DeltaX:       float64(pair.X - b.X()),
		DeltaYTop:    float64(b.Y() - pair.GapY),
		DeltaYBottom: float64(pair.GapY + pair.GapH - b.Y()),
	}
}

// handleInput applies this frame's input events. In controller mode only
// quit is honored; human play maps the single action key to start, flap and
// restart depending on state.
func (g *Game) handleInput(in core.InputFrame, speed float64) {
	if in.Pressed(core.ActionQuit) {
		g.quit = true
		return
	}
	if g.mode == ModeAI {
		return
	}
	b := g.Bird()
	if b == nil {
		return
	}
	if in.Pressed(core.ActionFlap) {
		switch g.state {
		case StateMainMenu:
			g.state = StatePlaying
			b.SetState(BirdFlying)
			b.Unlock()
			b.Fly(speed)
		case StatePlaying:
			b.Fly(speed)
		case StateOver:
			g.Reset()
		}
	}
	if in.Released(core.ActionFlap) {
		b.Unlock()
	}
}

func (g *Game) removeBird(id int) {
	for i, b := range g.birds {
		if b.ID() == id {
			g.birds = append(g.birds[:i], g.birds[i+1:]...)
			return
		}
	}
}

func birdRect(b *Bird) core.Rect {
	return core.NewRect(b.X(), b.Y(), 1, 1)
}
