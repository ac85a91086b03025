package game

import (
	"fmt"

	"github.com/avrobertson/flappyneat/internal/core"
)

// Visual characters for rendering
const (
	pipeChar      = '█'
	pipeCapTop    = '▄'
	pipeCapBottom = '▀'
	groundChar    = '═'
	groundTick    = '╪'
	guideChar     = '·'
)

// birdSprite returns the rune for a bird, tilted by velocity and flapped by
// the animation counter.
func birdSprite(b *Bird) rune {
	switch {
	case b.State() == BirdDead:
		return '×'
	case b.Velocity() < -0.5:
		return '◥'
	case b.Velocity() > 1.5:
		return '◢'
	default:
		if b.Frame() == 0 {
			return '▶'
		}
		return '▷'
	}
}

// render redraws the whole frame into the screen buffer: pipes, ground,
// birds, then the optional debug overlay and the HUD on top.
func (g *Game) render() {
	dst := g.screen
	dst.Clear()

	groundY := g.ground.Y()
	for _, p := range g.pipes.Pairs() {
		drawPipe(dst, p, groundY)
	}
	g.drawGround(dst)

	for _, b := range g.birds {
		dst.Set(b.X(), b.Y(), birdSprite(b))
	}

	if g.debug {
		g.drawGuidelines(dst)
	}

	g.drawHUD(dst)
}

// drawPipe draws both colliders of a pair with cap rows facing the gap.
func drawPipe(dst *core.Screen, p PipePair, groundY int) {
	top := p.TopRect()
	bottom := p.BottomRect(groundY)
	dst.DrawRect(top, pipeChar)
	dst.DrawRect(bottom, pipeChar)
	for x := p.X; x < p.X+p.Width; x++ {
		dst.Set(x, top.Bottom()-1, pipeCapTop)
		dst.Set(x, bottom.Y, pipeCapBottom)
	}
}

// drawGround draws the ground line with a tick pattern shifted by the
// scroll offset, and fills the strip below it.
func (g *Game) drawGround(dst *core.Screen) {
	y := g.ground.Y()
	offset := g.ground.Offset()
	for x := 0; x < dst.Width(); x++ {
		if (x+offset)%8 == 0 {
			dst.Set(x, y, groundTick)
		} else {
			dst.Set(x, y, groundChar)
		}
	}
	for row := y + 1; row < dst.Height(); row++ {
		dst.DrawHLine(0, row, dst.Width(), '░')
	}
}

// drawGuidelines draws segments from each bird to the corners of the next
// gap, mirroring what the controller observes.
func (g *Game) drawGuidelines(dst *core.Screen) {
	for _, b := range g.birds {
		if b.State() == BirdDead {
			continue
		}
		pair := g.pipes.Nearest(b.X())
		if pair == nil {
			continue
		}
		dst.DrawLine(b.X(), b.Y(), pair.X, pair.GapY, guideChar)
		dst.DrawLine(b.X(), b.Y(), pair.X, pair.GapY+pair.GapH-1, guideChar)
	}
}

// drawHUD writes the status line and, outside Playing, the state banners.
func (g *Game) drawHUD(dst *core.Screen) {
	var hud string
	if g.mode == ModeAI {
		hud = fmt.Sprintf(" %s alive %d  best %d  frame %d ", g.hud, g.AliveCount(), g.bestScore, g.frame)
	} else {
		score := 0
		if b := g.Bird(); b != nil {
			score = b.Score()
		}
		hud = fmt.Sprintf(" score %d  best %d ", score, g.bestScore)
	}
	dst.DrawText(1, 0, hud)

	switch g.state {
	case StateMainMenu:
		dst.DrawTextCentered(dst.Height()/2, g.cfg.Game.Name)
		dst.DrawTextCentered(dst.Height()/2+2, "press space to start")
	case StateOver:
		dst.DrawTextCentered(dst.Height()/2, "game over")
		dst.DrawTextCentered(dst.Height()/2+2, "press space to restart, q to quit")
	}
}
