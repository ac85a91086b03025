package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/game"
)

// groundedController never flaps, so a replayed bird falls straight down.
type groundedController struct{}

func (groundedController) Decide(id int, obs game.Observation) (bool, error) { return false, nil }
func (groundedController) Reward(id int, amount float64) error               { return nil }
func (groundedController) Penalize(id int, amount float64) error             { return nil }
func (groundedController) Remove(id int) error                               { return nil }

func testModelConfig() config.Config {
	return config.Config{
		Game: config.GameConfig{Name: "test", WindowWidth: 40, WindowHeight: 20, FPS: 60},
		Bird: config.BirdConfig{
			MaxVelocity:          3.0,
			DropRate:             0.25,
			JumpHeight:           2,
			JumpVelocityNegation: -1.5,
			AnimationSpeed:       5,
		},
		Pipe:  config.PipeConfig{SpawnFrequency: 90, Gap: 8, GapOffset: 2, OffScreenOffset: 10, Width: 6},
		Speed: config.SpeedConfig{GameSpeed: 1.0, MaxGameSpeed: 4.0},
	}
}

func TestReplayEndsWhenBirdDies(t *testing.T) {
	g := game.NewControlledGame(testModelConfig(), log.New(io.Discard), 1, groundedController{}, game.SpeedFixed)
	g.SpawnBirds(1)

	var m Model = NewReplayModel(g, 60, "test")

	// A never-flapping bird hits the ground within a bounded number of
	// ticks; the session must then end instead of respawning.
	for i := 0; i < 200; i++ {
		updated, _ := m.Update(TickMsg(time.Now()))
		m = updated.(Model)
		if m.quitting {
			break
		}
	}
	if !m.quitting {
		t.Fatal("replay session still running after the bird died")
	}
	if got := len(g.Birds()); got != 0 {
		t.Errorf("roster size = %d after the session ended, expected 0 (no respawn)", got)
	}
}

func TestReplayIgnoresFlapKeys(t *testing.T) {
	g := game.NewControlledGame(testModelConfig(), log.New(io.Discard), 1, groundedController{}, game.SpeedFixed)
	g.SpawnBirds(1)

	m := NewReplayModel(g, 60, "test")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if updated.(Model).flapQueued {
		t.Error("flap key queued an input in replay mode")
	}
}
