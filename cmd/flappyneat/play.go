package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/game"
	"github.com/avrobertson/flappyneat/internal/platform/tui"
	"github.com/avrobertson/flappyneat/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game yourself",
	Long: `Start an interactive game session.

Controls:
  Space/Up/W - Flap (also starts and restarts the game)
  Q/Ctrl+C   - Quit

Examples:
  flappyneat play
  flappyneat play --config ./my-game.yaml
  flappyneat play --seed 42`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	fitToTerminal(&cfg)

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		store = nil
	}

	g := game.NewHumanGame(cfg, logger, gameSeed())
	if flagDebug {
		g.SetDebug(true)
	}

	runErr := tui.Run(tui.NewModel(g, store, cfg.Game.FPS, cfg.Game.Name))
	if store != nil {
		store.Close()
	}
	return runErr
}

// fitToTerminal shrinks the configured play field when the terminal is
// smaller than it, leaving room for the frame border and title.
func fitToTerminal(cfg *config.Config) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return
	}
	if max := w - 2; max > 0 && cfg.Game.WindowWidth > max {
		cfg.Game.WindowWidth = max
	}
	if max := h - 4; max > 0 && cfg.Game.WindowHeight > max {
		cfg.Game.WindowHeight = max
	}
}
