package main

import (
	"github.com/spf13/cobra"

	"github.com/avrobertson/flappyneat/internal/evolve"
	"github.com/avrobertson/flappyneat/internal/game"
	"github.com/avrobertson/flappyneat/internal/platform/tui"
)

var flagModel string

var replayCmd = &cobra.Command{
	Use:   "replay [genome-file]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Watch the best trained bird play",
	Long: `Load a saved genome and watch it play. By default the best genome
from the last training run is used.

The session ends when the bird dies. Press Q to quit sooner.

Examples:
  flappyneat replay
  flappyneat replay ./best_genome.json`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagModel, "model", "", "Path to a saved genome (default: from config)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	fitToTerminal(&cfg)

	path := flagModel
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = cfg.AI.BestModelFile
	}
	replayer, err := evolve.NewReplayer(path, cfg.AI)
	if err != nil {
		return err
	}

	g := game.NewControlledGame(cfg, logger, gameSeed(), replayer, game.SpeedTimeRate)
	if flagDebug {
		g.SetDebug(true)
	}
	g.SetHUDLabel("replay")
	g.SpawnBirds(1)

	return tui.Run(tui.NewReplayModel(g, cfg.Game.FPS, cfg.Game.Name+" · replay"))
}
