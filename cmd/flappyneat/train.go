package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avrobertson/flappyneat/internal/evolve"
	"github.com/avrobertson/flappyneat/internal/game"
	"github.com/avrobertson/flappyneat/internal/storage"
)

var (
	flagResume      bool
	flagGenerations int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a population of AI birds",
	Long: `Run headless NEAT training. Each generation plays one shared game
episode; when the last bird dies the population breeds and a checkpoint
is written. The best genome seen across the whole run is saved at the
end, including on Ctrl+C.

Examples:
  flappyneat train
  flappyneat train --generations 50
  flappyneat train --resume
  flappyneat train --seed 42`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().BoolVar(&flagResume, "resume", false, "Resume from the latest checkpoint")
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generation budget override (0 = from config)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	if flagGenerations > 0 {
		cfg.AI.MaxGenerations = flagGenerations
	}

	seed := gameSeed()
	trainer, err := evolve.NewTrainer(cfg.AI, logger, seed)
	if err != nil {
		return err
	}
	if flagResume {
		resumed, resumeErr := trainer.Resume(seed)
		if resumeErr != nil {
			return resumeErr
		}
		if resumed {
			logger.Info("resumed from checkpoint", "generation", trainer.Generation())
		} else {
			logger.Info("no checkpoint found, starting fresh")
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, statistics will not be recorded", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g := game.NewControlledGame(cfg, logger, seed, trainer, game.SpeedFixed)

	err = trainer.Train(ctx, g, func(stats evolve.GenerationStats) {
		if store == nil {
			return
		}
		_, saveErr := store.SaveGeneration(storage.GenerationEntry{
			Generation: stats.Generation,
			Population: stats.Population,
			Best:       stats.Best,
			Mean:       stats.Mean,
			StdDev:     stats.StdDev,
			BestScore:  stats.BestScore,
			Frames:     stats.Frames,
			DurationMS: stats.Duration.Milliseconds(),
		})
		if saveErr != nil {
			logger.Warn("could not record generation", "error", saveErr)
		}
	})
	if errors.Is(err, context.Canceled) {
		logger.Info("training interrupted, progress checkpointed")
		return nil
	}
	return err
}
