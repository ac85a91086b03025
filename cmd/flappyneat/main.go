// flappyneat is a terminal Flappy Bird clone with a NEAT neuroevolution
// trainer that learns to play it.
//
// Usage:
//
//	flappyneat play           - Play the game yourself
//	flappyneat train          - Train a population of AI birds
//	flappyneat replay         - Watch the best trained bird play
//	flappyneat scores         - Show high scores and training history
//	flappyneat serve          - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>     - Override the configured frame rate
//	--seed <value>   - Set RNG seed for reproducible runs
//	--config <path>  - Path to a custom game config YAML
//	--db <path>      - Path to the records database
//	--debug          - Verbose logging and pipe guidelines overlay
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/avrobertson/flappyneat/internal/config"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagConfig string
	flagDBPath string
	flagDebug  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappyneat",
	Short: "Flappy Bird in your terminal, with a NEAT AI that learns to play",
	Long: `flappyneat is a terminal Flappy Bird clone. Play it yourself, or train
a population of neural-network birds with NEAT neuroevolution and watch
the best one play.

Examples:
  flappyneat play
  flappyneat train --generations 50
  flappyneat replay
  flappyneat scores
  flappyneat serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate override (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flappyneat/scores.db", "Path to records database")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Debug logging and guideline overlay")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds the process logger honoring the debug flag.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "flappyneat",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadConfig loads the layered game config and applies flag overrides.
func loadConfig(logger *log.Logger) (config.Config, error) {
	cfg, err := config.Load(flagConfig, logger)
	if err != nil {
		return config.Config{}, err
	}
	if flagFPS > 0 {
		cfg.Game.FPS = flagFPS
	}
	return cfg, nil
}

// gameSeed resolves the RNG seed from the flag or wall clock.
func gameSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}
