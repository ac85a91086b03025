package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avrobertson/flappyneat/internal/platform/tui"
	"github.com/avrobertson/flappyneat/internal/storage"
)

var flagPlain bool

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores and training history",
	Long: `Browse recorded high scores and training generation statistics.

Opens an interactive browser when attached to a terminal; use --plain
for pipe-friendly text output.

Examples:
  flappyneat scores
  flappyneat scores --plain`,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagPlain, "plain", false, "Plain text output instead of the interactive browser")
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printScores(store)
	}
	return tui.RunScoreboard(store)
}

func printScores(store *storage.Store) error {
	scores, err := store.TopScores(10)
	if err != nil {
		return err
	}

	fmt.Println("High Scores")
	if len(scores) == 0 {
		fmt.Println("  no scores recorded yet")
	}
	for i, e := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, e.Score, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	generations, err := store.RecentGenerations(10)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Recent Training Generations")
	if len(generations) == 0 {
		fmt.Println("  no training runs recorded yet")
	}
	for _, e := range generations {
		fmt.Printf("  gen %-5d best %-8.1f mean %-8.1f score %-5d frames %d\n",
			e.Generation, e.Best, e.Mean, e.BestScore, e.Frames)
	}
	return nil
}
