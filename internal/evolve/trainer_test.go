package evolve

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/game"
)

func testAIConfig(t *testing.T) config.AIConfig {
	t.Helper()
	dir := t.TempDir()
	return config.AIConfig{
		Reward:               15,
		Penalty:              100,
		AliveReward:          0.1,
		PopulationSize:       5,
		MaxGenerations:       3,
		Activation:           "tanh",
		ActivationThresholds: map[string]float64{"tanh": 0.5},
		CheckpointDir:        filepath.Join(dir, "checkpoints"),
		CheckpointPrefix:     "generation",
		BestModelFile:        filepath.Join(dir, "best_genome.json"),
	}
}

func newTestTrainer(t *testing.T) *Trainer {
	t.Helper()
	tr, err := NewTrainer(testAIConfig(t), log.New(io.Discard), 11)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	return tr
}

func beginTestEpisode(t *testing.T, tr *Trainer) []int {
	t.Helper()
	ids := []int{10, 11, 12, 13, 14}
	if err := tr.BeginEpisode(ids); err != nil {
		t.Fatalf("BeginEpisode: %v", err)
	}
	return ids
}

func TestTrainerMissingThreshold(t *testing.T) {
	cfg := testAIConfig(t)
	cfg.ActivationThresholds = map[string]float64{"sigmoid": 0.75}
	if _, err := NewTrainer(cfg, log.New(io.Discard), 1); err == nil {
		t.Error("expected error for missing activation threshold")
	}
}

func TestBeginEpisodeSizeMismatch(t *testing.T) {
	tr := newTestTrainer(t)
	if err := tr.BeginEpisode([]int{1, 2}); err == nil {
		t.Error("expected error for bird/genome count mismatch")
	}
}

func TestRosterErrors(t *testing.T) {
	tr := newTestTrainer(t)

	// Before any episode the roster is empty.
	if _, err := tr.Decide(10, game.Observation{}); !errors.Is(err, ErrPopulationEmpty) {
		t.Errorf("Decide on empty roster = %v, expected ErrPopulationEmpty", err)
	}
	if err := tr.Reward(10, 1); !errors.Is(err, ErrPopulationEmpty) {
		t.Errorf("Reward on empty roster = %v, expected ErrPopulationEmpty", err)
	}

	beginTestEpisode(t, tr)

	if _, err := tr.Decide(99, game.Observation{}); !errors.Is(err, ErrGenomeNotFound) {
		t.Errorf("Decide(99) = %v, expected ErrGenomeNotFound", err)
	}
	if err := tr.Penalize(99, 1); !errors.Is(err, ErrGenomeNotFound) {
		t.Errorf("Penalize(99) = %v, expected ErrGenomeNotFound", err)
	}
	if err := tr.Remove(99); !errors.Is(err, ErrGenomeNotFound) {
		t.Errorf("Remove(99) = %v, expected ErrGenomeNotFound", err)
	}
}

func TestRewardPenalizeAccumulate(t *testing.T) {
	tr := newTestTrainer(t)
	ids := beginTestEpisode(t, tr)

	if err := tr.Reward(ids[0], 15); err != nil {
		t.Fatal(err)
	}
	if err := tr.Reward(ids[0], 0.5); err != nil {
		t.Fatal(err)
	}
	if err := tr.Penalize(ids[0], 100); err != nil {
		t.Fatal(err)
	}

	m := tr.find(ids[0])
	if m == nil {
		t.Fatal("member vanished from the roster")
	}
	if want := -84.5; m.fitness != want {
		t.Errorf("fitness = %f, expected %f", m.fitness, want)
	}
}

func TestRemoveKeepsFitnessForSelection(t *testing.T) {
	tr := newTestTrainer(t)
	ids := beginTestEpisode(t, tr)

	if err := tr.Reward(ids[2], 30); err != nil {
		t.Fatal(err)
	}
	if err := tr.Remove(ids[2]); err != nil {
		t.Fatal(err)
	}

	if tr.find(ids[2]) != nil {
		t.Error("removed bird still addressable in the roster")
	}
	if err := tr.Remove(ids[2]); !errors.Is(err, ErrGenomeNotFound) {
		t.Errorf("second Remove = %v, expected ErrGenomeNotFound", err)
	}
	if len(tr.evaluated) != 1 || tr.evaluated[0].fitness != 30 {
		t.Error("removed record did not keep its fitness in the evaluated list")
	}
}

func TestDecideThreshold(t *testing.T) {
	tr := newTestTrainer(t)
	ids := beginTestEpisode(t, tr)

	// Output is a tanh value in [-1, 1]; the decision must be a plain
	// threshold comparison, so just confirm it is stable and error-free
	// for a fixed observation.
	obs := game.Observation{DeltaX: 20, DeltaYTop: 3, DeltaYBottom: 5}
	first, err := tr.Decide(ids[0], obs)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := tr.Decide(ids[0], obs)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatal("Decide is not deterministic for a fixed observation")
		}
	}
}

func TestFinishEpisodeAdvancesGeneration(t *testing.T) {
	tr := newTestTrainer(t)
	ids := beginTestEpisode(t, tr)

	for i, id := range ids {
		if err := tr.Reward(id, float64(i)); err != nil {
			t.Fatal(err)
		}
		if err := tr.Remove(id); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := tr.FinishEpisode()
	if err != nil {
		t.Fatalf("FinishEpisode: %v", err)
	}
	if tr.Generation() != 1 {
		t.Errorf("generation = %d after one episode, expected 1", tr.Generation())
	}
	if stats.Best != 4 {
		t.Errorf("stats.Best = %f, expected 4", stats.Best)
	}
	if stats.Mean != 2 {
		t.Errorf("stats.Mean = %f, expected 2", stats.Mean)
	}
	if stats.Population != 5 {
		t.Errorf("stats.Population = %d, expected 5", stats.Population)
	}

	// A checkpoint for the new generation must exist.
	if _, ok, err := tr.store.Latest(); err != nil || !ok {
		t.Errorf("no checkpoint after FinishEpisode (ok=%v, err=%v)", ok, err)
	}
}

func TestQuitEarly(t *testing.T) {
	tr := newTestTrainer(t)
	if tr.Quitting() {
		t.Fatal("new trainer already quitting")
	}
	tr.QuitEarly()
	if !tr.Quitting() {
		t.Error("QuitEarly not observed")
	}
}

func TestSaveBestWithoutEpisodes(t *testing.T) {
	tr := newTestTrainer(t)
	if err := tr.SaveBest(); !errors.Is(err, ErrPopulationEmpty) {
		t.Errorf("SaveBest with no evaluations = %v, expected ErrPopulationEmpty", err)
	}
}
