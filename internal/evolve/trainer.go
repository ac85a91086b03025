package evolve

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
	"gonum.org/v1/gonum/stat"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/core"
	"github.com/avrobertson/flappyneat/internal/game"
)

// member pairs one bird with its genome, phenotype and running fitness.
// The roster is the single source of truth: a bird and its record enter
// and leave it together.
type member struct {
	birdID  int
	genome  *genetics.Genome
	net     *network.Network
	fitness float64
}

// GenerationStats summarizes one completed generation.
type GenerationStats struct {
	Generation int
	Population int
	Best       float64
	Mean       float64
	StdDev     float64
	BestScore  int
	Frames     int
	Duration   time.Duration
}

// Trainer evolves a population of bird controllers. It implements
// game.Controller for the episode in flight and owns the generation
// protocol around it: spawn, evaluate, breed, checkpoint.
type Trainer struct {
	cfg       config.AIConfig
	logger    *log.Logger
	pop       *Population
	store     *CheckpointStore
	threshold float64

	roster    []*member
	evaluated []*member

	bestEver        *genetics.Genome
	bestEverFitness float64

	quit atomic.Bool
}

// NewTrainer creates a trainer with a fresh population.
func NewTrainer(cfg config.AIConfig, logger *log.Logger, seed int64) (*Trainer, error) {
	threshold, err := cfg.ActivationThreshold()
	if err != nil {
		return nil, err
	}
	activation, err := ActivationByName(cfg.Activation)
	if err != nil {
		return nil, err
	}
	pop, err := NewPopulation(cfg.PopulationSize, activation, DefaultOptions(), seed)
	if err != nil {
		return nil, err
	}
	return &Trainer{
		cfg:       cfg,
		logger:    logger,
		pop:       pop,
		store:     NewCheckpointStore(cfg.CheckpointDir, cfg.CheckpointPrefix),
		threshold: threshold,
	}, nil
}

// Resume replaces the population with the latest checkpoint, if one
// exists. It reports whether a checkpoint was loaded.
func (t *Trainer) Resume(seed int64) (bool, error) {
	path, ok, err := t.store.Latest()
	if err != nil || !ok {
		return false, err
	}
	pop, err := LoadPopulation(path, DefaultOptions(), seed)
	if err != nil {
		return false, err
	}
	if pop.Size() != t.cfg.PopulationSize {
		t.logger.Warn("checkpoint population size overrides config",
			"checkpoint", pop.Size(), "config", t.cfg.PopulationSize)
	}
	t.pop = pop
	t.logger.Info("resumed from checkpoint", "path", path, "generation", pop.Generation())
	return true, nil
}

// Generation returns the number of completed generations.
func (t *Trainer) Generation() int { return t.pop.Generation() }

// PopulationSize returns the current population size.
func (t *Trainer) PopulationSize() int { return t.pop.Size() }

// QuitEarly stops the training loop after the episode in flight. Safe to
// call from a signal handler goroutine.
func (t *Trainer) QuitEarly() { t.quit.Store(true) }

// Quitting reports whether an early quit was requested.
func (t *Trainer) Quitting() bool { return t.quit.Load() }

// BeginEpisode binds one spawned bird to every genome of the current
// generation and resets fitness.
func (t *Trainer) BeginEpisode(birdIDs []int) error {
	genomes := t.pop.Genomes()
	if len(birdIDs) != len(genomes) {
		return fmt.Errorf("evolve: %d birds for %d genomes", len(birdIDs), len(genomes))
	}
	t.roster = make([]*member, 0, len(genomes))
	t.evaluated = t.evaluated[:0]
	for i, g := range genomes {
		net, err := buildNetwork(g)
		if err != nil {
			return err
		}
		t.roster = append(t.roster, &member{birdID: birdIDs[i], genome: g, net: net})
	}
	return nil
}

func (t *Trainer) find(id int) *member {
	for _, m := range t.roster {
		if m.birdID == id {
			return m
		}
	}
	return nil
}

// Decide feeds the bird's observation through its phenotype and compares
// the output against the activation threshold.
func (t *Trainer) Decide(id int, obs game.Observation) (bool, error) {
	if len(t.roster) == 0 {
		return false, ErrPopulationEmpty
	}
	m := t.find(id)
	if m == nil {
		return false, ErrGenomeNotFound
	}
	if m.net == nil {
		return false, ErrNetworkNotFound
	}
	out, err := activate(m.net, []float64{obs.DeltaX, obs.DeltaYTop, obs.DeltaYBottom})
	if err != nil {
		return false, err
	}
	return out >= t.threshold, nil
}

// Reward credits fitness to a bird's record.
func (t *Trainer) Reward(id int, amount float64) error {
	if len(t.roster) == 0 {
		return ErrPopulationEmpty
	}
	m := t.find(id)
	if m == nil {
		return ErrGenomeNotFound
	}
	m.fitness += amount
	return nil
}

// Penalize debits fitness from a bird's record.
func (t *Trainer) Penalize(id int, amount float64) error {
	if len(t.roster) == 0 {
		return ErrPopulationEmpty
	}
	m := t.find(id)
	if m == nil {
		return ErrGenomeNotFound
	}
	m.fitness -= amount
	return nil
}

// Remove retires a dead bird's record from the roster. The record moves to
// the evaluated list with its fitness intact; the phenotype is dropped
// with it.
func (t *Trainer) Remove(id int) error {
	if len(t.roster) == 0 {
		return ErrPopulationEmpty
	}
	for i, m := range t.roster {
		if m.birdID != id {
			continue
		}
		if m.net == nil {
			return ErrNetworkNotFound
		}
		m.net = nil
		t.roster = append(t.roster[:i], t.roster[i+1:]...)
		t.evaluated = append(t.evaluated, m)
		return nil
	}
	return ErrGenomeNotFound
}

// FinishEpisode closes the generation: fitness flows into the optimizer,
// the best genome artifact candidate is updated and a checkpoint is
// written.
func (t *Trainer) FinishEpisode() (GenerationStats, error) {
	// Survivors of a truncated episode are evaluated with what they earned.
	t.evaluated = append(t.evaluated, t.roster...)
	t.roster = nil
	if len(t.evaluated) == 0 {
		return GenerationStats{}, ErrPopulationEmpty
	}

	fitness := make(map[int]float64, len(t.evaluated))
	scores := make([]float64, 0, len(t.evaluated))
	for _, m := range t.evaluated {
		fitness[m.genome.Id] = m.fitness
		scores = append(scores, m.fitness)
		if t.bestEver == nil || m.fitness > t.bestEverFitness {
			t.bestEver = cloneGenome(m.genome, m.genome.Id)
			t.bestEverFitness = m.fitness
		}
	}

	stats := GenerationStats{
		Generation: t.pop.Generation(),
		Population: len(t.evaluated),
		Best:       floats64Max(scores),
		Mean:       stat.Mean(scores, nil),
		StdDev:     stat.StdDev(scores, nil),
	}

	if err := t.pop.Epoch(fitness); err != nil {
		return stats, err
	}
	t.evaluated = nil

	path, err := t.store.Save(t.pop)
	if err != nil {
		return stats, err
	}
	t.logger.Debug("checkpoint written", "path", path, "generation", t.pop.Generation())
	return stats, nil
}

// SaveBest writes the best genome seen so far to the configured artifact
// path.
func (t *Trainer) SaveBest() error {
	if t.bestEver == nil {
		return ErrPopulationEmpty
	}
	return SaveGenome(t.cfg.BestModelFile, t.bestEver)
}

// Train runs generations of headless episodes against the given game until
// the generation budget, an early quit or a canceled context stops it.
func (t *Trainer) Train(ctx context.Context, g *game.Game, onGeneration func(GenerationStats)) error {
	in := core.NewInputFrame()

	for t.pop.Generation() < t.cfg.MaxGenerations {
		if t.Quitting() || ctx.Err() != nil {
			break
		}

		g.Reset()
		ids := g.SpawnBirds(t.pop.Size())
		if err := t.BeginEpisode(ids); err != nil {
			return err
		}
		g.SetHUDLabel(fmt.Sprintf("gen %d", t.pop.Generation()))

		start := time.Now()
		for !g.EpisodeOver() {
			if t.Quitting() || ctx.Err() != nil {
				break
			}
			if err := g.Step(in); err != nil {
				return err
			}
		}

		stats, err := t.FinishEpisode()
		if err != nil {
			return err
		}
		stats.BestScore = g.BestScore()
		stats.Frames = g.Frame()
		stats.Duration = time.Since(start)

		t.logger.Info("generation complete",
			"generation", stats.Generation,
			"best", fmt.Sprintf("%.1f", stats.Best),
			"mean", fmt.Sprintf("%.1f", stats.Mean),
			"stddev", fmt.Sprintf("%.1f", stats.StdDev),
			"score", stats.BestScore,
			"frames", stats.Frames,
		)
		if onGeneration != nil {
			onGeneration(stats)
		}
	}

	if err := t.SaveBest(); err != nil {
		return err
	}
	t.logger.Info("best genome saved", "path", t.cfg.BestModelFile, "fitness", t.bestEverFitness)
	return ctx.Err()
}

func floats64Max(xs []float64) float64 {
	best := xs[0]
	for _, x := range xs[1:] {
		if x > best {
			best = x
		}
	}
	return best
}
