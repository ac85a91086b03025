package evolve

import (
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/avrobertson/flappyneat/internal/config"
	"github.com/avrobertson/flappyneat/internal/game"
)

// Replayer drives a single bird with a trained genome. It satisfies
// game.Controller but ignores the fitness protocol: replay episodes are
// watched, not evaluated.
type Replayer struct {
	net       *network.Network
	threshold float64
}

// NewReplayer loads the genome artifact at path and prepares it for play.
func NewReplayer(path string, cfg config.AIConfig) (*Replayer, error) {
	threshold, err := cfg.ActivationThreshold()
	if err != nil {
		return nil, err
	}
	genome, err := LoadGenome(path)
	if err != nil {
		return nil, err
	}
	net, err := buildNetwork(genome)
	if err != nil {
		return nil, err
	}
	return &Replayer{net: net, threshold: threshold}, nil
}

// Decide feeds the observation through the trained network.
func (r *Replayer) Decide(id int, obs game.Observation) (bool, error) {
	out, err := activate(r.net, []float64{obs.DeltaX, obs.DeltaYTop, obs.DeltaYBottom})
	if err != nil {
		return false, err
	}
	return out >= r.threshold, nil
}

// Reward is a no-op during replay.
func (r *Replayer) Reward(id int, amount float64) error { return nil }

// Penalize is a no-op during replay.
func (r *Replayer) Penalize(id int, amount float64) error { return nil }

// Remove is a no-op during replay; the episode simply ends.
func (r *Replayer) Remove(id int) error { return nil }
