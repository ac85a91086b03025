package evolve

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// fallbackDepth covers minimal topologies where goNEAT cannot derive an
// activation depth.
const fallbackDepth = 5

// buildNetwork materializes the phenotype network for a genome.
func buildNetwork(g *genetics.Genome) (*network.Network, error) {
	net, err := g.Genesis(g.Id)
	if err != nil {
		return nil, fmt.Errorf("evolve: failed to build network for genome %d: %w", g.Id, err)
	}
	return net, nil
}

// activate feeds one observation through the network and returns the single
// output. The network is flushed afterwards so episodes stay Markovian:
// each frame's decision depends only on that frame's observation.
func activate(net *network.Network, inputs []float64) (float64, error) {
	if err := net.LoadSensors(inputs); err != nil {
		return 0, fmt.Errorf("evolve: failed to load sensors: %w", err)
	}

	depth, err := net.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = fallbackDepth
	}
	for i := 0; i < depth; i++ {
		if _, err := net.Activate(); err != nil {
			return 0, fmt.Errorf("evolve: network activation failed: %w", err)
		}
	}

	out := net.ReadOutputs()
	if len(out) == 0 {
		return 0, fmt.Errorf("evolve: network produced no outputs")
	}

	if _, err := net.Flush(); err != nil {
		return 0, fmt.Errorf("evolve: network flush failed: %w", err)
	}
	return out[0], nil
}
