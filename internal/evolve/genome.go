// Package evolve trains Flappy Bird controllers by neuroevolution. Genomes
// and phenotype networks come from goNEAT; this package owns population
// management, the per-episode fitness protocol and checkpointing.
package evolve

import (
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// A bird perceives three values and answers one: fly or not.
const (
	numInputs  = 3
	numOutputs = 1
)

var activationsByName = map[string]neatmath.NodeActivationType{
	"tanh":    neatmath.TanhActivation,
	"sigmoid": neatmath.SigmoidSteepenedActivation,
	"gauss":   neatmath.GaussianBipolarActivation,
	"sin":     neatmath.SineActivation,
	"linear":  neatmath.LinearActivation,
}

// ActivationByName resolves a configured activation function name.
func ActivationByName(name string) (neatmath.NodeActivationType, error) {
	a, ok := activationsByName[name]
	if !ok {
		return 0, fmt.Errorf("evolve: unknown activation function %q", name)
	}
	return a, nil
}

func nameByActivation(a neatmath.NodeActivationType) string {
	for name, t := range activationsByName {
		if t == a {
			return name
		}
	}
	return "linear"
}

// newBirdGenome creates a fully connected seed genome: three linear inputs
// wired straight to the single output. Innovation numbers for these seed
// links are fixed so every founder aligns during crossover.
func newBirdGenome(id int, outputActivation neatmath.NodeActivationType, rng *rand.Rand) *genetics.Genome {
	nodes := make([]*network.NNode, 0, numInputs+numOutputs)
	for i := 1; i <= numInputs; i++ {
		n := network.NewNNode(i, network.InputNeuron)
		n.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, n)
	}
	out := network.NewNNode(numInputs+1, network.OutputNeuron)
	out.ActivationType = outputActivation
	nodes = append(nodes, out)

	genes := make([]*genetics.Gene, 0, numInputs)
	for i := 0; i < numInputs; i++ {
		weight := rng.Float64()*2 - 1
		genes = append(genes, genetics.NewGeneWithTrait(
			nil, weight, nodes[i], out, false, int64(i+1), 0,
		))
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

// cloneGenome deep-copies a genome under a new id. Innovation numbers and
// node ids are preserved so clones stay crossover-compatible.
func cloneGenome(g *genetics.Genome, newID int) *genetics.Genome {
	nodeMap := make(map[int]*network.NNode, len(g.Nodes))
	nodes := make([]*network.NNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		c := copyNode(n)
		nodeMap[n.Id] = c
		nodes = append(nodes, c)
	}

	genes := make([]*genetics.Gene, 0, len(g.Genes))
	for _, gene := range g.Genes {
		in, out := nodeMap[gene.Link.InNode.Id], nodeMap[gene.Link.OutNode.Id]
		if in == nil || out == nil {
			continue
		}
		c := genetics.NewGeneWithTrait(
			nil, gene.Link.ConnectionWeight, in, out,
			gene.Link.IsRecurrent, gene.InnovationNum, gene.MutationNum,
		)
		c.IsEnabled = gene.IsEnabled
		genes = append(genes, c)
	}

	return genetics.NewGenome(newID, nil, nodes, genes)
}

func copyNode(n *network.NNode) *network.NNode {
	c := network.NewNNode(n.Id, n.NeuronType)
	c.ActivationType = n.ActivationType
	return c
}
