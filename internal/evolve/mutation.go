package evolve

import (
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

const (
	perturbProb     = 0.9 // perturb vs replace when mutating a weight
	maxWeight       = 8.0
	maxLinkAttempts = 20
	// Seed genomes use innovations 1..numInputs; structural mutations start
	// well above so they never collide.
	initialInnovation = 1000
)

// idGenerator hands out unique genome ids and innovation numbers. Both
// sequences are part of checkpoint state so resumed runs keep alignment.
type idGenerator struct {
	nextID         int
	nextInnovation int64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{nextID: 1, nextInnovation: initialInnovation}
}

func (g *idGenerator) NextID() int {
	id := g.nextID
	g.nextID++
	return id
}

func (g *idGenerator) NextInnovation() int64 {
	n := g.nextInnovation
	g.nextInnovation++
	return n
}

// crossover mates two parents into a child genome. Genes align by
// innovation number; the fitter parent contributes disjoint and excess
// genes, with ties shared at random.
func crossover(p1, p2 *genetics.Genome, fit1, fit2 float64, childID int, rng *rand.Rand) *genetics.Genome {
	primary, secondary := p1, p2
	primaryFit := fit1 >= fit2
	if !primaryFit {
		primary, secondary = p2, p1
	}

	primaryGenes := genesByInnovation(primary)
	secondaryGenes := genesByInnovation(secondary)

	innovations := make([]int64, 0, len(primaryGenes)+len(secondaryGenes))
	for innov := range primaryGenes {
		innovations = append(innovations, innov)
	}
	for innov := range secondaryGenes {
		if _, dup := primaryGenes[innov]; !dup {
			innovations = append(innovations, innov)
		}
	}
	sort.Slice(innovations, func(i, j int) bool { return innovations[i] < innovations[j] })

	nodeMap := make(map[int]*network.NNode, len(primary.Nodes))
	for _, n := range primary.Nodes {
		nodeMap[n.Id] = copyNode(n)
	}
	for _, n := range secondary.Nodes {
		if _, ok := nodeMap[n.Id]; !ok {
			nodeMap[n.Id] = copyNode(n)
		}
	}

	genes := make([]*genetics.Gene, 0, len(innovations))
	for _, innov := range innovations {
		pg, sg := primaryGenes[innov], secondaryGenes[innov]

		var pick *genetics.Gene
		switch {
		case pg != nil && sg != nil:
			if rng.Float64() < 0.5 {
				pick = pg
			} else {
				pick = sg
			}
		case pg != nil:
			pick = pg
		case fit1 == fit2:
			// Equal parents share their disjoint and excess genes.
			if rng.Float64() < 0.5 {
				pick = sg
			}
		}
		if pick == nil {
			continue
		}

		in, out := nodeMap[pick.Link.InNode.Id], nodeMap[pick.Link.OutNode.Id]
		if in == nil || out == nil {
			continue
		}
		child := genetics.NewGeneWithTrait(
			nil, pick.Link.ConnectionWeight, in, out,
			pick.Link.IsRecurrent, pick.InnovationNum, pick.MutationNum,
		)
		child.IsEnabled = pick.IsEnabled
		genes = append(genes, child)
	}

	nodes := make([]*network.NNode, 0, len(nodeMap))
	for _, n := range nodeMap {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Id < nodes[j].Id })

	return genetics.NewGenome(childID, nil, nodes, genes)
}

func genesByInnovation(g *genetics.Genome) map[int64]*genetics.Gene {
	m := make(map[int64]*genetics.Gene, len(g.Genes))
	for _, gene := range g.Genes {
		m[gene.InnovationNum] = gene
	}
	return m
}

// mutate applies the configured mutation operators to a genome in place.
func mutate(g *genetics.Genome, opts *neat.Options, idGen *idGenerator, rng *rand.Rand, hiddenActivation neatmath.NodeActivationType) {
	if rng.Float64() < opts.MutateLinkWeightsProb {
		mutateWeights(g, opts.WeightMutPower, rng)
	}
	if rng.Float64() < opts.MutateAddNodeProb {
		splitConnection(g, idGen, rng, hiddenActivation)
	}
	if rng.Float64() < opts.MutateAddLinkProb {
		addConnection(g, idGen, rng)
	}
	if rng.Float64() < opts.MutateToggleEnableProb {
		toggleGene(g, rng)
	}
}

func mutateWeights(g *genetics.Genome, power float64, rng *rand.Rand) {
	for _, gene := range g.Genes {
		if rng.Float64() < perturbProb {
			gene.Link.ConnectionWeight += (rng.Float64()*2 - 1) * power
		} else {
			gene.Link.ConnectionWeight = rng.Float64()*4 - 2
		}
		gene.Link.ConnectionWeight = clampWeight(gene.Link.ConnectionWeight)
	}
}

func clampWeight(w float64) float64 {
	if w > maxWeight {
		return maxWeight
	}
	if w < -maxWeight {
		return -maxWeight
	}
	return w
}

// splitConnection inserts a hidden node into a random enabled gene: the
// original gene is disabled and replaced by an identity link into the new
// node and the old weight out of it.
func splitConnection(g *genetics.Genome, idGen *idGenerator, rng *rand.Rand, activation neatmath.NodeActivationType) bool {
	enabled := make([]*genetics.Gene, 0, len(g.Genes))
	for _, gene := range g.Genes {
		if gene.IsEnabled {
			enabled = append(enabled, gene)
		}
	}
	if len(enabled) == 0 {
		return false
	}
	split := enabled[rng.Intn(len(enabled))]
	split.IsEnabled = false

	maxNodeID := 0
	for _, n := range g.Nodes {
		if n.Id > maxNodeID {
			maxNodeID = n.Id
		}
	}
	node := network.NewNNode(maxNodeID+1, network.HiddenNeuron)
	node.ActivationType = activation

	into := genetics.NewGeneWithTrait(
		nil, 1.0, split.Link.InNode, node, false, idGen.NextInnovation(), 0,
	)
	outOf := genetics.NewGeneWithTrait(
		nil, split.Link.ConnectionWeight, node, split.Link.OutNode, false, idGen.NextInnovation(), 0,
	)

	g.Nodes = append(g.Nodes, node)
	g.Genes = append(g.Genes, into, outOf)
	return true
}

// addConnection adds a new forward link between two previously unconnected
// nodes, giving up after a bounded number of attempts on dense genomes.
func addConnection(g *genetics.Genome, idGen *idGenerator, rng *rand.Rand) bool {
	var sources, targets []*network.NNode
	for _, n := range g.Nodes {
		switch n.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			sources = append(sources, n)
		case network.HiddenNeuron:
			sources = append(sources, n)
			targets = append(targets, n)
		case network.OutputNeuron:
			targets = append(targets, n)
		}
	}
	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[int64]bool, len(g.Genes))
	for _, gene := range g.Genes {
		existing[connectionKey(gene.Link.InNode.Id, gene.Link.OutNode.Id)] = true
	}

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		src := sources[rng.Intn(len(sources))]
		dst := targets[rng.Intn(len(targets))]
		if src.Id == dst.Id || existing[connectionKey(src.Id, dst.Id)] {
			continue
		}
		g.Genes = append(g.Genes, genetics.NewGeneWithTrait(
			nil, rng.Float64()*4-2, src, dst, false, idGen.NextInnovation(), 0,
		))
		return true
	}
	return false
}

func connectionKey(inID, outID int) int64 {
	return int64(inID)<<32 | int64(outID)
}

// toggleGene flips one gene's enabled flag, refusing to disconnect an
// output entirely.
func toggleGene(g *genetics.Genome, rng *rand.Rand) {
	if len(g.Genes) == 0 {
		return
	}
	gene := g.Genes[rng.Intn(len(g.Genes))]
	gene.IsEnabled = !gene.IsEnabled
	if gene.IsEnabled {
		return
	}
	for _, other := range g.Genes {
		if other.Link.OutNode.Id == gene.Link.OutNode.Id && other.IsEnabled {
			return
		}
	}
	gene.IsEnabled = true
}

// compatibility measures genetic distance between two genomes: normalized
// disjoint and excess gene counts plus average weight difference of
// matching genes.
func compatibility(g1, g2 *genetics.Genome, opts *neat.Options) float64 {
	genes1 := genesByInnovation(g1)
	genes2 := genesByInnovation(g2)

	var maxInnov1, maxInnov2 int64
	for innov := range genes1 {
		if innov > maxInnov1 {
			maxInnov1 = innov
		}
	}
	for innov := range genes2 {
		if innov > maxInnov2 {
			maxInnov2 = innov
		}
	}

	matching, disjoint, excess := 0, 0, 0
	weightDiff := 0.0
	for innov, gene1 := range genes1 {
		if gene2, ok := genes2[innov]; ok {
			matching++
			weightDiff += math.Abs(gene1.Link.ConnectionWeight - gene2.Link.ConnectionWeight)
		} else if innov > maxInnov2 {
			excess++
		} else {
			disjoint++
		}
	}
	for innov := range genes2 {
		if _, ok := genes1[innov]; ok {
			continue
		}
		if innov > maxInnov1 {
			excess++
		} else {
			disjoint++
		}
	}

	n := float64(len(g1.Genes))
	if len(g2.Genes) > len(g1.Genes) {
		n = float64(len(g2.Genes))
	}
	if n < 20 {
		n = 1 // small genomes are compared unnormalized
	}

	avgWeightDiff := 0.0
	if matching > 0 {
		avgWeightDiff = weightDiff / float64(matching)
	}

	return (opts.ExcessCoeff*float64(excess)+opts.DisjointCoeff*float64(disjoint))/n +
		opts.MutdiffCoeff*avgWeightDiff
}
