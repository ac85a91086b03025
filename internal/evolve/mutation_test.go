package evolve

import (
	"math/rand"
	"testing"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

func TestSplitConnection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := newBirdGenome(1, neatmath.TanhActivation, rng)
	idGen := newIDGenerator()

	nodesBefore, genesBefore := len(g.Nodes), len(g.Genes)
	if !splitConnection(g, idGen, rng, neatmath.TanhActivation) {
		t.Fatal("splitConnection failed on a genome with enabled genes")
	}

	if len(g.Nodes) != nodesBefore+1 {
		t.Errorf("node count = %d, expected %d", len(g.Nodes), nodesBefore+1)
	}
	if len(g.Genes) != genesBefore+2 {
		t.Errorf("gene count = %d, expected %d", len(g.Genes), genesBefore+2)
	}

	disabled := 0
	for _, gene := range g.Genes {
		if !gene.IsEnabled {
			disabled++
		}
	}
	if disabled != 1 {
		t.Errorf("disabled genes = %d, expected the split gene only", disabled)
	}

	// New genes carry fresh innovation numbers above the seed range.
	for _, gene := range g.Genes[genesBefore:] {
		if gene.InnovationNum < initialInnovation {
			t.Errorf("structural gene innovation %d collides with the seed range", gene.InnovationNum)
		}
	}
}

func TestAddConnection(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := newBirdGenome(1, neatmath.TanhActivation, rng)
	idGen := newIDGenerator()

	// Fully connected input->output: no link can be added until a hidden
	// node exists.
	if addConnection(g, idGen, rng) {
		t.Fatal("addConnection found a link on a saturated genome")
	}

	if !splitConnection(g, idGen, rng, neatmath.TanhActivation) {
		t.Fatal("splitConnection failed")
	}
	genesBefore := len(g.Genes)
	if !addConnection(g, idGen, rng) {
		t.Fatal("addConnection failed with a hidden node present")
	}
	if len(g.Genes) != genesBefore+1 {
		t.Errorf("gene count = %d, expected %d", len(g.Genes), genesBefore+1)
	}
}

func TestToggleGeneKeepsOutputsConnected(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := newBirdGenome(1, neatmath.TanhActivation, rng)

	// Disable all but one gene by hand, then toggle repeatedly: the last
	// enabled path to the output must survive.
	for _, gene := range g.Genes[1:] {
		gene.IsEnabled = false
	}
	for i := 0; i < 50; i++ {
		toggleGene(g, rng)
		enabled := 0
		for _, gene := range g.Genes {
			if gene.IsEnabled {
				enabled++
			}
		}
		if enabled == 0 {
			t.Fatal("toggleGene disconnected the output entirely")
		}
	}
}

func TestMutateWeightsClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := newBirdGenome(1, neatmath.TanhActivation, rng)
	for i := 0; i < 200; i++ {
		mutateWeights(g, 5.0, rng)
		for _, gene := range g.Genes {
			w := gene.Link.ConnectionWeight
			if w > maxWeight || w < -maxWeight {
				t.Fatalf("weight %f escaped the clamp", w)
			}
		}
	}
}

func TestCrossoverAlignsByInnovation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p1 := newBirdGenome(1, neatmath.TanhActivation, rng)
	p2 := newBirdGenome(2, neatmath.TanhActivation, rng)

	// Give the fitter parent extra structure.
	idGen := newIDGenerator()
	splitConnection(p1, idGen, rng, neatmath.TanhActivation)

	child := crossover(p1, p2, 10, 1, 3, rng)

	if child.Id != 3 {
		t.Errorf("child id = %d, expected 3", child.Id)
	}

	// Every child gene must exist in a parent under the same innovation.
	parentInnovs := map[int64]bool{}
	for _, gene := range p1.Genes {
		parentInnovs[gene.InnovationNum] = true
	}
	for _, gene := range p2.Genes {
		parentInnovs[gene.InnovationNum] = true
	}
	for _, gene := range child.Genes {
		if !parentInnovs[gene.InnovationNum] {
			t.Errorf("child gene has innovation %d unknown to both parents", gene.InnovationNum)
		}
	}

	// The fitter parent's excess structure is always inherited.
	childInnovs := map[int64]bool{}
	for _, gene := range child.Genes {
		childInnovs[gene.InnovationNum] = true
	}
	for _, gene := range p1.Genes {
		if !childInnovs[gene.InnovationNum] {
			t.Errorf("fitter parent's gene %d missing from the child", gene.InnovationNum)
		}
	}
}

func TestCompatibility(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	opts := DefaultOptions()

	g1 := newBirdGenome(1, neatmath.TanhActivation, rng)
	clone := cloneGenome(g1, 2)
	if d := compatibility(g1, clone, opts); d != 0 {
		t.Errorf("distance to an identical clone = %f, expected 0", d)
	}

	clone.Genes[0].Link.ConnectionWeight += 2.0
	if d := compatibility(g1, clone, opts); d <= 0 {
		t.Errorf("distance = %f after weight change, expected > 0", d)
	}

	// Structural divergence moves the distance further than weight drift.
	weightOnly := compatibility(g1, clone, opts)
	idGen := newIDGenerator()
	splitConnection(clone, idGen, rng, neatmath.TanhActivation)
	addConnection(clone, idGen, rng)
	if d := compatibility(g1, clone, opts); d <= weightOnly {
		t.Errorf("distance = %f after structural change, expected > %f", d, weightOnly)
	}
}
