package evolve

import (
	"math/rand"
	"path/filepath"
	"testing"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

func genomesEqual(t *testing.T, a, b *genetics.Genome) {
	t.Helper()
	if a.Id != b.Id {
		t.Errorf("genome id %d != %d", a.Id, b.Id)
	}
	if len(a.Nodes) != len(b.Nodes) || len(a.Genes) != len(b.Genes) {
		t.Fatalf("topology differs: %d/%d nodes, %d/%d genes",
			len(a.Nodes), len(b.Nodes), len(a.Genes), len(b.Genes))
	}
	for i := range a.Nodes {
		if a.Nodes[i].Id != b.Nodes[i].Id ||
			a.Nodes[i].NeuronType != b.Nodes[i].NeuronType ||
			a.Nodes[i].ActivationType != b.Nodes[i].ActivationType {
			t.Errorf("node %d differs", i)
		}
	}
	for i := range a.Genes {
		ga, gb := a.Genes[i], b.Genes[i]
		if ga.InnovationNum != gb.InnovationNum ||
			ga.Link.ConnectionWeight != gb.Link.ConnectionWeight ||
			ga.IsEnabled != gb.IsEnabled ||
			ga.Link.InNode.Id != gb.Link.InNode.Id ||
			ga.Link.OutNode.Id != gb.Link.OutNode.Id {
			t.Errorf("gene %d differs", i)
		}
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewCheckpointStore(dir, "generation")

	p := newTestPopulation(t, 8)
	// Grow some structure so the round trip covers hidden nodes and
	// disabled genes.
	rng := rand.New(rand.NewSource(9))
	idGen := p.idGen
	for _, g := range p.Genomes()[:3] {
		splitConnection(g, idGen, rng, neatmath.TanhActivation)
	}
	for i := 0; i < 3; i++ {
		if err := p.Epoch(uniformFitness(p, float64(i+1))); err != nil {
			t.Fatal(err)
		}
	}

	path, err := store.Save(p)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, err := LoadPopulation(path, DefaultOptions(), 1)
	if err != nil {
		t.Fatalf("LoadPopulation: %v", err)
	}

	if restored.Generation() != p.Generation() {
		t.Errorf("generation = %d, expected %d", restored.Generation(), p.Generation())
	}
	if restored.Size() != p.Size() {
		t.Errorf("size = %d, expected %d", restored.Size(), p.Size())
	}
	for i := range p.Genomes() {
		genomesEqual(t, p.Genomes()[i], restored.Genomes()[i])
	}

	// Id and innovation sequences continue where the run stopped.
	if restored.idGen.nextID != p.idGen.nextID {
		t.Errorf("next genome id = %d, expected %d", restored.idGen.nextID, p.idGen.nextID)
	}
	if restored.idGen.nextInnovation != p.idGen.nextInnovation {
		t.Errorf("next innovation = %d, expected %d", restored.idGen.nextInnovation, p.idGen.nextInnovation)
	}
}

func TestLatestPicksNewestGeneration(t *testing.T) {
	dir := t.TempDir()
	store := NewCheckpointStore(dir, "generation")

	p := newTestPopulation(t, 4)
	for i := 0; i < 3; i++ {
		if _, err := store.Save(p); err != nil {
			t.Fatal(err)
		}
		if err := p.Epoch(uniformFitness(p, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Save(p); err != nil {
		t.Fatal(err)
	}

	path, ok, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !ok {
		t.Fatal("Latest found no checkpoint")
	}
	if want := filepath.Join(dir, "generation_000003.json"); path != want {
		t.Errorf("Latest = %s, expected %s", path, want)
	}
}

func TestLatestEmptyDir(t *testing.T) {
	store := NewCheckpointStore(filepath.Join(t.TempDir(), "missing"), "generation")
	if _, ok, err := store.Latest(); err != nil || ok {
		t.Errorf("Latest on missing dir = (%v, %v), expected no checkpoint and no error", ok, err)
	}
}

func TestGenomeArtifactRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	g := newBirdGenome(5, neatmath.TanhActivation, rng)
	idGen := newIDGenerator()
	splitConnection(g, idGen, rng, neatmath.TanhActivation)

	path := filepath.Join(t.TempDir(), "best", "genome.json")
	if err := SaveGenome(path, g); err != nil {
		t.Fatalf("SaveGenome: %v", err)
	}
	loaded, err := LoadGenome(path)
	if err != nil {
		t.Fatalf("LoadGenome: %v", err)
	}
	genomesEqual(t, g, loaded)

	// The artifact must rebuild into a working phenotype.
	net, err := buildNetwork(loaded)
	if err != nil {
		t.Fatalf("buildNetwork: %v", err)
	}
	if _, err := activate(net, []float64{1, 2, 3}); err != nil {
		t.Errorf("activate on restored genome: %v", err)
	}
}
