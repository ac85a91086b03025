package evolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// JSON shapes for persisted genomes. Node and gene records carry everything
// needed to rebuild an identical genetics.Genome: ids, topology, weights,
// enable flags and innovation history.
type nodeJSON struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Activation string `json:"activation"`
}

type geneJSON struct {
	In         int     `json:"in"`
	Out        int     `json:"out"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int64   `json:"innovation"`
	Mutation   float64 `json:"mutation"`
}

type genomeJSON struct {
	ID    int        `json:"id"`
	Nodes []nodeJSON `json:"nodes"`
	Genes []geneJSON `json:"genes"`
}

type checkpointJSON struct {
	Generation     int          `json:"generation"`
	NextGenomeID   int          `json:"next_genome_id"`
	NextInnovation int64        `json:"next_innovation"`
	Genomes        []genomeJSON `json:"genomes"`
}

var neuronTypeNames = map[network.NodeNeuronType]string{
	network.InputNeuron:  "input",
	network.HiddenNeuron: "hidden",
	network.OutputNeuron: "output",
	network.BiasNeuron:   "bias",
}

func neuronTypeByName(name string) (network.NodeNeuronType, error) {
	for t, n := range neuronTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("evolve: unknown neuron type %q", name)
}

func encodeGenome(g *genetics.Genome) genomeJSON {
	out := genomeJSON{
		ID:    g.Id,
		Nodes: make([]nodeJSON, 0, len(g.Nodes)),
		Genes: make([]geneJSON, 0, len(g.Genes)),
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, nodeJSON{
			ID:         n.Id,
			Type:       neuronTypeNames[n.NeuronType],
			Activation: nameByActivation(n.ActivationType),
		})
	}
	for _, gene := range g.Genes {
		out.Genes = append(out.Genes, geneJSON{
			In:         gene.Link.InNode.Id,
			Out:        gene.Link.OutNode.Id,
			Weight:     gene.Link.ConnectionWeight,
			Enabled:    gene.IsEnabled,
			Innovation: gene.InnovationNum,
			Mutation:   gene.MutationNum,
		})
	}
	return out
}

func decodeGenome(in genomeJSON) (*genetics.Genome, error) {
	nodeMap := make(map[int]*network.NNode, len(in.Nodes))
	nodes := make([]*network.NNode, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		neuronType, err := neuronTypeByName(n.Type)
		if err != nil {
			return nil, err
		}
		activation, err := ActivationByName(n.Activation)
		if err != nil {
			return nil, err
		}
		node := network.NewNNode(n.ID, neuronType)
		node.ActivationType = activation
		nodeMap[n.ID] = node
		nodes = append(nodes, node)
	}

	genes := make([]*genetics.Gene, 0, len(in.Genes))
	for _, g := range in.Genes {
		inNode, outNode := nodeMap[g.In], nodeMap[g.Out]
		if inNode == nil || outNode == nil {
			return nil, fmt.Errorf("evolve: gene %d->%d references a missing node", g.In, g.Out)
		}
		gene := genetics.NewGeneWithTrait(
			nil, g.Weight, inNode, outNode, false, g.Innovation, g.Mutation,
		)
		gene.IsEnabled = g.Enabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(in.ID, nil, nodes, genes), nil
}

// CheckpointStore persists one snapshot per generation under a directory.
type CheckpointStore struct {
	dir    string
	prefix string
}

// NewCheckpointStore creates a store rooted at dir with the given filename
// prefix.
func NewCheckpointStore(dir, prefix string) *CheckpointStore {
	return &CheckpointStore{dir: dir, prefix: prefix}
}

// Save writes a snapshot of the population and returns the file path. The
// write goes through a temp file and a rename, so an interrupted run never
// leaves a truncated checkpoint behind.
func (s *CheckpointStore) Save(p *Population) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("evolve: failed to create checkpoint dir: %w", err)
	}

	cp := checkpointJSON{
		Generation:     p.generation,
		NextGenomeID:   p.idGen.nextID,
		NextInnovation: p.idGen.nextInnovation,
		Genomes:        make([]genomeJSON, 0, len(p.genomes)),
	}
	for _, g := range p.genomes {
		cp.Genomes = append(cp.Genomes, encodeGenome(g))
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%06d.json", s.prefix, p.generation))
	if err := writeFileAtomic(path, cp); err != nil {
		return "", err
	}
	return path, nil
}

// Latest returns the path of the most recent checkpoint, or false when the
// directory holds none. The zero-padded generation suffix makes
// lexicographic order chronological.
func (s *CheckpointStore) Latest() (string, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("evolve: failed to list checkpoints: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, s.prefix+"_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sort.Strings(names)
	return filepath.Join(s.dir, names[len(names)-1]), true, nil
}

// LoadPopulation restores a population from a checkpoint file. The restored
// run resumes at the recorded generation with identical genomes and a
// continued id and innovation sequence.
func LoadPopulation(path string, opts *neat.Options, seed int64) (*Population, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("evolve: failed to read checkpoint %s: %w", path, err)
	}
	var cp checkpointJSON
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("evolve: failed to parse checkpoint %s: %w", path, err)
	}
	if len(cp.Genomes) == 0 {
		return nil, ErrPopulationEmpty
	}

	genomes := make([]*genetics.Genome, 0, len(cp.Genomes))
	for _, gj := range cp.Genomes {
		g, err := decodeGenome(gj)
		if err != nil {
			return nil, err
		}
		genomes = append(genomes, g)
	}

	p, err := NewPopulation(len(genomes), outputActivation(genomes[0]), opts, seed)
	if err != nil {
		return nil, err
	}
	p.genomes = genomes
	p.generation = cp.Generation
	p.idGen.nextID = cp.NextGenomeID
	p.idGen.nextInnovation = cp.NextInnovation
	return p, nil
}

// outputActivation returns the activation of a genome's first output node.
func outputActivation(g *genetics.Genome) neatmath.NodeActivationType {
	for _, n := range g.Nodes {
		if n.NeuronType == network.OutputNeuron {
			return n.ActivationType
		}
	}
	return neatmath.TanhActivation
}

// SaveGenome writes a single genome artifact, atomically.
func SaveGenome(path string, g *genetics.Genome) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("evolve: failed to create genome dir: %w", err)
		}
	}
	return writeFileAtomic(path, encodeGenome(g))
}

// LoadGenome reads a genome artifact written by SaveGenome.
func LoadGenome(path string) (*genetics.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("evolve: failed to read genome %s: %w", path, err)
	}
	var gj genomeJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return nil, fmt.Errorf("evolve: failed to parse genome %s: %w", path, err)
	}
	return decodeGenome(gj)
}

func writeFileAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("evolve: failed to encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("evolve: failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("evolve: failed to finalize %s: %w", path, err)
	}
	return nil
}
