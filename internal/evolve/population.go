package evolve

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

// DefaultOptions returns NEAT parameters tuned for the three-input flappy
// controller: aggressive weight mutation, conservative structural growth.
func DefaultOptions() *neat.Options {
	return &neat.Options{
		WeightMutPower: 2.0,

		MutateAddNodeProb:      0.05,
		MutateAddLinkProb:      0.10,
		MutateToggleEnableProb: 0.01,
		MutateLinkWeightsProb:  0.8,
		MutateOnlyProb:         0.25,

		CompatThreshold: 3.0,
		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.4,

		DropOffAge:     15,
		SurvivalThresh: 0.2,
	}
}

// specie is one cluster of genetically similar genomes.
type specie struct {
	id             int
	representative *genetics.Genome
	members        []*genetics.Genome
	bestFitness    float64
	staleness      int
}

// Population holds the current generation of genomes and produces the next
// one from their fitness scores. All randomness flows through a seeded RNG,
// so a run is reproducible end to end.
type Population struct {
	opts             *neat.Options
	idGen            *idGenerator
	rng              *rand.Rand
	genomes          []*genetics.Genome
	species          []*specie
	generation       int
	nextSpeciesID    int
	outputActivation neatmath.NodeActivationType
	hiddenActivation neatmath.NodeActivationType
}

// NewPopulation seeds size founder genomes with the given output
// activation.
func NewPopulation(size int, outputActivation neatmath.NodeActivationType, opts *neat.Options, seed int64) (*Population, error) {
	if size <= 0 {
		return nil, fmt.Errorf("evolve: population size must be positive, got %d", size)
	}
	p := &Population{
		opts:             opts,
		idGen:            newIDGenerator(),
		rng:              rand.New(rand.NewSource(seed)),
		genomes:          make([]*genetics.Genome, 0, size),
		nextSpeciesID:    1,
		outputActivation: outputActivation,
		hiddenActivation: outputActivation,
	}
	for i := 0; i < size; i++ {
		p.genomes = append(p.genomes, newBirdGenome(p.idGen.NextID(), outputActivation, p.rng))
	}
	return p, nil
}

// Genomes returns the current generation.
func (p *Population) Genomes() []*genetics.Genome {
	return p.genomes
}

// Generation returns the number of completed epochs.
func (p *Population) Generation() int {
	return p.generation
}

// Size returns the population size.
func (p *Population) Size() int {
	return len(p.genomes)
}

// Best returns the genome with the highest fitness in the given map.
func (p *Population) Best(fitness map[int]float64) *genetics.Genome {
	var best *genetics.Genome
	for _, g := range p.genomes {
		if best == nil || fitness[g.Id] > fitness[best.Id] {
			best = g
		}
	}
	return best
}

// Epoch replaces the current generation with its offspring. Fitness is
// keyed by genome id; genomes are clustered into species, shared fitness
// decides each species' offspring quota, species elites survive unchanged
// and the rest is bred by crossover and mutation.
func (p *Population) Epoch(fitness map[int]float64) error {
	if len(p.genomes) == 0 {
		return ErrPopulationEmpty
	}
	size := len(p.genomes)

	p.speciate()
	p.retireStale(fitness)

	shared := p.sharedFitness(fitness)
	quotas := p.offspringQuotas(shared, size)

	next := make([]*genetics.Genome, 0, size)
	for i, sp := range p.species {
		quota := quotas[i]
		if quota == 0 {
			continue
		}

		members := append([]*genetics.Genome(nil), sp.members...)
		sort.Slice(members, func(a, b int) bool {
			return fitness[members[a].Id] > fitness[members[b].Id]
		})

		// The champion of any species breeding more than one offspring
		// carries over unchanged.
		if quota > 1 {
			next = append(next, cloneGenome(members[0], p.idGen.NextID()))
			quota--
		}

		// Only the top fraction of a species breeds.
		breeders := int(float64(len(members)) * p.opts.SurvivalThresh)
		if breeders < 1 {
			breeders = 1
		}

		for j := 0; j < quota; j++ {
			child := p.breed(members[:breeders], fitness)
			next = append(next, child)
		}

		sp.representative = members[0]
		sp.members = nil
	}

	// Rounding drift is topped up with offspring of the global best.
	for len(next) < size {
		best := p.Best(fitness)
		child := cloneGenome(best, p.idGen.NextID())
		mutate(child, p.opts, p.idGen, p.rng, p.hiddenActivation)
		next = append(next, child)
	}

	p.genomes = next[:size]
	p.generation++
	return nil
}

// breed produces one offspring from the given breeders, either by mutating
// a clone or by crossover followed by mutation.
func (p *Population) breed(breeders []*genetics.Genome, fitness map[int]float64) *genetics.Genome {
	if len(breeders) == 1 || p.rng.Float64() < p.opts.MutateOnlyProb {
		child := cloneGenome(breeders[p.rng.Intn(len(breeders))], p.idGen.NextID())
		mutate(child, p.opts, p.idGen, p.rng, p.hiddenActivation)
		return child
	}
	p1 := breeders[p.rng.Intn(len(breeders))]
	p2 := breeders[p.rng.Intn(len(breeders))]
	child := crossover(p1, p2, fitness[p1.Id], fitness[p2.Id], p.idGen.NextID(), p.rng)
	mutate(child, p.opts, p.idGen, p.rng, p.hiddenActivation)
	return child
}

// speciate clusters every genome with the first species whose
// representative is within the compatibility threshold, founding a new
// species when none fits.
func (p *Population) speciate() {
	for _, sp := range p.species {
		sp.members = nil
	}

	for _, g := range p.genomes {
		placed := false
		for _, sp := range p.species {
			if compatibility(g, sp.representative, p.opts) < p.opts.CompatThreshold {
				sp.members = append(sp.members, g)
				placed = true
				break
			}
		}
		if !placed {
			p.species = append(p.species, &specie{
				id:             p.nextSpeciesID,
				representative: g,
				members:        []*genetics.Genome{g},
			})
			p.nextSpeciesID++
		}
	}

	live := p.species[:0]
	for _, sp := range p.species {
		if len(sp.members) > 0 {
			live = append(live, sp)
		}
	}
	p.species = live
}

// retireStale drops species that have not improved for DropOffAge
// generations, always keeping at least one.
func (p *Population) retireStale(fitness map[int]float64) {
	for _, sp := range p.species {
		best := 0.0
		for i, g := range sp.members {
			if f := fitness[g.Id]; i == 0 || f > best {
				best = f
			}
		}
		if best > sp.bestFitness {
			sp.bestFitness = best
			sp.staleness = 0
		} else {
			sp.staleness++
		}
	}

	live := p.species[:0]
	for _, sp := range p.species {
		if sp.staleness < p.opts.DropOffAge {
			live = append(live, sp)
		}
	}
	if len(live) == 0 {
		// Everything went stale at once; the historically best species
		// survives.
		best := p.species[0]
		for _, sp := range p.species[1:] {
			if sp.bestFitness > best.bestFitness {
				best = sp
			}
		}
		live = append(live, best)
	}
	p.species = live
}

// sharedFitness returns each species' fitness sum after dividing every
// member's score by the species size, which protects young topologies from
// being crowded out.
func (p *Population) sharedFitness(fitness map[int]float64) []float64 {
	shared := make([]float64, len(p.species))
	for i, sp := range p.species {
		sum := 0.0
		for _, g := range sp.members {
			f := fitness[g.Id]
			if f < 0 {
				f = 0
			}
			sum += f / float64(len(sp.members))
		}
		shared[i] = sum
	}
	return shared
}

// offspringQuotas splits the population size across species in proportion
// to shared fitness, falling back to an even split when every score is
// non-positive.
func (p *Population) offspringQuotas(shared []float64, size int) []int {
	total := 0.0
	for _, s := range shared {
		total += s
	}

	quotas := make([]int, len(shared))
	if total <= 0 {
		for i := range quotas {
			quotas[i] = size / len(quotas)
		}
		quotas[0] += size % len(quotas)
		return quotas
	}

	assigned := 0
	for i, s := range shared {
		quotas[i] = int(s / total * float64(size))
		assigned += quotas[i]
	}
	// Remainder goes to the fittest species.
	bestIdx := 0
	for i, s := range shared {
		if s > shared[bestIdx] {
			bestIdx = i
		}
	}
	quotas[bestIdx] += size - assigned
	return quotas
}
