package algorithms

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"resop/pkg/multiobjective/framework"
)

const (
	Name = "NSGA-II"
)

// NSGAIISolution wraps a solution in the population
// with Rank and Distance fields. Value stores the value in
// the objective space for the solution (this is used when comparing
// solutions).
type NSGAIISolution struct {
	Solution framework.Solution
	Value    framework.ObjectiveSpacePoint

	Rank     int
	Distance float64
}

func NewNSGAIISolution(sol framework.Solution, val framework.ObjectiveSpacePoint) *NSGAIISolution {
	return &NSGAIISolution{
		Solution: sol,
		Value:    val,
	}
}

// NonDominatedSort performs non-dominated sorting on the population
func NonDominatedSort(population []*NSGAIISolution) [][]*NSGAIISolution {
	var fronts [][]*NSGAIISolution
	dominated := make(map[int][]int)
	domCount := make([]int, len(population))

	// Calculate domination for each individual
	for i := 0; i < len(population); i++ {
		dominated[i] = []int{}
		for j := 0; j < len(population); j++ {
			if i != j {
				if Dominates(population[i], population[j]) {
					dominated[i] = append(dominated[i], j)
				} else if Dominates(population[j], population[i]) {
					domCount[i]++
				}
			}
		}
	}

	// Find first front
	currentFront := []*NSGAIISolution{}
	currentFrontIndices := []int{}
	for i := 0; i < len(population); i++ {
		if domCount[i] == 0 {
			population[i].Rank = 0
			currentFront = append(currentFront, population[i])
			currentFrontIndices = append(currentFrontIndices, i)
		}
	}
	fronts = append(fronts, currentFront)

	// Find subsequent fronts
	frontIndex := 0
	for len(currentFront) > 0 {
		nextFront := []*NSGAIISolution{}
		nextFrontIndices := []int{}
		for _, idx := range currentFrontIndices {
			for _, dominatedIdx := range dominated[idx] {
				domCount[dominatedIdx]--
				if domCount[dominatedIdx] == 0 {
					population[dominatedIdx].Rank = frontIndex + 1
					nextFront = append(nextFront, population[dominatedIdx])
					nextFrontIndices = append(nextFrontIndices, dominatedIdx)
				}
			}
		}
		frontIndex++
		if len(nextFront) > 0 {
			fronts = append(fronts, nextFront)
		}
		currentFront = nextFront
		currentFrontIndices = nextFrontIndices
	}

	return fronts
}

// Dominates checks if individual a dominates individual b
func Dominates(a, b *NSGAIISolution) bool {
	better := false
	for i := 0; i < len(a.Value); i++ {
		if a.Value[i] > b.Value[i] {
			return false
		}
		if a.Value[i] < b.Value[i] {
			better = true
		}
	}
	return better
}

// CrowdingDistance calculates crowding distance for individuals in a front.
// Fronts of one or two members degenerate to infinite distance. A zero-range
// objective contributes nothing rather than poisoning the sum with NaN.
func CrowdingDistance(front []*NSGAIISolution) {
	if len(front) <= 2 {
		for i := range front {
			front[i].Distance = math.Inf(1)
		}
		return
	}

	numObjectives := len(front[0].Value)
	for i := range front {
		front[i].Distance = 0
	}

	for m := 0; m < numObjectives; m++ {
		// Sort by each objective
		sort.Slice(front, func(i, j int) bool {
			return front[i].Value[m] < front[j].Value[m]
		})

		// Set boundary points to infinity
		front[0].Distance = math.Inf(1)
		front[len(front)-1].Distance = math.Inf(1)

		objectiveRange := front[len(front)-1].Value[m] - front[0].Value[m]
		if objectiveRange == 0 {
			continue
		}

		// Calculate distance for intermediate points
		for i := 1; i < len(front)-1; i++ {
			front[i].Distance += (front[i+1].Value[m] - front[i-1].Value[m]) / objectiveRange
		}
	}
}

// TournamentSelect picks the best of tournamentSize random contestants,
// comparing by rank first and crowding distance second.
func TournamentSelect(population []*NSGAIISolution, tournamentSize int, rng *rand.Rand) *NSGAIISolution {
	if tournamentSize < 2 {
		tournamentSize = 2 // minimum tournament size
	}
	best := population[rng.IntN(len(population))]

	for i := 1; i < tournamentSize; i++ {
		contestant := population[rng.IntN(len(population))]
		if contestant.Rank < best.Rank || (contestant.Rank == best.Rank && contestant.Distance > best.Distance) {
			best = contestant
		}
	}

	return best
}

// NSGA2Config holds configuration parameters for NSGA-II
type NSGA2Config struct {
	PopulationSize       int
	MaxGenerations       int
	CrossoverProbability float64
	MutationProbability  float64
	TournamentSize       int
	// ParallelEval evaluates candidates on a worker pool. Evaluation is the
	// only concurrent step; selection and variation stay sequential so a run
	// is fully determined by Seed.
	ParallelEval bool
	Seed         uint64
}

// Validate reports configuration errors before a run starts.
func (c NSGA2Config) Validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize)
	}
	if c.MaxGenerations < 0 {
		return fmt.Errorf("max generations must be non-negative, got %d", c.MaxGenerations)
	}
	if c.CrossoverProbability < 0 || c.CrossoverProbability > 1 {
		return fmt.Errorf("crossover probability must be in [0,1], got %v", c.CrossoverProbability)
	}
	if c.MutationProbability < 0 || c.MutationProbability > 1 {
		return fmt.Errorf("mutation probability must be in [0,1], got %v", c.MutationProbability)
	}
	return nil
}

// NSGAII represents the NSGA-II algorithm configuration
type NSGAII struct {
	Config  NSGA2Config
	Problem framework.Problem
}

// NewNSGAII creates a new instance of NSGA-II with given parameters
func NewNSGAII(config NSGA2Config, problem framework.Problem) *NSGAII {
	return &NSGAII{
		Config:  config,
		Problem: problem,
	}
}

// Evaluate evaluates the constraints and calculates objective values for a solution.
// Solutions violating any constraint get +Inf on every objective so the search
// evolves away from them instead of aborting.
func (n *NSGAII) Evaluate(sol framework.Solution) framework.ObjectiveSpacePoint {
	objectives := n.Problem.ObjectiveFuncs()
	res := make(framework.ObjectiveSpacePoint, len(objectives))

	for _, c := range n.Problem.Constraints() {
		if !c(sol) {
			for i := range res {
				res[i] = math.Inf(1)
			}
			return res
		}
	}

	for i, objFunc := range objectives {
		res[i] = objFunc(sol)
	}
	return res
}

// evaluateAll scores a batch of solutions, optionally across a worker pool.
// The simulator and objective functions are pure, so evaluation order cannot
// change the result.
func (n *NSGAII) evaluateAll(solutions []framework.Solution) []*NSGAIISolution {
	scored := make([]*NSGAIISolution, len(solutions))

	if !n.Config.ParallelEval {
		for i, sol := range solutions {
			scored[i] = NewNSGAIISolution(sol, n.Evaluate(sol))
		}
		return scored
	}

	numWorkers := runtime.NumCPU()
	work := make(chan int, len(solutions))
	wg := &sync.WaitGroup{}

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				scored[i] = NewNSGAIISolution(solutions[i], n.Evaluate(solutions[i]))
			}
		}()
	}

	for i := range solutions {
		work <- i
	}
	close(work)
	wg.Wait()

	return scored
}

// Run executes the NSGA-II algorithm and returns the final population.
func (n *NSGAII) Run() ([]*NSGAIISolution, error) {
	if err := n.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid NSGA-II configuration: %w", err)
	}

	startTime := time.Now()
	rng := rand.New(rand.NewPCG(n.Config.Seed, n.Config.Seed))

	klog.InfoS("starting NSGA-II run",
		"problem", n.Problem.Name(),
		"populationSize", n.Config.PopulationSize,
		"generations", n.Config.MaxGenerations,
		"crossoverProbability", n.Config.CrossoverProbability,
		"mutationProbability", n.Config.MutationProbability,
		"parallelEval", n.Config.ParallelEval,
		"seed", n.Config.Seed)

	initPop := n.Problem.Initialize(n.Config.PopulationSize, rng)
	if len(initPop) != n.Config.PopulationSize {
		return nil, fmt.Errorf("problem %s initialized %d solutions, want %d",
			n.Problem.Name(), len(initPop), n.Config.PopulationSize)
	}

	population := n.evaluateAll(initPop)
	if err := rankPopulation(population); err != nil {
		return nil, err
	}

	for gen := 0; gen < n.Config.MaxGenerations; gen++ {
		offspring := n.makeOffspring(population, rng)

		// Combine parents and offspring, then keep the best N (elitism).
		combined := append(population, offspring...)
		fronts := NonDominatedSort(combined)
		if len(fronts) == 0 || len(fronts[0]) == 0 {
			return nil, fmt.Errorf("internal consistency error: empty first front over %d solutions at generation %d",
				len(combined), gen)
		}

		population = make([]*NSGAIISolution, 0, n.Config.PopulationSize)
		frontIndex := 0

		for len(population)+len(fronts[frontIndex]) <= n.Config.PopulationSize {
			CrowdingDistance(fronts[frontIndex])
			population = append(population, fronts[frontIndex]...)
			frontIndex++
			if frontIndex >= len(fronts) {
				break
			}
		}

		// Truncate the overflowing front by descending crowding distance
		if len(population) < n.Config.PopulationSize && frontIndex < len(fronts) {
			CrowdingDistance(fronts[frontIndex])
			sort.Slice(fronts[frontIndex], func(i, j int) bool {
				return fronts[frontIndex][i].Distance > fronts[frontIndex][j].Distance
			})
			population = append(population, fronts[frontIndex][:n.Config.PopulationSize-len(population)]...)
		}

		if (gen+1)%10 == 0 || gen == n.Config.MaxGenerations-1 {
			klog.V(2).InfoS("generation complete",
				"generation", gen+1,
				"fronts", len(fronts),
				"firstFrontSize", len(fronts[0]))
		}
	}

	klog.InfoS("NSGA-II run complete",
		"problem", n.Problem.Name(),
		"elapsed", time.Since(startTime))

	return population, nil
}

// makeOffspring produces PopulationSize children via tournament selection,
// crossover and mutation, then evaluates them.
func (n *NSGAII) makeOffspring(population []*NSGAIISolution, rng *rand.Rand) []*NSGAIISolution {
	children := make([]framework.Solution, 0, n.Config.PopulationSize)

	for len(children) < n.Config.PopulationSize {
		parent1 := TournamentSelect(population, n.Config.TournamentSize, rng)
		parent2 := TournamentSelect(population, n.Config.TournamentSize, rng)

		child1, child2 := parent1.Solution.Crossover(parent2.Solution, n.Config.CrossoverProbability, rng)
		child1.Mutate(n.Config.MutationProbability, rng)
		child2.Mutate(n.Config.MutationProbability, rng)

		children = append(children, child1)
		if len(children) < n.Config.PopulationSize {
			children = append(children, child2)
		}
	}

	return n.evaluateAll(children)
}

// rankPopulation assigns ranks and crowding distances in place so that
// tournament selection has something to compare on the first generation.
func rankPopulation(population []*NSGAIISolution) error {
	fronts := NonDominatedSort(population)
	if len(population) > 0 && (len(fronts) == 0 || len(fronts[0]) == 0) {
		return fmt.Errorf("internal consistency error: empty first front over %d solutions", len(population))
	}
	for _, front := range fronts {
		CrowdingDistance(front)
	}
	return nil
}
