package opt

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"cargonav/internal/model"
)

// ScoreWeights drive construction-phase flight selection. Tunable.
type ScoreWeights struct {
	Utilization float64 `json:"utilization" yaml:"utilization"`
	Deadline    float64 `json:"deadline" yaml:"deadline"`
	Departure   float64 `json:"departure" yaml:"departure"`
}

// Config holds all engine knobs. Zero values fall back to defaults.
type Config struct {
	Seed              int64
	MaxIterations     int
	Patience          int
	TabuTenure        int
	NeighborhoodSize  int
	MaxStops          int
	BranchLimit       int
	PerStopCost       float64
	UtilizationTarget float64
	Score             ScoreWeights
	Cost              CostWeights
}

func DefaultConfig() Config {
	return Config{
		Seed:              1,
		MaxIterations:     200,
		Patience:          30,
		TabuTenure:        15,
		NeighborhoodSize:  24,
		MaxStops:          2,
		BranchLimit:       5,
		PerStopCost:       DefaultPerStopCost,
		UtilizationTarget: 0.90,
		Score:             ScoreWeights{Utilization: 0.4, Deadline: 0.3, Departure: 0.3},
		Cost:              DefaultCostWeights(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Patience <= 0 {
		c.Patience = d.Patience
	}
	if c.TabuTenure <= 0 {
		c.TabuTenure = d.TabuTenure
	}
	if c.NeighborhoodSize <= 0 {
		c.NeighborhoodSize = d.NeighborhoodSize
	}
	if c.MaxStops <= 0 {
		c.MaxStops = d.MaxStops
	}
	if c.BranchLimit <= 0 {
		c.BranchLimit = d.BranchLimit
	}
	if c.PerStopCost <= 0 {
		c.PerStopCost = d.PerStopCost
	}
	if c.UtilizationTarget <= 0 {
		c.UtilizationTarget = d.UtilizationTarget
	}
	if c.Score == (ScoreWeights{}) {
		c.Score = d.Score
	}
	if c.Cost == (CostWeights{}) {
		c.Cost = d.Cost
	}
	return c
}

// IDAllocator hands out shipment IDs for one run. Never shared across runs.
type IDAllocator struct{ next int }

func NewIDAllocator(start int) *IDAllocator { return &IDAllocator{next: start} }

func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Snapshot is one per-iteration progress sample.
type Snapshot struct {
	Iteration   int     `json:"iteration"`
	CurrentCost float64 `json:"currentCost"`
	BestCost    float64 `json:"bestCost"`
}

// Stats is the run report returned next to the Solution. Infeasibility is
// reported here as data, never as an error.
type Stats struct {
	Iterations           int            `json:"iterations"`
	InitialCost          float64        `json:"initialCost"`
	BestCost             float64        `json:"bestCost"`
	MovesApplied         map[string]int `json:"movesApplied"`
	MovesRejected        map[string]int `json:"movesRejected"`
	AverageDeliveryHours float64        `json:"avgDeliveryHours"`
	AverageWaitHours     float64        `json:"avgWaitHours"`
	OnTimePct            float64        `json:"onTimePct"`
	DeliveredUnits       int            `json:"deliveredUnits"`
	IncompleteOrders     []int          `json:"incompleteOrders,omitempty"`
	ContinentPairs       map[string]int `json:"continentPairs,omitempty"`
	RouteTypes           map[string]int `json:"routeTypes,omitempty"`
	Snapshots            []Snapshot     `json:"snapshots,omitempty"`
	Elapsed              time.Duration  `json:"-"`
}

// Engine is the tabu-search optimizer. One Optimize call is a pure,
// single-threaded computation over its inputs plus the seeded RNG; the
// engine holds no cross-run state. It never mutates flight status.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

type run struct {
	cfg      Config
	rng      *rand.Rand
	ids      *IDAllocator
	ledger   *StorageLedger
	gen      *routeGenerator
	orders   []*model.Order
	flights  []*model.Flight
	airports []*model.Airport
}

// Optimize builds an initial feasible solution and improves it under a tabu
// list. Degenerate inputs return an empty or all-unassigned Solution.
func (e *Engine) Optimize(orders []*model.Order, flights []*model.Flight, airports []*model.Airport) (*model.Solution, Stats) {
	start := time.Now()
	stats := Stats{
		MovesApplied:  map[string]int{},
		MovesRejected: map[string]int{},
	}
	sol := model.NewSolution()
	if len(orders) == 0 {
		stats.Elapsed = time.Since(start)
		return sol, stats
	}

	active := activeFlights(flights)
	r := &run{
		cfg:      e.cfg,
		rng:      rand.New(rand.NewSource(e.cfg.Seed)),
		ids:      NewIDAllocator(1),
		ledger:   NewStorageLedger(),
		gen:      newRouteGenerator(active, e.cfg.MaxStops, e.cfg.BranchLimit, e.cfg.PerStopCost),
		orders:   orders,
		flights:  active,
		airports: airports,
	}

	r.construct(sol)
	// No move touches the ledger, so the storage penalty is a per-run
	// constant; the loop compares raw solution costs and the constant is
	// added back to the reported figures.
	storageCost := e.cfg.Cost.StoragePenalty(r.ledger, airports)
	stats.InitialCost = SolutionCost(sol, orders, e.cfg.Cost) + storageCost

	best := sol.Clone()
	bestCost := stats.InitialCost - storageCost
	current := sol
	currentCost := bestCost

	tabu := map[string]int{}
	tenure := e.cfg.TabuTenure
	stagnation := 0

	for iter := 0; iter < e.cfg.MaxIterations && stagnation < e.cfg.Patience; iter++ {
		stats.Iterations = iter + 1
		for key, exp := range tabu {
			if exp <= iter {
				delete(tabu, key)
			}
		}

		move, cost, ok := r.bestCandidate(current, tabu, bestCost, &stats)
		if !ok {
			stagnation++
			if r.shouldDiversify(stagnation) {
				r.diversify(current, tabu, &stats)
				currentCost = SolutionCost(current, orders, e.cfg.Cost)
			}
			continue
		}

		out := move.Apply(current)
		if !out.Applied {
			// candidate was validated against a snapshot; live state moved
			stats.MovesRejected[move.Kind()]++
			stagnation++
			continue
		}
		stats.MovesApplied[move.Kind()]++
		currentCost = cost
		tabu[move.Key()] = iter + tenure

		if currentCost < bestCost {
			best = current.Clone()
			bestCost = currentCost
			stagnation = 0
		} else {
			stagnation++
		}

		tenure = adaptTenure(e.cfg.TabuTenure, stagnation)
		if r.shouldDiversify(stagnation) {
			r.diversify(current, tabu, &stats)
			currentCost = SolutionCost(current, orders, e.cfg.Cost)
		}

		if len(stats.Snapshots) == 0 || stats.Snapshots[len(stats.Snapshots)-1].BestCost != bestCost {
			stats.Snapshots = append(stats.Snapshots, Snapshot{Iteration: iter, CurrentCost: currentCost, BestCost: bestCost})
		}
	}

	stats.BestCost = bestCost + storageCost
	fillDeliveryStats(best, orders, &stats)
	stats.Elapsed = time.Since(start)
	return best, stats
}

func activeFlights(flights []*model.Flight) []*model.Flight {
	out := make([]*model.Flight, 0, len(flights))
	for _, f := range flights {
		if f.Active() {
			out = append(out, f)
		}
	}
	return out
}

// adaptTenure shortens the list while the search improves and stretches it
// as stagnation grows.
func adaptTenure(base, stagnation int) int {
	switch {
	case stagnation == 0:
		t := base - 3
		if t < 5 {
			t = 5
		}
		return t
	case stagnation > 15:
		t := base + 8
		if t > 30 {
			t = 30
		}
		return t
	case stagnation > 8:
		return base + 3
	default:
		return base
	}
}

func (r *run) shouldDiversify(stagnation int) bool {
	return stagnation > 0 && stagnation%12 == 0
}

// diversify reroutes a sample of shipments onto alternate generated routes
// and forgets half the tabu list, kicking the search out of its basin.
func (r *run) diversify(sol *model.Solution, tabu map[string]int, stats *Stats) {
	shipments := sol.ActiveShipments()
	if len(shipments) == 0 {
		return
	}
	tries := len(shipments)/3 + 1
	for i := 0; i < tries; i++ {
		sh := shipments[r.rng.Intn(len(shipments))]
		if sh.Order == nil || sh.Order.Origin == nil || sh.Order.Destination == nil {
			continue
		}
		opts := r.gen.Generate(sh.Order.Origin.Code, sh.Order.Destination.Code, sh.Order.OrderTime)
		if len(opts) < 2 {
			continue
		}
		alt := opts[1+r.rng.Intn(len(opts)-1)]
		mv := RerouteMove{S: sh, NewRoute: alt.Flights}
		if mv.Apply(sol).Applied {
			stats.MovesApplied[mv.Kind()]++
		}
	}
	for key := range tabu {
		if r.rng.Intn(2) == 0 {
			delete(tabu, key)
		}
	}
}

func fillDeliveryStats(sol *model.Solution, orders []*model.Order, stats *Stats) {
	totalHours := 0.0
	waitHours := 0.0
	counted := 0
	onTime := 0
	routeTypes := map[string]int{}
	pairs := map[string]int{}
	for _, sh := range sol.ActiveShipments() {
		if len(sh.Route) == 0 {
			continue
		}
		stats.DeliveredUnits += sh.Quantity
		if h, ok := sh.DeliveryHours(); ok {
			totalHours += h
			counted++
		}
		if dep, ok := sh.InitialDeparture(); ok && sh.Order != nil {
			waitHours += dep.Sub(sh.Order.OrderTime).Hours()
		}
		if sh.MeetsDeadline() {
			onTime++
		}
		switch sh.Stops() {
		case 0:
			routeTypes["direct"]++
		case 1:
			routeTypes["one-stop"]++
		default:
			routeTypes["multi-stop"]++
		}
		if sh.Order != nil {
			pairs[fmt.Sprintf("%s-%s", sh.Order.Origin.ContinentCode(), sh.Order.Destination.ContinentCode())]++
		}
	}
	if counted > 0 {
		stats.AverageDeliveryHours = totalHours / float64(counted)
		stats.AverageWaitHours = waitHours / float64(counted)
		stats.OnTimePct = 100 * float64(onTime) / float64(counted)
	}
	stats.RouteTypes = routeTypes
	stats.ContinentPairs = pairs
	for _, o := range orders {
		if sol.MissingQuantity(o) > 0 {
			stats.IncompleteOrders = append(stats.IncompleteOrders, o.ID)
		}
	}
	sort.Ints(stats.IncompleteOrders)
}
