package opt

import "cargonav/internal/model"

// CostWeights are the penalty coefficients of the evaluation function. The
// penalties dominate raw route cost so the search prioritizes feasibility
// and deadline compliance over cheapness.
type CostWeights struct {
	CapacityViolation float64 // per excess unit on an overloaded flight
	DelayBase         float64 // flat penalty per late shipment
	DelayPerHour      float64 // added per hour past the deadline
	Stopover          float64 // per intermediate stop
	InvalidConnection float64 // per leg pair outside the 1h..24h window
	StorageViolation  float64 // flat per airport over storage capacity
	StoragePerUnit    float64 // added per excess stored unit
	IncompleteOrder   float64 // per missing unit of an order
	InvalidSequence   float64 // per shipment with a broken leg chain
}

func DefaultCostWeights() CostWeights {
	return CostWeights{
		CapacityViolation: 25000,
		DelayBase:         10000,
		DelayPerHour:      300,
		Stopover:          600,
		InvalidConnection: 22000,
		StorageViolation:  20000,
		StoragePerUnit:    150,
		IncompleteOrder:   50000,
		InvalidSequence:   30000,
	}
}

const maxConnectionHours = 24.0

// SolutionCost evaluates a solution: route cost of the flights actually
// used plus the penalty components. Pure; reads live loads only.
func SolutionCost(sol *model.Solution, orders []*model.Order, w CostWeights) float64 {
	cost := sol.RouteCost()

	for _, f := range sol.FlightsUsed() {
		if excess := sol.FlightLoad(f.Code) - f.Capacity; excess > 0 {
			cost += w.CapacityViolation * float64(excess)
		}
	}

	for _, sh := range sol.ActiveShipments() {
		cost += w.Stopover * float64(sh.Stops())
		if !sh.ValidSequence() {
			cost += w.InvalidSequence
			continue
		}
		for i := 0; i < len(sh.Route)-1; i++ {
			gapHours := sh.Route[i+1].Departure.Sub(sh.Route[i].Arrival).Hours()
			if gapHours < 1 || gapHours > maxConnectionHours {
				cost += w.InvalidConnection
			}
		}
		if sh.Order != nil {
			if arr, ok := sh.FinalArrival(); ok {
				if late := arr.Sub(sh.Order.Deadline()).Hours(); late > 0 {
					cost += w.DelayBase + w.DelayPerHour*late
				}
			}
		}
	}

	for _, o := range orders {
		if missing := sol.MissingQuantity(o); missing > 0 {
			cost += w.IncompleteOrder * float64(missing)
		}
	}
	return cost
}

// StoragePenalty prices ledger overcommitment. Kept separate from
// SolutionCost: the ledger lives in the construction phase, while the
// improvement loop evaluates solutions alone.
func (w CostWeights) StoragePenalty(l *StorageLedger, airports []*model.Airport) float64 {
	cost := 0.0
	for _, a := range airports {
		if excess := l.Occupied(a.Code) - a.StorageCapacity; excess > 0 {
			cost += w.StorageViolation + w.StoragePerUnit*float64(excess)
		}
	}
	return cost
}
