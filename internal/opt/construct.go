package opt

import (
	"sort"

	"cargonav/internal/model"
)

const deadlineNormHours = 48.0
const departureNormHours = 24.0

// construct builds the initial feasible solution: orders oldest first, each
// served greedily by the best-scoring admissible flight until its quantity
// is placed or nothing admissible remains. Unassignable remainders are left
// without shipments; completion statistics report them.
func (r *run) construct(sol *model.Solution) {
	orders := make([]*model.Order, len(r.orders))
	copy(orders, r.orders)
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.OrderTime.Equal(b.OrderTime) {
			return a.OrderTime.Before(b.OrderTime)
		}
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity > b.TotalQuantity
		}
		return a.Deadline().Before(b.Deadline())
	})

	for _, o := range orders {
		r.constructOrder(sol, o)
	}
}

func (r *run) constructOrder(sol *model.Solution, o *model.Order) {
	if o.Origin == nil || o.Destination == nil || o.TotalQuantity <= 0 {
		return
	}
	remaining := o.TotalQuantity
	for remaining > 0 {
		f, qty := r.bestDirectFlight(sol, o, remaining)
		if f != nil {
			r.assign(sol, o, qty, []*model.Flight{f})
			remaining -= qty
			continue
		}
		route, qty := r.bestConnectingRoute(sol, o, remaining)
		if route == nil {
			return // remainder stays unassigned
		}
		r.assign(sol, o, qty, route)
		remaining -= qty
	}
}

func (r *run) assign(sol *model.Solution, o *model.Order, qty int, route []*model.Flight) {
	sol.Add(model.NewShipment(r.ids.Next(), o, qty, route))
	if r.ledger.Reserve(o.Destination, qty) {
		r.ledger.ConfirmOccupancy(o.Destination, qty)
	}
}

// bestDirectFlight scores each admissible direct flight and returns the
// winner with the largest quantity it can take.
func (r *run) bestDirectFlight(sol *model.Solution, o *model.Order, remaining int) (*model.Flight, int) {
	var best *model.Flight
	bestQty := 0
	bestScore := -1.0
	for _, f := range r.flights {
		if f.Origin == nil || f.Destination == nil {
			continue
		}
		if f.Origin.Code != o.Origin.Code || f.Destination.Code != o.Destination.Code {
			continue
		}
		if f.Departure.Before(o.OrderTime) {
			continue
		}
		qty := r.admissibleQuantity(sol, f, o, remaining)
		if qty <= 0 {
			continue
		}
		score := r.scoreFlight(sol, f, o, qty)
		if score > bestScore {
			best, bestQty, bestScore = f, qty, score
		}
	}
	return best, bestQty
}

// admissibleQuantity is the largest load the flight and the destination
// storage jointly allow.
func (r *run) admissibleQuantity(sol *model.Solution, f *model.Flight, o *model.Order, remaining int) int {
	qty := remaining
	if free := f.Capacity - sol.FlightLoad(f.Code); free < qty {
		qty = free
	}
	if free := r.ledger.Available(o.Destination); free < qty {
		qty = free
	}
	if qty < 0 {
		qty = 0
	}
	return qty
}

// scoreFlight blends three normalized signals: how close the assignment
// packs the flight to the utilization target, how much deadline slack the
// arrival leaves, and how soon the flight departs.
func (r *run) scoreFlight(sol *model.Solution, f *model.Flight, o *model.Order, qty int) float64 {
	w := r.cfg.Score

	projected := float64(sol.FlightLoad(f.Code)+qty) / float64(f.Capacity)
	utilization := 1 - abs(r.cfg.UtilizationTarget-projected)
	if utilization < 0 {
		utilization = 0
	}

	slack := o.Deadline().Sub(f.Arrival).Hours() / deadlineNormHours
	if slack < 0 {
		slack = 0
	}
	if slack > 1 {
		slack = 1
	}

	wait := f.Departure.Sub(o.OrderTime).Hours() / departureNormHours
	if wait < 0 {
		wait = 0
	}
	if wait > 1 {
		wait = 1
	}

	return w.Utilization*utilization + w.Deadline*slack + w.Departure*(1-wait)
}

// bestConnectingRoute falls back to generated multi-stop routes, taking the
// first ranked option with usable bottleneck capacity.
func (r *run) bestConnectingRoute(sol *model.Solution, o *model.Order, remaining int) ([]*model.Flight, int) {
	for _, opt := range r.gen.Generate(o.Origin.Code, o.Destination.Code, o.OrderTime) {
		qty := remaining
		for _, f := range opt.Flights {
			if free := f.Capacity - sol.FlightLoad(f.Code); free < qty {
				qty = free
			}
		}
		if free := r.ledger.Available(o.Destination); free < qty {
			qty = free
		}
		if qty <= 0 {
			continue
		}
		return opt.Flights, qty
	}
	return nil, 0
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
