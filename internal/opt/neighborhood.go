package opt

import "cargonav/internal/model"

// bestCandidate samples a neighborhood of moves around the current
// solution, evaluates each on a scratch copy, and returns the admissible
// candidate with the lowest resulting cost. Tabu keys are skipped unless
// the candidate beats the best-known cost (aspiration). The returned move
// is bound to the live solution and still re-validates on Apply.
func (r *run) bestCandidate(current *model.Solution, tabu map[string]int, bestCost float64, stats *Stats) (Move, float64, bool) {
	var bestMove Move
	bestMoveCost := 0.0
	found := false

	for i := 0; i < r.cfg.NeighborhoodSize; i++ {
		mv := r.randomMove(current)
		if mv == nil {
			continue
		}
		scratch := current.Clone()
		bound := rebind(mv, scratch)
		if bound == nil {
			continue
		}
		out := bound.Apply(scratch)
		if !out.Applied {
			stats.MovesRejected[mv.Kind()]++
			continue
		}
		cost := SolutionCost(scratch, r.orders, r.cfg.Cost)
		if _, isTabu := tabu[mv.Key()]; isTabu && cost >= bestCost {
			continue
		}
		if !found || cost < bestMoveCost {
			bestMove, bestMoveCost, found = mv, cost, true
		}
	}
	return bestMove, bestMoveCost, found
}

// randomMove draws one candidate move against the live solution. Returns
// nil when the solution cannot support the drawn move type.
func (r *run) randomMove(sol *model.Solution) Move {
	shipments := sol.ActiveShipments()
	if len(shipments) == 0 {
		return nil
	}
	switch r.rng.Intn(4) {
	case 0:
		return r.randomMerge(sol, shipments)
	case 1:
		return r.randomSplit(shipments)
	case 2:
		return r.randomReroute(shipments)
	default:
		return r.randomTransfer(shipments)
	}
}

func (r *run) randomMerge(sol *model.Solution, shipments []*model.Shipment) Move {
	a := shipments[r.rng.Intn(len(shipments))]
	for _, b := range sol.ShipmentsForOrder(a.OrderID) {
		if b.ID != a.ID && sameRoute(a.Route, b.Route) {
			return MergeMove{A: a, B: b}
		}
	}
	return nil
}

func (r *run) randomSplit(shipments []*model.Shipment) Move {
	s := shipments[r.rng.Intn(len(shipments))]
	if s.Quantity < 2 {
		return nil
	}
	return SplitMove{S: s, Qty: 1 + r.rng.Intn(s.Quantity-1), NewID: r.ids.Next()}
}

func (r *run) randomReroute(shipments []*model.Shipment) Move {
	s := shipments[r.rng.Intn(len(shipments))]
	if s.Order == nil || s.Order.Origin == nil || s.Order.Destination == nil {
		return nil
	}
	opts := r.gen.Generate(s.Order.Origin.Code, s.Order.Destination.Code, s.Order.OrderTime)
	for _, opt := range opts {
		if !sameRoute(opt.Flights, s.Route) {
			return RerouteMove{S: s, NewRoute: opt.Flights}
		}
	}
	return nil
}

func (r *run) randomTransfer(shipments []*model.Shipment) Move {
	from := shipments[r.rng.Intn(len(shipments))]
	for _, to := range shipments {
		if to.ID != from.ID && to.OrderID == from.OrderID {
			qty := from.Quantity
			if qty > 1 {
				qty = 1 + r.rng.Intn(qty)
			}
			return TransferMove{From: from, To: to, Qty: qty}
		}
	}
	return nil
}

// rebind resolves a move's shipment references inside another solution so
// candidates can be trial-applied on a scratch copy.
func rebind(m Move, sol *model.Solution) Move {
	switch mv := m.(type) {
	case MergeMove:
		a, b := sol.Find(mv.A.ID), sol.Find(mv.B.ID)
		if a == nil || b == nil {
			return nil
		}
		return MergeMove{A: a, B: b}
	case SplitMove:
		s := sol.Find(mv.S.ID)
		if s == nil {
			return nil
		}
		return SplitMove{S: s, Qty: mv.Qty, NewID: mv.NewID}
	case RerouteMove:
		s := sol.Find(mv.S.ID)
		if s == nil {
			return nil
		}
		return RerouteMove{S: s, NewRoute: mv.NewRoute}
	case TransferMove:
		from, to := sol.Find(mv.From.ID), sol.Find(mv.To.ID)
		if from == nil || to == nil {
			return nil
		}
		return TransferMove{From: from, To: to, Qty: mv.Qty}
	}
	return nil
}
