package model

// Solution is the aggregate assignment state for one optimizer run. All
// shipments are retained, cancelled ones included, so move history stays
// auditable; every derived view filters to ACTIVE.
type Solution struct {
	Shipments []*Shipment `json:"shipments"`
}

func NewSolution() *Solution {
	return &Solution{Shipments: []*Shipment{}}
}

func (s *Solution) Add(sh *Shipment) {
	s.Shipments = append(s.Shipments, sh)
}

// Cancel removes a shipment from the active set, keeping the record.
func (s *Solution) Cancel(id int) {
	for _, sh := range s.Shipments {
		if sh.ID == id {
			sh.Status = ShipmentCancelled
			return
		}
	}
}

func (s *Solution) Find(id int) *Shipment {
	for _, sh := range s.Shipments {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

// ActiveShipments returns a fresh slice of the ACTIVE shipments.
func (s *Solution) ActiveShipments() []*Shipment {
	out := []*Shipment{}
	for _, sh := range s.Shipments {
		if sh.Active() {
			out = append(out, sh)
		}
	}
	return out
}

// FlightLoad is the live load of one flight: the sum of ACTIVE shipment
// quantities whose route contains it. Never cached.
func (s *Solution) FlightLoad(flightCode string) int {
	load := 0
	for _, sh := range s.Shipments {
		if sh.Active() && sh.UsesFlight(flightCode) {
			load += sh.Quantity
		}
	}
	return load
}

// FlightsUsed returns each flight referenced by at least one ACTIVE
// shipment, keyed by code.
func (s *Solution) FlightsUsed() map[string]*Flight {
	used := map[string]*Flight{}
	for _, sh := range s.Shipments {
		if !sh.Active() {
			continue
		}
		for _, f := range sh.Route {
			used[f.Code] = f
		}
	}
	return used
}

// AssignedQuantity sums ACTIVE routed quantity for one order.
func (s *Solution) AssignedQuantity(orderID int) int {
	total := 0
	for _, sh := range s.Shipments {
		if sh.Active() && sh.OrderID == orderID && len(sh.Route) > 0 {
			total += sh.Quantity
		}
	}
	return total
}

// ShipmentsForOrder returns the ACTIVE shipments of one order.
func (s *Solution) ShipmentsForOrder(orderID int) []*Shipment {
	out := []*Shipment{}
	for _, sh := range s.Shipments {
		if sh.Active() && sh.OrderID == orderID {
			out = append(out, sh)
		}
	}
	return out
}

// MissingQuantity is the unassigned remainder for an order, floored at zero.
func (s *Solution) MissingQuantity(o *Order) int {
	missing := o.TotalQuantity - s.AssignedQuantity(o.ID)
	if missing < 0 {
		missing = 0
	}
	return missing
}

// RouteCost sums the cost of every flight actually used.
func (s *Solution) RouteCost() float64 {
	total := 0.0
	for _, f := range s.FlightsUsed() {
		total += f.Cost
	}
	return total
}

// Clone deep-copies the shipment set so a best-known snapshot survives
// later in-place moves. Flights and orders are shared immutable inputs.
func (s *Solution) Clone() *Solution {
	c := &Solution{Shipments: make([]*Shipment, len(s.Shipments))}
	for i, sh := range s.Shipments {
		c.Shipments[i] = sh.Clone()
	}
	return c
}
