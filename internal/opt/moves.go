package opt

import (
	"fmt"
	"strings"

	"cargonav/internal/model"
)

// Outcome reports whether a move mutated the solution. A rejected move is
// guaranteed to have left the solution untouched.
type Outcome struct {
	Applied bool
	Reason  string
}

func applied() Outcome               { return Outcome{Applied: true} }
func rejected(reason string) Outcome { return Outcome{Reason: reason} }

// Move is the closed set of solution mutators. Keys are canonical: a key is
// a pure function of the move's parameters and identifies it in the tabu
// list. Only applied moves may be recorded there.
type Move interface {
	Apply(sol *model.Solution) Outcome
	Key() string
	Kind() string

	isMove()
}

// MergeMove absorbs B into A. Both must belong to the same order and ride
// the exact same flight sequence.
type MergeMove struct {
	A, B *model.Shipment
}

func (m MergeMove) isMove()      {}
func (m MergeMove) Kind() string { return "merge" }

func (m MergeMove) Key() string {
	lo, hi := m.A.ID, m.B.ID
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("MERGE_%d_%d", lo, hi)
}

func (m MergeMove) Apply(sol *model.Solution) Outcome {
	if m.A == nil || m.B == nil || m.A.ID == m.B.ID {
		return rejected("need two distinct shipments")
	}
	if !m.A.Active() || !m.B.Active() {
		return rejected("shipment not active")
	}
	if m.A.OrderID != m.B.OrderID {
		return rejected("different orders")
	}
	if !sameRoute(m.A.Route, m.B.Route) {
		return rejected("different routes")
	}
	m.A.Quantity += m.B.Quantity
	sol.Cancel(m.B.ID)
	return applied()
}

// SplitMove carves Qty units off S into a new shipment on the same route.
type SplitMove struct {
	S     *model.Shipment
	Qty   int
	NewID int
}

func (m SplitMove) isMove()      {}
func (m SplitMove) Kind() string { return "split" }

func (m SplitMove) Key() string {
	return fmt.Sprintf("SPLIT_%d_%d", m.S.ID, m.Qty)
}

func (m SplitMove) Apply(sol *model.Solution) Outcome {
	if m.S == nil || !m.S.Active() {
		return rejected("shipment not active")
	}
	if m.Qty <= 0 || m.S.Quantity <= m.Qty {
		return rejected("split quantity must be below shipment quantity")
	}
	m.S.Quantity -= m.Qty
	sol.Add(model.NewShipment(m.NewID, m.S.Order, m.Qty, m.S.Route))
	return applied()
}

// RerouteMove replaces S's flight sequence. Capacity is checked per new
// flight against the live load, excluding S's own contribution on flights
// it already rides so it is not counted twice.
type RerouteMove struct {
	S        *model.Shipment
	NewRoute []*model.Flight
}

func (m RerouteMove) isMove()      {}
func (m RerouteMove) Kind() string { return "reroute" }

func (m RerouteMove) Key() string {
	codes := make([]string, len(m.NewRoute))
	for i, f := range m.NewRoute {
		codes[i] = f.Code
	}
	return fmt.Sprintf("REROUTE_%d_%s", m.S.ID, strings.Join(codes, "_"))
}

func (m RerouteMove) Apply(sol *model.Solution) Outcome {
	if m.S == nil || !m.S.Active() {
		return rejected("shipment not active")
	}
	if len(m.NewRoute) == 0 {
		return rejected("empty route")
	}
	for _, f := range m.NewRoute {
		load := sol.FlightLoad(f.Code)
		if m.S.UsesFlight(f.Code) {
			load -= m.S.Quantity
		}
		if load+m.S.Quantity > f.Capacity {
			return rejected(fmt.Sprintf("flight %s over capacity", f.Code))
		}
	}
	m.S.Route = model.CloneRoute(m.NewRoute)
	return applied()
}

// TransferMove shifts Qty units between two shipments of the same order.
// The source is cancelled when drained to zero.
type TransferMove struct {
	From, To *model.Shipment
	Qty      int
}

func (m TransferMove) isMove()      {}
func (m TransferMove) Kind() string { return "transfer" }

func (m TransferMove) Key() string {
	return fmt.Sprintf("TRANSFER_%d_%d_%d", m.From.ID, m.To.ID, m.Qty)
}

func (m TransferMove) Apply(sol *model.Solution) Outcome {
	if m.From == nil || m.To == nil || m.From.ID == m.To.ID {
		return rejected("need two distinct shipments")
	}
	if !m.From.Active() || !m.To.Active() {
		return rejected("shipment not active")
	}
	if m.From.OrderID != m.To.OrderID {
		return rejected("different orders")
	}
	if m.Qty <= 0 || m.From.Quantity < m.Qty {
		return rejected("insufficient source quantity")
	}
	for _, f := range m.To.Route {
		if sol.FlightLoad(f.Code)+m.Qty > f.Capacity {
			return rejected(fmt.Sprintf("flight %s over capacity", f.Code))
		}
	}
	m.From.Quantity -= m.Qty
	m.To.Quantity += m.Qty
	if m.From.Quantity == 0 {
		sol.Cancel(m.From.ID)
	}
	return applied()
}

func sameRoute(a, b []*model.Flight) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Code != b[i].Code {
			return false
		}
	}
	return true
}
