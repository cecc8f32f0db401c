package model

import (
	"strings"
	"time"
)

type ShipmentStatus string

const (
	ShipmentActive    ShipmentStatus = "ACTIVE"
	ShipmentCancelled ShipmentStatus = "CANCELLED"
)

// MinConnectionGap is the minimum layover between consecutive legs of one
// shipment. There is no maximum.
const MinConnectionGap = time.Hour

// Shipment binds a quantity of one order's product to an ordered flight
// sequence. Cancelled shipments are kept for audit and excluded from all
// load and delivery accounting.
type Shipment struct {
	ID       int            `json:"id"`
	Order    *Order         `json:"-"`
	OrderID  int            `json:"orderId"`
	Quantity int            `json:"quantity"`
	Route    []*Flight      `json:"route"`
	Status   ShipmentStatus `json:"status"`
}

func NewShipment(id int, order *Order, quantity int, route []*Flight) *Shipment {
	return &Shipment{
		ID:       id,
		Order:    order,
		OrderID:  order.ID,
		Quantity: quantity,
		Route:    CloneRoute(route),
		Status:   ShipmentActive,
	}
}

// CloneRoute returns a fresh slice over the same flight objects. Flights are
// shared; the sequence is not.
func CloneRoute(route []*Flight) []*Flight {
	if route == nil {
		return nil
	}
	out := make([]*Flight, len(route))
	copy(out, route)
	return out
}

func (s *Shipment) Active() bool    { return s.Status == ShipmentActive }
func (s *Shipment) IsDirect() bool  { return len(s.Route) == 1 }
func (s *Shipment) Stops() int      { return len(s.Route) - 1 }

// ValidSequence checks route contiguity: each leg departs from the previous
// leg's destination at least MinConnectionGap after its arrival.
func (s *Shipment) ValidSequence() bool {
	if len(s.Route) == 0 {
		return false
	}
	for i := 0; i < len(s.Route)-1; i++ {
		cur, next := s.Route[i], s.Route[i+1]
		if cur.Destination == nil || next.Origin == nil || cur.Destination.Code != next.Origin.Code {
			return false
		}
		if next.Departure.Sub(cur.Arrival) < MinConnectionGap {
			return false
		}
	}
	return true
}

// FinalArrival is the arrival of the last leg; ok is false for empty routes.
func (s *Shipment) FinalArrival() (time.Time, bool) {
	if len(s.Route) == 0 {
		return time.Time{}, false
	}
	return s.Route[len(s.Route)-1].Arrival, true
}

func (s *Shipment) InitialDeparture() (time.Time, bool) {
	if len(s.Route) == 0 {
		return time.Time{}, false
	}
	return s.Route[0].Departure, true
}

// DeliveryHours is the elapsed time from order placement to final arrival.
func (s *Shipment) DeliveryHours() (float64, bool) {
	arr, ok := s.FinalArrival()
	if !ok || s.Order == nil {
		return 0, false
	}
	return arr.Sub(s.Order.OrderTime).Hours(), true
}

func (s *Shipment) MeetsDeadline() bool {
	arr, ok := s.FinalArrival()
	if !ok || s.Order == nil {
		return false
	}
	return !arr.After(s.Order.Deadline())
}

// UsesFlight reports whether the route contains the given flight code.
func (s *Shipment) UsesFlight(code string) bool {
	for _, f := range s.Route {
		if f.Code == code {
			return true
		}
	}
	return false
}

// RouteDescription renders the route as ORIG->HOP->DEST flight codes.
func (s *Shipment) RouteDescription() string {
	if len(s.Route) == 0 {
		return "(unassigned)"
	}
	codes := make([]string, len(s.Route))
	for i, f := range s.Route {
		codes[i] = f.Code
	}
	return strings.Join(codes, "->")
}

// Clone copies the shipment and its route slice. Order and Flight objects
// stay shared; they are immutable for the lifetime of a run.
func (s *Shipment) Clone() *Shipment {
	c := *s
	c.Route = CloneRoute(s.Route)
	return &c
}
