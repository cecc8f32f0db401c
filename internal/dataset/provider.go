// Package dataset supplies parsed airports, flights and orders to the
// harness and API. The optimizer core never calls a Provider; callers pass
// already-filtered slices.
package dataset

import (
	"time"

	"cargonav/internal/model"
)

// Provider is the data boundary consumed by the service layer. Time
// windows are half-open on departure/order time.
type Provider interface {
	Airports() []*model.Airport
	Flights(start, end time.Time) []*model.Flight
	Orders(start, end time.Time) []*model.Order
	PendingOrders() []*model.Order
	CancelledFlightIDs(start, end time.Time) []string
}

// Static is an in-memory Provider over fixed slices.
type Static struct {
	AirportList []*model.Airport
	FlightList  []*model.Flight
	OrderList   []*model.Order
	Cancelled   map[string]time.Time // flight code -> cancellation instant
}

func (s *Static) Airports() []*model.Airport { return s.AirportList }

func (s *Static) Flights(start, end time.Time) []*model.Flight {
	out := []*model.Flight{}
	for _, f := range s.FlightList {
		if !f.Departure.Before(start) && f.Departure.Before(end) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Static) Orders(start, end time.Time) []*model.Order {
	out := []*model.Order{}
	for _, o := range s.OrderList {
		if !o.OrderTime.Before(start) && o.OrderTime.Before(end) {
			out = append(out, o)
		}
	}
	return out
}

func (s *Static) PendingOrders() []*model.Order { return s.OrderList }

func (s *Static) CancelledFlightIDs(start, end time.Time) []string {
	out := []string{}
	for code, at := range s.Cancelled {
		if !at.Before(start) && at.Before(end) {
			out = append(out, code)
		}
	}
	return out
}
