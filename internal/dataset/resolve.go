package dataset

import (
	"fmt"
	"time"

	"cargonav/internal/model"
)

// Build resolves a wire dataset into a shared object graph: flights and
// orders point at the same Airport instances, overnight arrivals roll
// forward, and missing flight costs are derived from distance.
func Build(in model.DatasetIn) (*Static, error) {
	airports := map[string]*model.Airport{}
	list := make([]*model.Airport, 0, len(in.Airports))
	for _, a := range in.Airports {
		if a.Code == "" {
			return nil, fmt.Errorf("airport with empty code")
		}
		ap := &model.Airport{
			Code:            a.Code,
			City:            a.City,
			Country:         model.Country{Name: a.Country, Continent: model.Continent(a.Continent)},
			StorageCapacity: a.StorageCapacity,
			UTCOffset:       a.UTCOffset,
			Lat:             a.Lat,
			Lon:             a.Lon,
		}
		airports[a.Code] = ap
		list = append(list, ap)
	}

	flights := make([]*model.Flight, 0, len(in.Flights))
	for _, f := range in.Flights {
		origin, ok := airports[f.Origin]
		if !ok {
			return nil, fmt.Errorf("flight %s: unknown origin %s", f.Code, f.Origin)
		}
		dest, ok := airports[f.Destination]
		if !ok {
			return nil, fmt.Errorf("flight %s: unknown destination %s", f.Code, f.Destination)
		}
		dep, err := time.Parse(time.RFC3339, f.Departure)
		if err != nil {
			return nil, fmt.Errorf("flight %s: departure: %w", f.Code, err)
		}
		arr, err := time.Parse(time.RFC3339, f.Arrival)
		if err != nil {
			return nil, fmt.Errorf("flight %s: arrival: %w", f.Code, err)
		}
		// overnight flight recorded with a day-less arrival clock
		if arr.Before(dep) {
			arr = arr.Add(24 * time.Hour)
		}
		cost := f.Cost
		if cost <= 0 {
			cost = model.DeriveFlightCost(origin, dest, f.Capacity)
		}
		status := model.FlightStatus(f.Status)
		if f.Status == "" {
			status = model.FlightScheduled
		}
		flights = append(flights, &model.Flight{
			Code: f.Code, Origin: origin, Destination: dest,
			Departure: dep, Arrival: arr,
			Capacity: f.Capacity, Cost: cost, Status: status,
		})
	}

	orders := make([]*model.Order, 0, len(in.Orders))
	for _, o := range in.Orders {
		origin, ok := airports[o.Origin]
		if !ok {
			return nil, fmt.Errorf("order %d: unknown origin %s", o.ID, o.Origin)
		}
		dest, ok := airports[o.Destination]
		if !ok {
			return nil, fmt.Errorf("order %d: unknown destination %s", o.ID, o.Destination)
		}
		if o.Quantity <= 0 {
			return nil, fmt.Errorf("order %d: quantity must be positive", o.ID)
		}
		at, err := time.Parse(time.RFC3339, o.OrderTime)
		if err != nil {
			return nil, fmt.Errorf("order %d: orderTime: %w", o.ID, err)
		}
		orders = append(orders, model.NewOrder(o.ID, o.Quantity, origin, dest, at))
	}

	return &Static{AirportList: list, FlightList: flights, OrderList: orders}, nil
}
