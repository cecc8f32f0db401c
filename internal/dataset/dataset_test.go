package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cargonav/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	airports := writeFile(t, dir, "airports.csv",
		"code,city,country,continent,storageCapacity,utcOffset,lat,lon\n"+
			"LIM,Lima,Peru,SAM,1000,-5,-12.02,-77.11\n"+
			"BRU,Brussels,Belgium,EUR,1500,1,50.90,4.48\n")
	flights := writeFile(t, dir, "flights.csv",
		"F1,LIM,BRU,2025-10-01T08:00:00Z,2025-10-01T20:00:00Z,300\n")
	orders := writeFile(t, dir, "orders.csv",
		"1,100,LIM,BRU,2025-10-01T00:00:00Z\n")

	p, err := LoadCSV(airports, flights, orders)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.AirportList) != 2 || len(p.FlightList) != 1 || len(p.OrderList) != 1 {
		t.Fatalf("loaded %d/%d/%d records", len(p.AirportList), len(p.FlightList), len(p.OrderList))
	}
	f := p.FlightList[0]
	if f.Origin.Code != "LIM" || f.Destination.Code != "BRU" {
		t.Fatalf("flight endpoints %s->%s", f.Origin.Code, f.Destination.Code)
	}
	if f.Cost <= 0 {
		t.Fatalf("missing cost must be derived, got %f", f.Cost)
	}
	o := p.OrderList[0]
	if o.MaxDeliveryHours != 72 {
		t.Fatalf("cross-continent order window = %d", o.MaxDeliveryHours)
	}
	if o.Destination != p.AirportList[1] {
		t.Fatalf("order must share the airport instance")
	}
}

func TestLoadCSVUnknownAirport(t *testing.T) {
	dir := t.TempDir()
	airports := writeFile(t, dir, "airports.csv", "LIM,Lima,Peru,SAM,1000,-5,0,0\n")
	flights := writeFile(t, dir, "flights.csv", "F1,LIM,XXX,2025-10-01T08:00:00Z,2025-10-01T20:00:00Z,300\n")
	orders := writeFile(t, dir, "orders.csv", "1,100,LIM,LIM,2025-10-01T00:00:00Z\n")
	if _, err := LoadCSV(airports, flights, orders); err == nil {
		t.Fatalf("unknown destination must fail")
	}
}

func TestBuildRollsOvernightArrival(t *testing.T) {
	p, err := Build(model.DatasetIn{
		Airports: []model.AirportIn{
			{Code: "LIM", Continent: "SAM", StorageCapacity: 100, UTCOffset: -5},
			{Code: "BOG", Continent: "SAM", StorageCapacity: 100, UTCOffset: -5},
		},
		Flights: []model.FlightIn{
			{Code: "F1", Origin: "LIM", Destination: "BOG", Departure: "2025-10-01T23:00:00Z", Arrival: "2025-10-01T02:00:00Z", Capacity: 100},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := p.FlightList[0]
	if !f.Arrival.After(f.Departure) {
		t.Fatalf("overnight arrival not rolled: dep=%v arr=%v", f.Departure, f.Arrival)
	}
}

func TestStaticWindows(t *testing.T) {
	day0, _ := time.Parse(time.RFC3339, "2025-10-01T00:00:00Z")
	day1 := day0.Add(24 * time.Hour)
	p, err := Build(model.DatasetIn{
		Airports: []model.AirportIn{
			{Code: "LIM", Continent: "SAM", StorageCapacity: 100},
			{Code: "BOG", Continent: "SAM", StorageCapacity: 100},
		},
		Flights: []model.FlightIn{
			{Code: "F1", Origin: "LIM", Destination: "BOG", Departure: "2025-10-01T08:00:00Z", Arrival: "2025-10-01T10:00:00Z", Capacity: 100},
			{Code: "F2", Origin: "LIM", Destination: "BOG", Departure: "2025-10-02T08:00:00Z", Arrival: "2025-10-02T10:00:00Z", Capacity: 100},
		},
		Orders: []model.OrderInput{
			{ID: 1, Quantity: 10, Origin: "LIM", Destination: "BOG", OrderTime: "2025-10-01T06:00:00Z"},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := p.Flights(day0, day1); len(got) != 1 || got[0].Code != "F1" {
		t.Fatalf("day-0 window returned %d flights", len(got))
	}
	if got := p.Orders(day0, day1); len(got) != 1 {
		t.Fatalf("day-0 orders = %d", len(got))
	}
	if got := p.Orders(day1, day1.Add(24*time.Hour)); len(got) != 0 {
		t.Fatalf("day-1 orders = %d", len(got))
	}
}
