package sim

import (
	"testing"
	"time"

	"cargonav/internal/model"
	"cargonav/internal/opt"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func airport(code string, cont model.Continent) *model.Airport {
	return &model.Airport{Code: code, Country: model.Country{Continent: cont}, StorageCapacity: 10000}
}

func dailyFlight(t *testing.T, code string, from, to *model.Airport, day int) *model.Flight {
	t.Helper()
	dep := ts(t, "2025-10-01T08:00:00Z").Add(time.Duration(day) * 24 * time.Hour)
	return &model.Flight{
		Code: code, Origin: from, Destination: to,
		Departure: dep, Arrival: dep.Add(4 * time.Hour),
		Capacity: 40, Cost: 100, Status: model.FlightScheduled,
	}
}

func TestWeekDeliversFullBacklog(t *testing.T) {
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	flights := []*model.Flight{}
	for day := 0; day < 7; day++ {
		flights = append(flights, dailyFlight(t, "F"+string(rune('A'+day)), lim, bog, day))
	}
	orders := []*model.Order{
		model.NewOrder(1, 100, lim, bog, ts(t, "2025-10-01T00:00:00Z")),
	}

	h := NewHarness(opt.DefaultConfig(), 0, 7)
	sum := h.Run(orders, flights, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))

	if sum.Delivered != 100 {
		t.Fatalf("delivered = %d, want 100", sum.Delivered)
	}
	if left, ok := sum.Backlog[1]; ok {
		t.Fatalf("backlog not drained: %d left", left)
	}
	if sum.AvgDeliveryHours <= 0 {
		t.Fatalf("avg delivery hours = %f", sum.AvgDeliveryHours)
	}
	// 40 units/day: three delivery days, then nothing left to ship
	if sum.Days[0].Delivered != 40 || sum.Days[1].Delivered != 40 || sum.Days[2].Delivered != 20 {
		t.Fatalf("per-day deliveries = %d/%d/%d", sum.Days[0].Delivered, sum.Days[1].Delivered, sum.Days[2].Delivered)
	}
	if !sum.Days[3].Skipped {
		t.Fatalf("day without orders must be skipped")
	}
}

func TestWeekInjectedOrderDelivered(t *testing.T) {
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	flights := []*model.Flight{}
	for day := 0; day < 7; day++ {
		flights = append(flights, dailyFlight(t, "F"+string(rune('A'+day)), lim, bog, day))
	}
	orders := []*model.Order{
		model.NewOrder(1, 40, lim, bog, ts(t, "2025-10-01T00:00:00Z")),
	}

	h := NewHarness(opt.DefaultConfig(), 0, 7)
	h.Injections = []InjectedOrder{{
		At:    ts(t, "2025-10-04T06:00:00Z"),
		Order: model.NewOrder(2, 40, lim, bog, ts(t, "2025-10-04T06:00:00Z")),
	}}
	sum := h.Run(orders, flights, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))

	if sum.Delivered != 80 {
		t.Fatalf("delivered = %d, want 80", sum.Delivered)
	}
	if len(sum.Backlog) != 0 {
		t.Fatalf("backlog not drained: %v", sum.Backlog)
	}
	if sum.Days[0].Delivered != 40 {
		t.Fatalf("day 0 delivered = %d, want 40", sum.Days[0].Delivered)
	}
	// nothing pending between the initial drain and the injection
	if !sum.Days[1].Skipped || !sum.Days[2].Skipped {
		t.Fatalf("days 1-2 must be skipped before the injection arrives")
	}
	if sum.Days[3].Delivered != 40 || sum.Days[3].Orders != 1 {
		t.Fatalf("day 3 = %+v, want the injected order delivered", sum.Days[3])
	}
}

func TestWeekInjectionBeforeWindowFiresDayZero(t *testing.T) {
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	flights := []*model.Flight{dailyFlight(t, "F1", lim, bog, 0)}

	h := NewHarness(opt.DefaultConfig(), 0, 1)
	h.Injections = []InjectedOrder{{
		At:    ts(t, "2025-09-28T00:00:00Z"),
		Order: model.NewOrder(9, 30, lim, bog, ts(t, "2025-09-28T00:00:00Z")),
	}}
	sum := h.Run(nil, flights, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))

	if sum.Days[0].Delivered != 30 || sum.Delivered != 30 {
		t.Fatalf("day 0 delivered = %d, want 30", sum.Days[0].Delivered)
	}
}

func TestWeekSkipsDaysWithoutFlights(t *testing.T) {
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	flights := []*model.Flight{dailyFlight(t, "F1", lim, bog, 3)}
	orders := []*model.Order{model.NewOrder(1, 30, lim, bog, ts(t, "2025-10-01T00:00:00Z"))}

	h := NewHarness(opt.DefaultConfig(), 0, 1)
	sum := h.Run(orders, flights, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))

	for day := 0; day < 3; day++ {
		if !sum.Days[day].Skipped {
			t.Fatalf("day %d had no flights, must be skipped", day)
		}
	}
	if sum.Days[3].Delivered != 30 || sum.Delivered != 30 {
		t.Fatalf("day 3 delivered = %d", sum.Days[3].Delivered)
	}
}

func TestWeekAllCancelledDeliversNothing(t *testing.T) {
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	flights := []*model.Flight{}
	for day := 0; day < 7; day++ {
		flights = append(flights, dailyFlight(t, "F"+string(rune('A'+day)), lim, bog, day))
	}
	orders := []*model.Order{model.NewOrder(1, 100, lim, bog, ts(t, "2025-10-01T00:00:00Z"))}

	h := NewHarness(opt.DefaultConfig(), 1.0, 7)
	sum := h.Run(orders, flights, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))

	if sum.Delivered != 0 {
		t.Fatalf("delivered = %d with every flight cancelled", sum.Delivered)
	}
	if sum.Backlog[1] != 100 {
		t.Fatalf("backlog = %d, want 100", sum.Backlog[1])
	}
}

func TestWeekStatusResetRestoresEligibility(t *testing.T) {
	// A flight cancelled by an earlier pass must come back once the PRNG
	// spares it on a later run over the same flight set.
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	f := dailyFlight(t, "F1", lim, bog, 0)
	f.Status = model.FlightCancelled
	orders := []*model.Order{model.NewOrder(1, 30, lim, bog, ts(t, "2025-10-01T00:00:00Z"))}

	h := NewHarness(opt.DefaultConfig(), 0, 1)
	h.Days = 1
	sum := h.Run(orders, []*model.Flight{f}, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))

	if f.Status != model.FlightScheduled {
		t.Fatalf("status = %s, want SCHEDULED", f.Status)
	}
	if sum.Delivered != 30 {
		t.Fatalf("delivered = %d, want 30", sum.Delivered)
	}
}

func TestWeekOnDayCallback(t *testing.T) {
	lim := airport("LIM", model.ContinentSouthAmerica)
	bog := airport("BOG", model.ContinentSouthAmerica)
	flights := []*model.Flight{dailyFlight(t, "F1", lim, bog, 0)}
	orders := []*model.Order{model.NewOrder(1, 30, lim, bog, ts(t, "2025-10-01T00:00:00Z"))}

	h := NewHarness(opt.DefaultConfig(), 0, 1)
	seen := 0
	h.OnDay = func(DayResult) { seen++ }
	h.Run(orders, flights, []*model.Airport{lim, bog}, ts(t, "2025-10-01T00:00:00Z"))
	if seen != 7 {
		t.Fatalf("OnDay fired %d times, want 7", seen)
	}
}

func TestScenarioPresets(t *testing.T) {
	for _, name := range []string{"daily", "weekly", "collapse"} {
		s, err := Preset(name)
		if err != nil {
			t.Fatalf("preset %s: %v", name, err)
		}
		if s.Name != name {
			t.Fatalf("preset name = %s, want %s", s.Name, name)
		}
	}
	if _, err := Preset("nope"); err == nil {
		t.Fatalf("unknown preset must fail")
	}
	if s, _ := Preset(""); s.Name != "weekly" {
		t.Fatalf("empty preset must default to weekly")
	}
}

func TestScenarioHarnessAppliesOverrides(t *testing.T) {
	s := Scenario{Name: "custom", Days: 3, CancelProb: 0.2, Seed: 9, MaxIterations: 50, Patience: 5}
	h := s.Harness()
	if h.Days != 3 || h.CancelProb != 0.2 || h.Seed != 9 {
		t.Fatalf("harness = %+v", h)
	}
	if h.Engine.MaxIterations != 50 || h.Engine.Patience != 5 {
		t.Fatalf("engine overrides not applied: %+v", h.Engine)
	}
}
