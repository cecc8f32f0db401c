// Package sim drives the optimizer day by day against a shrinking backlog
// under random flight cancellations.
package sim

import (
	"math/rand"
	"sort"
	"time"

	"cargonav/internal/model"
	"cargonav/internal/opt"
)

// BacklogEntry is the remaining undelivered quantity of one original
// order. The backlog is owned by the harness, never by the engine.
type BacklogEntry struct {
	OrderID     int
	Remaining   int
	Origin      *model.Airport
	Destination *model.Airport
	OrderTime   time.Time
}

// DayResult reports one simulated day.
type DayResult struct {
	Day              int
	Flights          int
	Cancelled        int
	Orders           int
	Delivered        int
	AvgDeliveryHours float64
	Skipped          bool
	Stats            opt.Stats
}

// WeeklySummary aggregates a full harness run.
type WeeklySummary struct {
	Delivered        int
	AvgDeliveryHours float64
	Backlog          map[int]int
	Days             []DayResult
}

// InjectedOrder is a mid-run disruption: Order joins the backlog at the
// start of the first simulated day whose window contains At. Injections
// dated past the last day never fire.
type InjectedOrder struct {
	At    time.Time
	Order *model.Order
}

// Harness runs the weekly simulation. OnDay, when set, observes each day's
// result as it completes (used by the live feed).
type Harness struct {
	Engine     opt.Config
	CancelProb float64
	Days       int
	Seed       int64
	Injections []InjectedOrder
	OnDay      func(DayResult)
}

func NewHarness(engine opt.Config, cancelProb float64, seed int64) *Harness {
	return &Harness{Engine: engine, CancelProb: cancelProb, Days: 7, Seed: seed}
}

// Run simulates Days days starting at start (midnight of the first
// departure when zero). Each day it filters that day's flights, rolls
// cancellations with the seeded PRNG, rebuilds ephemeral orders from the
// backlog, runs one optimization, and books delivered quantity back into
// the backlog.
func (h *Harness) Run(orders []*model.Order, flights []*model.Flight, airports []*model.Airport, start time.Time) WeeklySummary {
	backlog := buildBacklog(orders)
	if start.IsZero() {
		start = defaultStart(flights)
	}
	rng := rand.New(rand.NewSource(h.Seed))
	days := h.Days
	if days <= 0 {
		days = 7
	}

	summary := WeeklySummary{Backlog: map[int]int{}}
	deliveryDaySum := 0.0
	deliveryDays := 0

	injected := map[int]bool{}
	for day := 0; day < days; day++ {
		dayStart := start.Add(time.Duration(day) * 24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)

		// Injections that have arrived by now join the backlog before the
		// day's orders are rebuilt. An injection predating the run window
		// fires on day 0.
		for _, inj := range h.Injections {
			o := inj.Order
			if o == nil || o.TotalQuantity <= 0 || injected[o.ID] {
				continue
			}
			if !inj.At.Before(dayEnd) {
				continue
			}
			injected[o.ID] = true
			if _, exists := backlog[o.ID]; !exists {
				backlog[o.ID] = &BacklogEntry{
					OrderID:     o.ID,
					Remaining:   o.TotalQuantity,
					Origin:      o.Origin,
					Destination: o.Destination,
					OrderTime:   o.OrderTime,
				}
			}
		}

		todays := flightsOn(flights, dayStart)

		// Roll cancellations; forcing the survivors back to SCHEDULED
		// undoes flips from a previous pass over the same flight set.
		cancelled := 0
		for _, f := range todays {
			if rng.Float64() < h.CancelProb {
				f.Status = model.FlightCancelled
				cancelled++
			} else {
				f.Status = model.FlightScheduled
			}
		}

		ephemeral := ephemeralOrders(backlog)
		result := DayResult{Day: day, Flights: len(todays), Cancelled: cancelled, Orders: len(ephemeral)}

		if len(todays) == 0 || len(ephemeral) == 0 {
			result.Skipped = true
			summary.Days = append(summary.Days, result)
			h.emit(result)
			continue
		}

		cfg := h.Engine
		cfg.Seed = h.Seed + int64(day)
		sol, stats := opt.NewEngine(cfg).Optimize(ephemeral, todays, airports)
		result.Stats = stats
		result.AvgDeliveryHours = stats.AverageDeliveryHours

		for _, o := range ephemeral {
			delivered := sol.AssignedQuantity(o.ID)
			if delivered == 0 {
				continue
			}
			result.Delivered += delivered
			entry := backlog[o.ID]
			entry.Remaining -= delivered
			if entry.Remaining <= 0 {
				delete(backlog, o.ID)
			}
		}
		summary.Delivered += result.Delivered
		if result.Delivered > 0 && stats.AverageDeliveryHours > 0 {
			deliveryDaySum += stats.AverageDeliveryHours
			deliveryDays++
		}
		summary.Days = append(summary.Days, result)
		h.emit(result)
	}

	if deliveryDays > 0 {
		summary.AvgDeliveryHours = deliveryDaySum / float64(deliveryDays)
	}
	for id, entry := range backlog {
		summary.Backlog[id] = entry.Remaining
	}
	return summary
}

func (h *Harness) emit(r DayResult) {
	if h.OnDay != nil {
		h.OnDay(r)
	}
}

func buildBacklog(orders []*model.Order) map[int]*BacklogEntry {
	backlog := map[int]*BacklogEntry{}
	for _, o := range orders {
		if o.TotalQuantity <= 0 {
			continue
		}
		backlog[o.ID] = &BacklogEntry{
			OrderID:     o.ID,
			Remaining:   o.TotalQuantity,
			Origin:      o.Origin,
			Destination: o.Destination,
			OrderTime:   o.OrderTime,
		}
	}
	return backlog
}

// ephemeralOrders rebuilds one per-day order per backlog entry with
// remaining quantity, keeping the original id and order time.
func ephemeralOrders(backlog map[int]*BacklogEntry) []*model.Order {
	orders := make([]*model.Order, 0, len(backlog))
	for _, e := range backlog {
		orders = append(orders, model.NewOrder(e.OrderID, e.Remaining, e.Origin, e.Destination, e.OrderTime))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders
}

func flightsOn(flights []*model.Flight, dayStart time.Time) []*model.Flight {
	dayEnd := dayStart.Add(24 * time.Hour)
	out := []*model.Flight{}
	for _, f := range flights {
		if !f.Departure.Before(dayStart) && f.Departure.Before(dayEnd) {
			out = append(out, f)
		}
	}
	return out
}

func defaultStart(flights []*model.Flight) time.Time {
	var first time.Time
	for _, f := range flights {
		if first.IsZero() || f.Departure.Before(first) {
			first = f.Departure
		}
	}
	if first.IsZero() {
		return time.Time{}
	}
	return first.Truncate(24 * time.Hour)
}
