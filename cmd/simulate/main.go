// Command simulate runs the weekly harness offline against CSV datasets.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"cargonav/internal/dataset"
	"cargonav/internal/sim"
)

func main() {
	airports := flag.String("airports", "airports.csv", "airports CSV file")
	flights := flag.String("flights", "flights.csv", "flights CSV file")
	orders := flag.String("orders", "orders.csv", "orders CSV file")
	scenarioFile := flag.String("scenario-file", "", "YAML scenario file")
	scenarioName := flag.String("scenario", "weekly", "preset: daily, weekly, collapse")
	start := flag.String("start", "", "first day (RFC3339), defaults to first departure")
	flag.Parse()

	p, err := dataset.LoadCSV(*airports, *flights, *orders)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}

	var scenario sim.Scenario
	if *scenarioFile != "" {
		scenario, err = sim.LoadScenario(*scenarioFile)
	} else {
		scenario, err = sim.Preset(*scenarioName)
	}
	if err != nil {
		log.Fatalf("scenario: %v", err)
	}

	var from time.Time
	if *start != "" {
		if from, err = time.Parse(time.RFC3339, *start); err != nil {
			log.Fatalf("parse start: %v", err)
		}
	}

	h := scenario.Harness()
	h.OnDay = func(d sim.DayResult) {
		if d.Skipped {
			log.Printf("day %d: skipped (no flights or no backlog)", d.Day)
			return
		}
		log.Printf("day %d: %d flights (%d cancelled), %d orders, delivered %d",
			d.Day, d.Flights, d.Cancelled, d.Orders, d.Delivered)
	}

	summary := h.Run(p.PendingOrders(), p.FlightList, p.AirportList, from)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)
}
