package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"cargonav/internal/model"
)

// CSV loading for the three input files. Columns:
//
//	airports: code,city,country,continent,storageCapacity,utcOffset,lat,lon
//	flights:  code,origin,destination,departure,arrival,capacity[,cost]
//	orders:   id,quantity,origin,destination,orderTime
//
// Timestamps are RFC3339. A header row is detected and skipped.

func LoadCSV(airportsPath, flightsPath, ordersPath string) (*Static, error) {
	var in model.DatasetIn
	if err := readCSV(airportsPath, 8, func(rec []string) error {
		storage, err := strconv.Atoi(rec[4])
		if err != nil {
			return fmt.Errorf("storageCapacity: %w", err)
		}
		offset, err := strconv.Atoi(rec[5])
		if err != nil {
			return fmt.Errorf("utcOffset: %w", err)
		}
		lat, _ := strconv.ParseFloat(rec[6], 64)
		lon, _ := strconv.ParseFloat(rec[7], 64)
		in.Airports = append(in.Airports, model.AirportIn{
			Code: rec[0], City: rec[1], Country: rec[2], Continent: rec[3],
			StorageCapacity: storage, UTCOffset: offset, Lat: lat, Lon: lon,
		})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("airports %s: %w", airportsPath, err)
	}

	if err := readCSV(flightsPath, 6, func(rec []string) error {
		capacity, err := strconv.Atoi(rec[5])
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		f := model.FlightIn{
			Code: rec[0], Origin: rec[1], Destination: rec[2],
			Departure: rec[3], Arrival: rec[4], Capacity: capacity,
		}
		if len(rec) > 6 && rec[6] != "" {
			if f.Cost, err = strconv.ParseFloat(rec[6], 64); err != nil {
				return fmt.Errorf("cost: %w", err)
			}
		}
		in.Flights = append(in.Flights, f)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("flights %s: %w", flightsPath, err)
	}

	if err := readCSV(ordersPath, 5, func(rec []string) error {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		qty, err := strconv.Atoi(rec[1])
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		in.Orders = append(in.Orders, model.OrderInput{
			ID: id, Quantity: qty, Origin: rec[2], Destination: rec[3], OrderTime: rec[4],
		})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("orders %s: %w", ordersPath, err)
	}

	return Build(in)
}

func readCSV(path string, minFields int, row func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line++
		if len(rec) < minFields {
			return fmt.Errorf("line %d: want at least %d fields, got %d", line, minFields, len(rec))
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if err := row(rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func isHeader(rec []string) bool {
	for _, v := range rec {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return false
		}
	}
	return rec[0] == "code" || rec[0] == "id"
}
